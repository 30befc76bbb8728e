package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clonemap/internal/view"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clonemap",
		Short: "Map which files and directories are copies of content found elsewhere",
		Long: `clonemap reads a duplicate report produced by fclones and classifies the
files and directories below a path as clone (every file has a copy outside),
unique (no file has a copy outside) or mixed.

The report is taken from --clones-list, CLONES_LIST or the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "clonemap.yaml", "Config file path")
	flags.StringP("clones-list", "l", "", "fclones JSON report to read")
	flags.StringSlice("exclude", nil, "Glob patterns to skip while scanning (trailing / matches directories)")
	flags.String("errors", "", "What to do on unreadable entries: ignore, display, stop")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.StringP("format", "f", "text", "Output format: text, json, yaml")
	flags.BoolP("absolute", "a", false, "Print absolute paths")
	flags.String("color", "auto", "Color output: auto, always, never")
	flags.String("mode", "strict", "Directory classification: strict, propagate")
	flags.Bool("prune", true, "Drop report entries that no longer exist")
	flags.IntP("workers", "w", 0, "Concurrent existence checks while pruning (0 = auto)")
	flags.BoolP("null", "0", false, "Print bare paths terminated by NUL")
	flags.Bool("stats", false, "Print totals after the listing")

	cmd.AddCommand(newFilesCmd())
	cmd.AddCommand(newDirsCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if errors.Is(err, view.ErrInterrupted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Interrupted")
		os.Exit(130)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
