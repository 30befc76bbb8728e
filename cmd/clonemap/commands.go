package main

import (
	"errors"

	"github.com/spf13/cobra"

	"clonemap/internal/view"
	"clonemap/internal/walker"
)

func newFilesCmd() *cobra.Command {
	q := view.Query{Kind: view.KindFiles}
	cmd := &cobra.Command{
		Use:   "files [paths...]",
		Short: "List files that have a copy outside each path",
		Long: `List the files below each path whose content also exists outside of it.
With --unique, list the files whose content exists nowhere else instead.
With --inside, list the files that have another copy below the same path.
With --outside, keep only files having at least one copy outside the path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.InsideOnly && !q.ShowMap {
				return errors.New("--inside-only requires --map")
			}
			return runReport(cmd, args, q, walker.ErrorDisplay)
		},
	}
	cmd.Flags().BoolVarP(&q.Recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVarP(&q.UniqueOnly, "unique", "u", false, "List unique files instead of clones")
	cmd.Flags().BoolVarP(&q.ShowMap, "map", "m", false, "Show the copies of every listed file")
	cmd.Flags().BoolVarP(&q.Inside, "inside", "i", false, "List files with another copy below the same path")
	cmd.Flags().BoolVarP(&q.Outside, "outside", "o", false, "Keep only files with a copy outside the path")
	cmd.Flags().BoolVarP(&q.InsideOnly, "inside-only", "I", false, "Like --inside, but leave copies outside the path out of the map")
	cmd.MarkFlagsMutuallyExclusive("unique", "inside")
	cmd.MarkFlagsMutuallyExclusive("unique", "outside")
	cmd.MarkFlagsMutuallyExclusive("unique", "inside-only")
	return cmd
}

func newDirsCmd() *cobra.Command {
	q := view.Query{Kind: view.KindDirs}
	cmd := &cobra.Command{
		Use:   "dirs [paths...]",
		Short: "List directories whose every file has a copy outside them",
		Long: `List the topmost directories below each path whose files all have a copy
outside them. In the default strict mode each listed directory can be removed
on its own without losing content; two listed directories may still hold the
only copies of each other. With --mode propagate a directory also counts as a
clone when its copies only live in its own subdirectories, so removing it is
not safe. With --unique, list the topmost directories holding no duplicated
content instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.ShowSources {
				q.ShowMap = true
			}
			return runReport(cmd, args, q, walker.ErrorStop)
		},
	}
	cmd.Flags().BoolVarP(&q.Recursive, "recursive", "r", true, "Descend into subdirectories")
	cmd.Flags().BoolVarP(&q.UniqueOnly, "unique", "u", false, "List unique directories instead of clones")
	cmd.Flags().BoolVar(&q.All, "all", false, "List every matching directory, not only the topmost")
	cmd.Flags().BoolVarP(&q.ShowMap, "map", "m", false, "Show where the copies of every listed directory live")
	cmd.Flags().BoolVarP(&q.ShowSources, "sources", "s", false, "Show which file maps to which copy (implies --map)")
	cmd.Flags().BoolVarP(&q.ShowDiff, "diff", "d", false, "Compare each directory with the locations holding its copies")
	return cmd
}
