package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"clonemap/internal/clones"
	"clonemap/internal/fspath"
	"clonemap/internal/progress"
	"clonemap/internal/render"
	"clonemap/internal/tree"
	"clonemap/internal/view"
	"clonemap/internal/walker"
)

func runReport(cmd *cobra.Command, args []string, q view.Query, defaultBehavior walker.ErrorBehavior) error {
	s, err := loadSettings(cmd.Flags(), defaultBehavior)
	if err != nil {
		return err
	}
	log := newLogger(s.LogLevel)
	log.SetOutput(cmd.ErrOrStderr())

	if len(args) == 0 {
		args = []string{"."}
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	p := &pipeline{settings: s, log: log, stderr: cmd.ErrOrStderr()}
	idx, err := p.loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	// nothing is written until every report is complete
	reports := make([]*view.Report, 0, len(args))
	for _, arg := range args {
		report, err := p.report(cmd.Context(), idx, arg, q)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	r := render.New(cmd.OutOrStdout(), render.Options{
		Format:         s.Format,
		Colored:        s.Colored,
		Absolute:       s.Absolute,
		WorkDir:        workDir,
		NullTerminated: s.Null,
		Stats:          s.Stats,
	})
	for _, report := range reports {
		if err := r.Report(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return r.Close()
}

type pipeline struct {
	settings *settings
	log      logrus.FieldLogger
	stderr   io.Writer
	// source is the loaded duplicate report
	source *clones.Report
}

func (p *pipeline) walkOptions() walker.Options {
	return walker.Options{
		Exclude:       p.settings.Exclude,
		ErrorBehavior: p.settings.ErrorBehavior,
		Log:           p.log,
	}
}

// loadIndex reads the duplicate report, drops stale entries and indexes it.
func (p *pipeline) loadIndex(ctx context.Context) (*clones.Index, error) {
	if p.settings.ClonesList == "" {
		return nil, fmt.Errorf("no duplicate report given: pass --clones-list or set CLONES_LIST")
	}
	report, err := clones.LoadReport(p.settings.ClonesList, p.log)
	if err != nil {
		return nil, err
	}
	p.source = report
	groups := report.Groups

	if p.settings.Prune {
		members := 0
		for _, g := range groups {
			members += len(g.Paths)
		}
		bar := progress.New(p.stderr, "Checking duplicates", members)
		groups, err = clones.Prune(ctx, groups, clones.PruneOptions{
			Workers: p.settings.Workers,
			Tick:    bar.Increment,
		}, p.log)
		bar.Finish()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", view.ErrInterrupted, err)
		}
	}

	idx, err := clones.NewIndex(groups)
	if err != nil {
		return nil, err
	}
	var total, reclaimable uint64
	for _, g := range idx.Groups() {
		total += g.TotalSize()
		reclaimable += g.ReclaimableSize()
	}
	p.log.WithFields(logrus.Fields{
		"groups":      idx.GroupCount(),
		"files":       idx.PathCount(),
		"size":        humanize.IBytes(total),
		"reclaimable": humanize.IBytes(reclaimable),
	}).Debug("Indexed duplicate report")
	return idx, nil
}

// scan walks root and builds its tree.
func (p *pipeline) scan(ctx context.Context, root string) (*tree.Tree, error) {
	spinner := progress.NewSpinner(p.stderr, "Scanning")
	opts := p.walkOptions()
	opts.OnEntry = func(e walker.Entry) {
		if e.Kind == walker.Directory {
			spinner.SetDirectory(e.Path)
		}
		spinner.Increment()
	}
	result, err := walker.Walk(ctx, root, opts)
	spinner.Finish()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", view.ErrInterrupted, err)
		}
		return nil, err
	}
	if len(result.Errors) > 0 {
		p.log.WithField("count", len(result.Errors)).Warn("Some entries could not be read")
	}
	return tree.Build(result.Root, result.Entries)
}

func (p *pipeline) report(ctx context.Context, idx *clones.Index, arg string, q view.Query) (*view.Report, error) {
	root, err := fspath.Normalize(arg)
	if err != nil {
		return nil, err
	}
	t, err := p.scan(ctx, root)
	if err != nil {
		return nil, err
	}
	// the walker resolves a symlinked root
	root = t.Node(t.Root()).Path
	p.log.WithFields(logrus.Fields{"path": root, "nodes": t.Len()}).Debug("Scanned")

	if p.source != nil && !p.source.Covers(root) {
		p.log.WithField("path", root).Warn("Path lies outside every path the duplicate report was built for; its files will all be unique")
	}

	lister := &walkLister{ctx: ctx, opts: p.walkOptions()}
	return view.New(t, idx, p.settings.Mode, lister).Report(ctx, root, q)
}

// walkLister lists directories outside the scanned tree for diffs.
type walkLister struct {
	ctx  context.Context
	opts walker.Options
}

func (l *walkLister) Files(dir string) ([]string, error) {
	result, err := walker.Walk(l.ctx, dir, l.opts)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range result.Entries {
		if e.Kind == walker.File {
			files = append(files, e.Path)
		}
	}
	return files, nil
}
