package clones

import (
	"context"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PruneOptions controls Prune.
type PruneOptions struct {
	Workers int
	// Exists reports whether path is still a regular file. Defaults to os.Stat.
	Exists func(path string) bool
	// Tick is called once per checked path.
	Tick func()
}

func regularFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Prune drops members that are no longer regular files and then drops the
// groups left with fewer than two members. Group order is preserved.
func Prune(ctx context.Context, groups []CloneGroup, opts PruneOptions, log logrus.FieldLogger) ([]CloneGroup, error) {
	exists := opts.Exists
	if exists == nil {
		exists = regularFileExists
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	// one slot per member, written by exactly one goroutine
	alive := make([][]bool, len(groups))
	for i, g := range groups {
		alive[i] = make([]bool, len(g.Paths))
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, g := range groups {
		for j, p := range g.Paths {
			if gctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				alive[i][j] = exists(p)
				if opts.Tick != nil {
					opts.Tick()
				}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var removedFiles, removedGroups int
	pruned := make([]CloneGroup, 0, len(groups))
	for i, g := range groups {
		kept := make([]string, 0, len(g.Paths))
		for j, p := range g.Paths {
			if alive[i][j] {
				kept = append(kept, p)
			} else {
				removedFiles++
			}
		}
		if len(kept) < 2 {
			removedGroups++
			continue
		}
		pruned = append(pruned, CloneGroup{FileSize: g.FileSize, Paths: kept})
	}

	log.WithFields(logrus.Fields{
		"removed_files":  removedFiles,
		"removed_groups": removedGroups,
		"kept_groups":    len(pruned),
	}).Info("pruned clones list")
	return pruned, nil
}
