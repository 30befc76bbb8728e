// Package view answers the reporting queries over a classified tree: flat
// file and directory listings, clone locations and membership diffs.
package view

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"

	"clonemap/internal/classify"
	"clonemap/internal/clones"
	"clonemap/internal/fspath"
	"clonemap/internal/tree"
)

var (
	// ErrNotScanned is returned for a path that is not part of the tree.
	ErrNotScanned = errors.New("path is not part of the scanned tree")
	// ErrInterrupted is returned when a report is cancelled. No partial
	// report accompanies it.
	ErrInterrupted = errors.New("interrupted")
)

// Filter selects entries by classification.
type Filter int

const (
	FilterAll Filter = iota
	FilterClone
	FilterUnique
	FilterMixed
)

func (f Filter) Match(c classify.Classification) bool {
	switch f {
	case FilterClone:
		return c == classify.Clone
	case FilterUnique:
		return c == classify.Unique
	case FilterMixed:
		return c == classify.Mixed
	default:
		return true
	}
}

// Lister lists the files below a directory that is not part of the tree.
type Lister interface {
	Files(dir string) ([]string, error)
}

// Generator is read-only over the tree and the index. Classification
// results are cached per base directory. A Generator is not safe for
// concurrent use.
type Generator struct {
	tree   *tree.Tree
	index  *clones.Index
	mode   classify.Mode
	lister Lister

	results  map[tree.NodeID]*classify.Result
	listings map[string][]string
}

func New(t *tree.Tree, idx *clones.Index, mode classify.Mode, lister Lister) *Generator {
	return &Generator{
		tree:     t,
		index:    idx,
		mode:     mode,
		lister:   lister,
		results:  make(map[tree.NodeID]*classify.Result),
		listings: make(map[string][]string),
	}
}

func (g *Generator) lookup(path string) (tree.NodeID, error) {
	id, ok := g.tree.Lookup(filepath.Clean(path))
	if !ok {
		return tree.NoNode, fmt.Errorf("%s: %w", path, ErrNotScanned)
	}
	return id, nil
}

// Classify returns the classification relative to base.
func (g *Generator) Classify(base string) (*classify.Result, error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	return g.classifyNode(id), nil
}

func (g *Generator) classifyNode(id tree.NodeID) *classify.Result {
	if r, ok := g.results[id]; ok {
		return r
	}
	r := classify.Classify(g.tree, g.index, id, g.mode)
	g.results[id] = r
	return r
}

// Files yields every file below base with its classification relative to
// base. Without recursive only the direct children of base are visited.
// The sequence is lazy and can be ranged over any number of times.
func (g *Generator) Files(base string, recursive bool, filter Filter) (iter.Seq2[string, classify.Classification], error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	result := g.classifyNode(id)

	return func(yield func(string, classify.Classification) bool) {
		stopped := false
		g.tree.Walk(id, func(nid tree.NodeID, n *tree.Node) bool {
			if stopped {
				return false
			}
			if n.IsDir() {
				return recursive || nid == id
			}
			c := result.Of(nid)
			if filter.Match(c) && !yield(n.Path, c) {
				stopped = true
			}
			return false
		})
	}, nil
}

// Dirs yields directories at or below base with their own classification.
// With maximal, the children of a matching directory are not visited, so
// only the topmost matches are reported.
func (g *Generator) Dirs(base string, recursive, maximal bool, filter Filter) (iter.Seq2[string, classify.Classification], error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	if !g.tree.Node(id).IsDir() {
		return nil, fmt.Errorf("%s: not a directory", base)
	}
	result := g.classifyNode(id)

	return func(yield func(string, classify.Classification) bool) {
		stopped := false
		g.tree.Walk(id, func(nid tree.NodeID, n *tree.Node) bool {
			if stopped || !n.IsDir() {
				return false
			}
			c := result.Of(nid)
			matched := filter.Match(c)
			if matched && !yield(n.Path, c) {
				stopped = true
				return false
			}
			if matched && maximal {
				return false
			}
			return recursive || nid == id
		})
	}, nil
}

// InsideDuplicates yields the files below base that have at least one
// copy also below base.
func (g *Generator) InsideDuplicates(base string, recursive bool) (iter.Seq[string], error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	root := g.tree.Node(id).Path
	files, err := g.Files(root, recursive, FilterAll)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		for f := range files {
			if len(g.index.SiblingsInside(f, root)) > 0 && !yield(f) {
				return
			}
		}
	}, nil
}

// locationFiles lists the files below location, from the tree when it
// covers location and from the Lister otherwise.
func (g *Generator) locationFiles(location string) ([]string, error) {
	if id, ok := g.tree.Lookup(location); ok {
		return g.tree.Files(id), nil
	}
	if !fspath.Within(location, g.tree.Node(g.tree.Root()).Path) {
		if files, ok := g.listings[location]; ok {
			return files, nil
		}
		if g.lister == nil {
			return nil, fmt.Errorf("%s: no lister for locations outside the scanned tree", location)
		}
		files, err := g.lister.Files(location)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", location, err)
		}
		g.listings[location] = files
		return files, nil
	}
	// inside the scanned root but excluded or vanished
	return nil, nil
}
