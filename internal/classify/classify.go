// Package classify labels the nodes of a scanned tree as Unique, Clone or
// Mixed with respect to a set of duplicate groups.
//
// Clone-ness is relative: a file is a Clone of root R when at least one
// member of its group lies outside R. File nodes are labelled relative to
// the root the classification was run for. Directory nodes are labelled
// relative to themselves, so a Clone directory can be removed without
// losing content that is not also present somewhere outside it.
package classify

import (
	"fmt"
	"math"
	"strings"

	"clonemap/internal/fspath"
	"clonemap/internal/tree"
)

type Classification uint8

const (
	Unique Classification = iota
	Clone
	Mixed
)

func (c Classification) String() string {
	switch c {
	case Unique:
		return "unique"
	case Clone:
		return "clone"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("Classification(%d)", uint8(c))
	}
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "unique":
		*c = Unique
	case "clone":
		*c = Clone
	case "mixed":
		*c = Mixed
	default:
		return fmt.Errorf("unknown classification %q", text)
	}
	return nil
}

// Merge combines two labels of the same level. Equal labels are kept; any
// disagreement yields Mixed, which absorbs everything.
func Merge(a, b Classification) Classification {
	if a == b {
		return a
	}
	return Mixed
}

// Mode selects how a directory aggregates its content.
type Mode int

const (
	// ModeStrict classifies every file below the directory relative to the
	// directory itself. A Clone directory can be removed without losing
	// content.
	ModeStrict Mode = iota
	// ModePropagate merges the directory's own files, classified relative
	// to the directory, with the labels of its subdirectories. Copies that
	// only live in sibling subdirectories still count as Clone.
	ModePropagate
)

func (m Mode) String() string {
	if m == ModePropagate {
		return "propagate"
	}
	return "strict"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return ModeStrict, nil
	case "propagate":
		return ModePropagate, nil
	}
	return 0, fmt.Errorf("invalid mode %q, must be one of: propagate, strict", s)
}

// Index is the part of the clone group index the classifier needs.
type Index interface {
	HasSiblingOutside(path, root string) bool
	BoundaryDepth(path string) (int, bool)
}

// ClassifyFile labels a single path relative to root.
func ClassifyFile(idx Index, path, root string) Classification {
	if idx.HasSiblingOutside(path, root) {
		return Clone
	}
	return Unique
}

// Result holds the labels computed for one root.
type Result struct {
	tree     *tree.Tree
	root     tree.NodeID
	rootPath string
	mode     Mode

	labels   []Classification
	files    []int
	computed []bool
}

func (r *Result) Root() tree.NodeID { return r.root }
func (r *Result) RootPath() string { return r.rootPath }
func (r *Result) Mode() Mode { return r.mode }

// InScope reports whether id was classified by this result.
func (r *Result) InScope(id tree.NodeID) bool {
	return int(id) >= 0 && int(id) < len(r.computed) && r.computed[id]
}

// Of returns the label of a node in the classified subtree. It panics for
// nodes outside it.
func (r *Result) Of(id tree.NodeID) Classification {
	if !r.InScope(id) {
		panic(fmt.Sprintf("classify: node %d is outside %s", id, r.rootPath))
	}
	return r.labels[id]
}

// FileCount is the number of non-directory nodes in id's subtree.
func (r *Result) FileCount(id tree.NodeID) int {
	if !r.InScope(id) {
		return 0
	}
	return r.files[id]
}

// subtree aggregates used by the bottom-up pass
type stats struct {
	ungrouped int
	// boundary depths of the grouped files below the node
	minBoundary int
	maxBoundary int
	propagated  Classification
	hasLabel    bool
}

func (s *stats) add(c Classification) {
	if !s.hasLabel {
		s.propagated, s.hasLabel = c, true
		return
	}
	s.propagated = Merge(s.propagated, c)
}

// Classify labels root and every node below it in a single post-order
// pass. It does not modify t or idx and yields the same result every time
// for the same inputs.
func Classify(t *tree.Tree, idx Index, root tree.NodeID, mode Mode) *Result {
	rootPath := t.Node(root).Path
	r := &Result{
		tree:     t,
		root:     root,
		rootPath: rootPath,
		mode:     mode,
		labels:   make([]Classification, t.Len()),
		files:    make([]int, t.Len()),
		computed: make([]bool, t.Len()),
	}

	order := t.PostOrder(root)

	st := make(map[tree.NodeID]*stats, len(order))
	for _, id := range order {
		n := t.Node(id)
		s := &stats{minBoundary: math.MaxInt, maxBoundary: -1}
		st[id] = s

		if !n.IsDir() {
			r.files[id] = 1
			if depth, ok := idx.BoundaryDepth(n.Path); ok {
				s.minBoundary, s.maxBoundary = depth, depth
			} else {
				s.ungrouped = 1
			}
			r.labels[id] = ClassifyFile(idx, n.Path, rootPath)
			r.computed[id] = true
			continue
		}

		depth := fspath.Depth(n.Path)
		for _, childID := range n.Children {
			child := t.Node(childID)
			cs := st[childID]
			r.files[id] += r.files[childID]
			s.ungrouped += cs.ungrouped
			s.minBoundary = min(s.minBoundary, cs.minBoundary)
			s.maxBoundary = max(s.maxBoundary, cs.maxBoundary)

			switch {
			case !child.IsDir():
				s.add(fileRelativeTo(cs, depth))
			case r.files[childID] > 0:
				s.add(r.labels[childID])
			}
			delete(st, childID)
		}

		r.labels[id] = r.directoryLabel(id, s, depth)
		r.computed[id] = true
	}

	return r
}

// fileRelativeTo labels a file from its stats relative to an enclosing
// directory at the given depth.
func fileRelativeTo(s *stats, dirDepth int) Classification {
	if s.ungrouped == 0 && s.maxBoundary < dirDepth {
		return Clone
	}
	return Unique
}

func (r *Result) directoryLabel(id tree.NodeID, s *stats, depth int) Classification {
	if r.files[id] == 0 {
		return Unique
	}
	if r.mode == ModePropagate {
		return s.propagated
	}

	grouped := r.files[id] - s.ungrouped
	switch {
	case s.ungrouped == 0 && s.maxBoundary < depth:
		return Clone
	case grouped == 0 || s.minBoundary >= depth:
		return Unique
	default:
		return Mixed
	}
}
