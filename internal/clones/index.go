package clones

import (
	"path/filepath"
	"sort"

	"clonemap/internal/fspath"
	"clonemap/internal/hash"
)

// Index maps every member path to its group. It is immutable once built
// and safe to share between readers.
type Index struct {
	groups []*Group
	byPath map[string]*Group
}

// NewIndex validates groups and indexes them. A group with fewer than two
// distinct paths, a relative path, or a path present in two groups makes
// construction fail with an *IntegrityError.
func NewIndex(groups []CloneGroup) (*Index, error) {
	idx := &Index{
		groups: make([]*Group, 0, len(groups)),
		byPath: make(map[string]*Group),
	}

	for i, cg := range groups {
		seen := make(map[string]bool, len(cg.Paths))
		paths := make([]string, 0, len(cg.Paths))
		for _, p := range cg.Paths {
			if !filepath.IsAbs(p) {
				return nil, &IntegrityError{Group: i, Path: p, Reason: "path is not absolute"}
			}
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, taken := idx.byPath[p]; taken {
				return nil, &IntegrityError{Group: i, Path: p, Reason: "path belongs to more than one group"}
			}
			paths = append(paths, p)
		}
		if len(paths) < 2 {
			return nil, &IntegrityError{Group: i, Reason: "group has fewer than two distinct paths"}
		}
		sort.Strings(paths)

		g := &Group{
			ID:            hash.PathsID(paths),
			FileSize:      cg.FileSize,
			Paths:         paths,
			boundaryDepth: fspath.Depth(fspath.CommonDir(paths)),
		}
		for _, p := range paths {
			idx.byPath[p] = g
		}
		idx.groups = append(idx.groups, g)
	}

	sort.Slice(idx.groups, func(i, j int) bool {
		return idx.groups[i].Paths[0] < idx.groups[j].Paths[0]
	})
	return idx, nil
}

// GroupOf returns the group path belongs to.
func (idx *Index) GroupOf(path string) (*Group, bool) {
	g, ok := idx.byPath[path]
	return g, ok
}

// Siblings returns the other members of path's group.
func (idx *Index) Siblings(path string) []string {
	return idx.collect(path, func(string) bool { return true })
}

// SiblingsOutside returns the members of path's group that are neither
// root nor below it.
func (idx *Index) SiblingsOutside(path, root string) []string {
	return idx.collect(path, func(member string) bool {
		return !fspath.Within(member, root)
	})
}

// SiblingsInside returns the other members of path's group located in root.
func (idx *Index) SiblingsInside(path, root string) []string {
	return idx.collect(path, func(member string) bool {
		return fspath.Within(member, root)
	})
}

// HasSiblingOutside is SiblingsOutside without the allocation.
func (idx *Index) HasSiblingOutside(path, root string) bool {
	g, ok := idx.byPath[path]
	if !ok {
		return false
	}
	for _, member := range g.Paths {
		if member != path && !fspath.Within(member, root) {
			return true
		}
	}
	return false
}

func (idx *Index) collect(path string, keep func(string) bool) []string {
	g, ok := idx.byPath[path]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.Paths)-1)
	for _, member := range g.Paths {
		if member != path && keep(member) {
			out = append(out, member)
		}
	}
	return out
}

// BoundaryDepth is the depth of the deepest directory holding every member
// of path's group. A directory containing path at a greater depth leaves at
// least one member outside.
func (idx *Index) BoundaryDepth(path string) (int, bool) {
	g, ok := idx.byPath[path]
	if !ok {
		return 0, false
	}
	return g.boundaryDepth, true
}

// GroupCount is the number of indexed groups.
func (idx *Index) GroupCount() int { return len(idx.groups) }

// PathCount is the number of indexed member paths.
func (idx *Index) PathCount() int { return len(idx.byPath) }

// Groups returns the groups ordered by their first member.
func (idx *Index) Groups() []*Group {
	out := make([]*Group, len(idx.groups))
	copy(out, idx.groups)
	return out
}
