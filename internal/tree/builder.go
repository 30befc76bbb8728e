package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"clonemap/internal/fspath"
	"clonemap/internal/walker"
)

// ErrStructuralGap is returned when a traversal entry cannot be attached
// to the tree.
var ErrStructuralGap = errors.New("structural gap in traversal")

type GapError struct {
	Path   string
	Parent string
	Reason string
}

func (e *GapError) Error() string {
	return fmt.Sprintf("cannot attach %s (parent %s): %s", e.Path, e.Parent, e.Reason)
}

func (e *GapError) Unwrap() error { return ErrStructuralGap }

// Build creates the tree for root from the traversal entries below it.
// Every entry's parent directory must have been reported before the entry
// itself; otherwise Build fails with a *GapError and no tree is returned.
func Build(root walker.Entry, entries []walker.Entry) (*Tree, error) {
	rootPath := filepath.Clean(root.Path)

	t := &Tree{
		nodes:  make([]Node, 0, len(entries)+1),
		byPath: make(map[string]NodeID, len(entries)+1),
	}
	t.nodes = append(t.nodes, Node{Path: rootPath, Kind: root.Kind, Size: root.Size, Parent: NoNode})
	t.byPath[rootPath] = 0

	for _, entry := range entries {
		path := filepath.Clean(entry.Path)
		parentPath := fspath.Parent(path)

		if path == rootPath || !fspath.Within(path, rootPath) {
			return nil, &GapError{Path: path, Parent: parentPath, Reason: "not below root " + rootPath}
		}
		if _, dup := t.byPath[path]; dup {
			return nil, &GapError{Path: path, Parent: parentPath, Reason: "reported twice"}
		}
		parentID, ok := t.byPath[parentPath]
		if !ok {
			return nil, &GapError{Path: path, Parent: parentPath, Reason: "parent was not reported"}
		}
		if !t.nodes[parentID].IsDir() {
			return nil, &GapError{Path: path, Parent: parentPath, Reason: "parent is not a directory"}
		}

		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{Path: path, Kind: entry.Kind, Size: entry.Size, Parent: parentID})
		t.nodes[parentID].Children = append(t.nodes[parentID].Children, id)
		t.byPath[path] = id
	}

	for i := range t.nodes {
		children := t.nodes[i].Children
		sort.Slice(children, func(a, b int) bool {
			return t.nodes[children[a]].Path < t.nodes[children[b]].Path
		})
	}
	return t, nil
}
