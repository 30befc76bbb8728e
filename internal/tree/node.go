package tree

import "clonemap/internal/walker"

// NodeID addresses a node inside its Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

type Node struct {
	Path string
	Kind walker.Kind
	Size int64
	// Parent is a back-reference for upward queries; the tree owns nodes.
	Parent   NodeID
	Children []NodeID
}

// IsDir reports whether the node can hold children.
func (n *Node) IsDir() bool { return n.Kind == walker.Directory }

// Tree mirrors a scanned filesystem subtree. Nodes are stored in insertion
// order, parents always before their children.
type Tree struct {
	nodes  []Node
	byPath map[string]NodeID
}

func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id. The result must not be modified.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

func (t *Tree) Lookup(path string) (NodeID, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// PostOrder returns id and every node below it with children ahead of
// their parent.
func (t *Tree) PostOrder(id NodeID) []NodeID {
	ids := t.Descendants(id)
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// Walk visits id and its descendants depth first, parents first. Returning
// false from fn skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := &t.nodes[id]
	if !fn(id, n) {
		return
	}
	for _, child := range n.Children {
		t.Walk(child, fn)
	}
}

// Descendants returns id and every node below it, parents first.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	t.Walk(id, func(nid NodeID, _ *Node) bool {
		out = append(out, nid)
		return true
	})
	return out
}

// Files returns the paths of every non-directory node below id.
func (t *Tree) Files(id NodeID) []string {
	var out []string
	t.Walk(id, func(_ NodeID, n *Node) bool {
		if !n.IsDir() {
			out = append(out, n.Path)
		}
		return true
	})
	return out
}

// DeepPath follows a chain of directories that each hold exactly one
// non-empty subdirectory and nothing else, and returns the last one. It
// reports false when id does not start such a chain.
func (t *Tree) DeepPath(id NodeID) (string, bool) {
	current := &t.nodes[id]
	moved := false
	for len(current.Children) == 1 {
		child := &t.nodes[current.Children[0]]
		if !child.IsDir() || len(child.Children) == 0 {
			break
		}
		current = child
		moved = true
	}
	return current.Path, moved
}
