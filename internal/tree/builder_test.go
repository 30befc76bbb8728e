package tree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clonemap/internal/walker"
)

func dir(p string) walker.Entry  { return walker.Entry{Path: p, Kind: walker.Directory} }
func file(p string) walker.Entry { return walker.Entry{Path: p, Kind: walker.File} }

func TestBuild_Structure(t *testing.T) {
	tr, err := Build(dir("/r"), []walker.Entry{
		dir("/r/a"),
		file("/r/a/x"),
		dir("/r/b"),
		file("/r/b/y"),
		file("/r/z"),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, tr.Len())
	root := tr.Node(tr.Root())
	assert.Equal(t, "/r", root.Path)
	assert.Equal(t, NoNode, root.Parent)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "/r/a", tr.Node(root.Children[0]).Path)

	id, ok := tr.Lookup("/r/b/y")
	require.True(t, ok)
	n := tr.Node(id)
	assert.False(t, n.IsDir())
	assert.Equal(t, "/r/b", tr.Node(n.Parent).Path)

	_, ok = tr.Lookup("/r/missing")
	assert.False(t, ok)
}

func TestBuild_ChildrenSorted(t *testing.T) {
	tr, err := Build(dir("/r"), []walker.Entry{file("/r/c"), dir("/r/a"), file("/r/b")})
	require.NoError(t, err)

	var got []string
	for _, id := range tr.Node(tr.Root()).Children {
		got = append(got, tr.Node(id).Path)
	}
	assert.Equal(t, []string{"/r/a", "/r/b", "/r/c"}, got)
}

func TestBuild_EmptyRoot(t *testing.T) {
	tr, err := Build(dir("/r"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())
	assert.Empty(t, tr.Files(tr.Root()))
}

func TestBuild_StructuralGaps(t *testing.T) {
	tests := []struct {
		name    string
		entries []walker.Entry
		path    string
	}{
		{"child before parent", []walker.Entry{file("/r/a/x"), dir("/r/a")}, "/r/a/x"},
		{"parent never reported", []walker.Entry{file("/r/a/b/x")}, "/r/a/b/x"},
		{"outside root", []walker.Entry{file("/elsewhere/x")}, "/elsewhere/x"},
		{"sibling prefix", []walker.Entry{file("/rr/x")}, "/rr/x"},
		{"file as parent", []walker.Entry{file("/r/f"), file("/r/f/x")}, "/r/f/x"},
		{"reported twice", []walker.Entry{file("/r/x"), file("/r/x")}, "/r/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Build(dir("/r"), tt.entries)
			require.Error(t, err)
			assert.Nil(t, tr, "partial trees must not be returned")
			assert.True(t, errors.Is(err, ErrStructuralGap))

			var gap *GapError
			require.ErrorAs(t, err, &gap)
			assert.Equal(t, tt.path, gap.Path)
		})
	}
}

func TestTree_PostOrder(t *testing.T) {
	tr, err := Build(dir("/r"), []walker.Entry{
		dir("/r/a"), dir("/r/a/b"), file("/r/a/b/x"), file("/r/y"),
	})
	require.NoError(t, err)

	position := make(map[NodeID]int)
	for i, id := range tr.PostOrder(tr.Root()) {
		position[id] = i
	}
	require.Len(t, position, tr.Len())
	for id := NodeID(1); int(id) < tr.Len(); id++ {
		assert.Less(t, position[id], position[tr.Node(id).Parent])
	}

	a, _ := tr.Lookup("/r/a")
	var sub []string
	for _, id := range tr.PostOrder(a) {
		sub = append(sub, tr.Node(id).Path)
	}
	assert.Equal(t, []string{"/r/a/b/x", "/r/a/b", "/r/a"}, sub)
}

func TestTree_FilesAndWalk(t *testing.T) {
	tr, err := Build(dir("/r"), []walker.Entry{
		dir("/r/a"), file("/r/a/x"), {Path: "/r/a/link", Kind: walker.Other}, dir("/r/b"), file("/r/b/y"),
	})
	require.NoError(t, err)

	a, _ := tr.Lookup("/r/a")
	assert.Equal(t, []string{"/r/a/link", "/r/a/x"}, tr.Files(a))
	assert.Equal(t, []string{"/r/a/link", "/r/a/x", "/r/b/y"}, tr.Files(tr.Root()))

	var paths []string
	for _, id := range tr.Descendants(a) {
		paths = append(paths, tr.Node(id).Path)
	}
	assert.Equal(t, []string{"/r/a", "/r/a/link", "/r/a/x"}, paths)

	var visited []string
	tr.Walk(tr.Root(), func(_ NodeID, n *Node) bool {
		visited = append(visited, n.Path)
		return n.Path != "/r/a"
	})
	assert.Equal(t, []string{"/r", "/r/a", "/r/b", "/r/b/y"}, visited)
}

func TestTree_DeepPath(t *testing.T) {
	tr, err := Build(dir("/r"), []walker.Entry{
		dir("/r/chain"), dir("/r/chain/one"), dir("/r/chain/one/two"), file("/r/chain/one/two/x"),
		dir("/r/flat"), file("/r/flat/x"),
		dir("/r/fork"), dir("/r/fork/a"), file("/r/fork/a/x"), file("/r/fork/y"),
	})
	require.NoError(t, err)

	chain, _ := tr.Lookup("/r/chain")
	deep, ok := tr.DeepPath(chain)
	assert.True(t, ok)
	assert.Equal(t, "/r/chain/one/two", deep)

	flat, _ := tr.Lookup("/r/flat")
	_, ok = tr.DeepPath(flat)
	assert.False(t, ok)

	fork, _ := tr.Lookup("/r/fork")
	_, ok = tr.DeepPath(fork)
	assert.False(t, ok)
}

func TestBuild_FromWalk(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"a/x", "a/b/y", "z"} {
		p := filepath.Join(tmpDir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0644))
	}

	res, err := walker.Walk(context.Background(), tmpDir, walker.Options{})
	require.NoError(t, err)

	tr, err := Build(res.Root, res.Entries)
	require.NoError(t, err)
	assert.Equal(t, 6, tr.Len())
	assert.Len(t, tr.Files(tr.Root()), 3)
}
