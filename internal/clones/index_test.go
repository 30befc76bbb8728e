package clones

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex_Lookup(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{
		{FileSize: 10, Paths: []string{"/B/x", "/A/x"}},
		{FileSize: 3, Paths: []string{"/A/y", "/A/sub/y", "/C/y"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, idx.GroupCount())
	assert.Equal(t, 5, idx.PathCount())

	g, ok := idx.GroupOf("/A/x")
	require.True(t, ok)
	assert.Equal(t, []string{"/A/x", "/B/x"}, g.Paths)
	assert.Equal(t, uint64(10), g.FileSize)
	depth, ok := idx.BoundaryDepth("/A/x")
	require.True(t, ok)
	assert.Equal(t, 0, depth)

	_, ok = idx.GroupOf("/A/missing")
	assert.False(t, ok)
}

func TestNewIndex_StableIDs(t *testing.T) {
	a, err := NewIndex([]CloneGroup{{Paths: []string{"/a", "/b"}}})
	require.NoError(t, err)
	b, err := NewIndex([]CloneGroup{{Paths: []string{"/b", "/a"}}})
	require.NoError(t, err)

	ga, _ := a.GroupOf("/a")
	gb, _ := b.GroupOf("/a")
	assert.Equal(t, ga.ID, gb.ID)
}

func TestNewIndex_DuplicateWithinGroupCollapses(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{{Paths: []string{"/a", "/a/../a", "/b"}}})
	require.NoError(t, err)
	g, _ := idx.GroupOf("/a")
	assert.Equal(t, 2, g.Len())
}

func TestNewIndex_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name   string
		groups []CloneGroup
		path   string
	}{
		{
			name:   "single member",
			groups: []CloneGroup{{Paths: []string{"/a"}}},
		},
		{
			name:   "two copies of one path",
			groups: []CloneGroup{{Paths: []string{"/a", "/a"}}},
		},
		{
			name: "path in two groups",
			groups: []CloneGroup{
				{Paths: []string{"/a", "/b"}},
				{Paths: []string{"/c", "/a"}},
			},
			path: "/a",
		},
		{
			name:   "relative path",
			groups: []CloneGroup{{Paths: []string{"a", "/b"}}},
			path:   "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := NewIndex(tt.groups)
			require.Error(t, err)
			assert.Nil(t, idx)
			assert.True(t, errors.Is(err, ErrDataIntegrity))

			var ie *IntegrityError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.path, ie.Path)
		})
	}
}

func TestIndex_Siblings(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{{Paths: []string{"/A/x", "/A/sub/x", "/B/x"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"/A/sub/x", "/B/x"}, idx.Siblings("/A/x"))
	assert.Nil(t, idx.Siblings("/nope"))

	assert.Equal(t, []string{"/B/x"}, idx.SiblingsOutside("/A/x", "/A"))
	assert.Equal(t, []string{"/A/sub/x", "/B/x"}, idx.SiblingsOutside("/A/x", "/A/x"))
	assert.Empty(t, idx.SiblingsOutside("/A/x", "/"))
	assert.Equal(t, []string{"/A/sub/x"}, idx.SiblingsInside("/A/x", "/A"))

	assert.True(t, idx.HasSiblingOutside("/A/x", "/A"))
	assert.False(t, idx.HasSiblingOutside("/A/x", "/"))
	assert.False(t, idx.HasSiblingOutside("/nope", "/A"))
}

func TestIndex_SiblingsOutside_PrefixIsNotContainment(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{{Paths: []string{"/A/x", "/AB/x"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/AB/x"}, idx.SiblingsOutside("/A/x", "/A"))
}

func TestIndex_BoundaryDepth(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{
		{Paths: []string{"/A/x", "/B/x"}},
		{Paths: []string{"/A/s/y", "/A/t/y"}},
	})
	require.NoError(t, err)

	d, ok := idx.BoundaryDepth("/B/x")
	require.True(t, ok)
	assert.Equal(t, 0, d)

	d, ok = idx.BoundaryDepth("/A/t/y")
	require.True(t, ok)
	assert.Equal(t, 1, d)

	_, ok = idx.BoundaryDepth("/C")
	assert.False(t, ok)
}

func TestGroup_Sizes(t *testing.T) {
	g := &Group{FileSize: 100, Paths: []string{"/a", "/b", "/c"}}
	assert.Equal(t, uint64(300), g.TotalSize())
	assert.Equal(t, uint64(200), g.ReclaimableSize())
	assert.Equal(t, uint64(0), (&Group{FileSize: 5}).ReclaimableSize())
}

func TestIndex_GroupsOrdered(t *testing.T) {
	idx, err := NewIndex([]CloneGroup{
		{Paths: []string{"/z/1", "/z/2"}},
		{Paths: []string{"/a/1", "/a/2"}},
	})
	require.NoError(t, err)
	groups := idx.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "/a/1", groups[0].Paths[0])
	assert.Equal(t, "/z/1", groups[1].Paths[0])
}
