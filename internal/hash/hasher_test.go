package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathsID_OrderIndependent(t *testing.T) {
	a := PathsID([]string{"/a/x", "/b/x", "/c/x"})
	b := PathsID([]string{"/c/x", "/a/x", "/b/x"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 16, "xxhash digest is 8 bytes hex encoded")
}

func TestPathsID_DifferentSets(t *testing.T) {
	assert.NotEqual(t, PathsID([]string{"/a/x", "/b/x"}), PathsID([]string{"/a/x", "/b/y"}))
}

func TestPathsID_NoConcatenationCollision(t *testing.T) {
	assert.NotEqual(t, PathsID([]string{"/ab", "/c"}), PathsID([]string{"/a", "b/c"}))
}

func TestPathsID_DoesNotMutateInput(t *testing.T) {
	in := []string{"/z", "/a"}
	PathsID(in)
	assert.Equal(t, []string{"/z", "/a"}, in)
}
