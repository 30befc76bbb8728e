// Package clones holds the duplicate-file groups consumed by the
// classifier and the index used to query them by path.
package clones

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity is returned when duplicate groups overlap or are too
// small to describe a duplicate.
var ErrDataIntegrity = errors.New("duplicate group data integrity violation")

type IntegrityError struct {
	Group  int // position of the offending group in the input
	Path   string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("group #%d: %s", e.Group, e.Reason)
	}
	return fmt.Sprintf("group #%d: %s: %s", e.Group, e.Reason, e.Path)
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// CloneGroup is a set of absolute paths whose contents are identical.
type CloneGroup struct {
	FileSize uint64
	Paths    []string
}

// Group is an indexed CloneGroup. Paths are sorted and distinct.
type Group struct {
	ID       string
	FileSize uint64
	Paths    []string

	// boundaryDepth is the depth of the deepest directory containing
	// every member.
	boundaryDepth int
}

// Len is the number of members.
func (g *Group) Len() int { return len(g.Paths) }

// TotalSize is the size of all members together.
func (g *Group) TotalSize() uint64 { return uint64(len(g.Paths)) * g.FileSize }

// ReclaimableSize is the space freed by keeping a single member.
func (g *Group) ReclaimableSize() uint64 {
	if len(g.Paths) == 0 {
		return 0
	}
	return uint64(len(g.Paths)-1) * g.FileSize
}
