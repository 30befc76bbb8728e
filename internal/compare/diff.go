package compare

import (
	"sort"

	"clonemap/internal/fspath"
)

// Index resolves the copies of a file that live outside a directory.
type Index interface {
	SiblingsOutside(path, root string) []string
}

// Result is the membership diff between a directory and one external
// location holding copies of its files.
type Result struct {
	Location string `json:"location" yaml:"location"`
	// Missing lists files of the directory with no copy at the location,
	// relative to the directory.
	Missing []string `json:"missing" yaml:"missing"`
	// Extra lists files at the location that are not a copy of anything in
	// the directory, relative to the location.
	Extra []string `json:"extra" yaml:"extra"`
}

// Complete reports whether the location holds a copy of every file.
func (r *Result) Complete() bool { return len(r.Missing) == 0 }

// Exact reports whether the location is a complete substitute with
// nothing else in it.
func (r *Result) Exact() bool { return len(r.Missing) == 0 && len(r.Extra) == 0 }

// Diff compares the files of dir with the files found under location.
// A file of dir counts as present when one of its copies outside dir lies
// under location. Files of location that are inside dir are ignored, which
// happens when location is an ancestor of dir.
func Diff(idx Index, dir string, dirFiles []string, location string, locationFiles []string) *Result {
	result := &Result{
		Location: location,
		Missing:  make([]string, 0),
		Extra:    make([]string, 0),
	}

	copies := make(map[string]bool)
	for _, f := range dirFiles {
		present := false
		for _, sibling := range idx.SiblingsOutside(f, dir) {
			copies[sibling] = true
			if fspath.Within(sibling, location) {
				present = true
			}
		}
		if !present {
			result.Missing = append(result.Missing, fspath.Rel(dir, f))
		}
	}

	for _, f := range locationFiles {
		if copies[f] || fspath.Within(f, dir) {
			continue
		}
		result.Extra = append(result.Extra, fspath.Rel(location, f))
	}

	// Sort for deterministic output
	sort.Strings(result.Missing)
	sort.Strings(result.Extra)
	return result
}
