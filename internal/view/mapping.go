package view

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"clonemap/internal/compare"
	"clonemap/internal/fspath"
)

// FileMapping lists where the copies of one file live.
type FileMapping struct {
	Group    string `json:"group" yaml:"group"`
	FileSize uint64 `json:"file_size" yaml:"file_size"`
	// Outside holds the copies outside the base directory.
	Outside []string `json:"outside" yaml:"outside"`
	// Inside holds the other copies below the base directory.
	Inside []string `json:"inside,omitempty" yaml:"inside,omitempty"`
}

// Source pairs a file of a directory with one of its copies.
type Source struct {
	File string `json:"file" yaml:"file"`
	Copy string `json:"copy" yaml:"copy"`
}

// Location is a directory outside the mapped directory holding copies of
// its files.
type Location struct {
	Path    string   `json:"path" yaml:"path"`
	Files   int      `json:"files" yaml:"files"`
	Sources []Source `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// DirMapping lists the locations holding copies of a directory's files.
type DirMapping struct {
	Locations []Location `json:"locations" yaml:"locations"`
}

// FileMapping returns the copies of path split around base. It returns nil
// for a file that belongs to no group.
func (g *Generator) FileMapping(base, path string) (*FileMapping, error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	root := g.tree.Node(id).Path

	group, ok := g.index.GroupOf(filepath.Clean(path))
	if !ok {
		return nil, nil
	}
	return &FileMapping{
		Group:    group.ID,
		FileSize: group.FileSize,
		Outside:  g.index.SiblingsOutside(path, root),
		Inside:   g.index.SiblingsInside(path, root),
	}, nil
}

// DirMapping collects the copies outside dir of every file below dir and
// groups them by location. The location of a copy is the directory that
// mirrors dir, found by stripping the file's path relative to dir from the
// copy. Copies that do not mirror the layout fall back to their parent
// directory.
func (g *Generator) DirMapping(dir string) (*DirMapping, error) {
	id, err := g.lookup(dir)
	if err != nil {
		return nil, err
	}
	dir = g.tree.Node(id).Path

	byLocation := make(map[string]*Location)
	for _, f := range g.tree.Files(id) {
		rel := fspath.Rel(dir, f)
		for _, c := range g.index.SiblingsOutside(f, dir) {
			at := anchor(rel, c)
			loc, ok := byLocation[at]
			if !ok {
				loc = &Location{Path: at}
				byLocation[at] = loc
			}
			loc.Sources = append(loc.Sources, Source{File: f, Copy: c})
		}
	}

	mapping := &DirMapping{Locations: make([]Location, 0, len(byLocation))}
	for _, loc := range byLocation {
		sort.Slice(loc.Sources, func(i, j int) bool {
			if loc.Sources[i].File != loc.Sources[j].File {
				return loc.Sources[i].File < loc.Sources[j].File
			}
			return loc.Sources[i].Copy < loc.Sources[j].Copy
		})
		loc.Files = countFiles(loc.Sources)
		mapping.Locations = append(mapping.Locations, *loc)
	}
	sort.Slice(mapping.Locations, func(i, j int) bool {
		return mapping.Locations[i].Path < mapping.Locations[j].Path
	})
	return mapping, nil
}

func countFiles(sources []Source) int {
	n := 0
	for i, s := range sources {
		if i == 0 || sources[i-1].File != s.File {
			n++
		}
	}
	return n
}

// anchor returns the directory of copy that corresponds to the mapped
// directory when copy sits at the same relative path rel.
func anchor(rel, copyPath string) string {
	suffix := string(filepath.Separator) + rel
	if rel != "." && strings.HasSuffix(copyPath, suffix) {
		if at := strings.TrimSuffix(copyPath, suffix); at != "" {
			return at
		}
		return string(filepath.Separator)
	}
	return fspath.Parent(copyPath)
}

// Diffs runs a membership diff of dir against each location of its mapping.
func (g *Generator) Diffs(dir string, mapping *DirMapping) ([]*compare.Result, error) {
	id, err := g.lookup(dir)
	if err != nil {
		return nil, err
	}
	dir = g.tree.Node(id).Path
	dirFiles := g.tree.Files(id)

	out := make([]*compare.Result, 0, len(mapping.Locations))
	for _, loc := range mapping.Locations {
		files, err := g.locationFiles(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("diff %s against %s: %w", dir, loc.Path, err)
		}
		out = append(out, compare.Diff(g.index, dir, dirFiles, loc.Path, files))
	}
	return out, nil
}
