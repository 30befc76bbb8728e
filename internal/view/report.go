package view

import (
	"context"
	"fmt"

	"clonemap/internal/classify"
	"clonemap/internal/clones"
	"clonemap/internal/compare"
	"clonemap/internal/tree"
)

// Kind selects what a report lists.
type Kind int

const (
	KindFiles Kind = iota
	KindDirs
)

func (k Kind) String() string {
	if k == KindDirs {
		return "dirs"
	}
	return "files"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Query describes one report.
type Query struct {
	Kind      Kind
	Recursive bool
	// UniqueOnly lists Unique entries instead of Clone ones.
	UniqueOnly bool
	// Inside lists files having a copy below the base, whatever their label.
	Inside bool
	// Outside keeps only files with at least one copy outside the base.
	Outside bool
	// InsideOnly lists the same files as Inside and leaves the copies
	// outside the base out of their mapping.
	InsideOnly bool
	// All lists every matching directory instead of the topmost ones.
	All         bool
	ShowMap     bool
	ShowSources bool
	ShowDiff    bool
}

func (q Query) filter() Filter {
	if q.UniqueOnly {
		return FilterUnique
	}
	return FilterClone
}

type Entry struct {
	Path           string                  `json:"path" yaml:"path"`
	Classification classify.Classification `json:"classification" yaml:"classification"`
	Size           uint64                  `json:"size" yaml:"size"`
	Files          int                     `json:"files,omitempty" yaml:"files,omitempty"`
	DeepPath       string                  `json:"deep_path,omitempty" yaml:"deep_path,omitempty"`
	Copies         *FileMapping            `json:"copies,omitempty" yaml:"copies,omitempty"`
	Locations      *DirMapping             `json:"locations,omitempty" yaml:"locations,omitempty"`
	Diffs          []*compare.Result       `json:"diffs,omitempty" yaml:"diffs,omitempty"`
}

type Stats struct {
	Count           int    `json:"count" yaml:"count"`
	TotalSize       uint64 `json:"total_size" yaml:"total_size"`
	ReclaimableSize uint64 `json:"reclaimable_size" yaml:"reclaimable_size"`
}

type Report struct {
	Base    string  `json:"base" yaml:"base"`
	Kind    Kind    `json:"kind" yaml:"kind"`
	Mode    string  `json:"mode" yaml:"mode"`
	Entries []Entry `json:"entries" yaml:"entries"`
	Stats   Stats   `json:"stats" yaml:"stats"`
}

// Report assembles the listing for base. A cancelled ctx stops the report
// between entries and returns ErrInterrupted.
func (g *Generator) Report(ctx context.Context, base string, q Query) (*Report, error) {
	id, err := g.lookup(base)
	if err != nil {
		return nil, err
	}
	result := g.classifyNode(id)
	report := &Report{
		Base:    result.RootPath(),
		Kind:    q.Kind,
		Mode:    result.Mode().String(),
		Entries: make([]Entry, 0),
	}
	switch q.Kind {
	case KindDirs:
		err = g.dirEntries(ctx, report, result, q)
	default:
		err = g.fileEntries(ctx, report, result, q)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

func (g *Generator) fileEntries(ctx context.Context, report *Report, result *classify.Result, q Query) error {
	inside := q.Inside || q.InsideOnly

	var paths []string
	if inside {
		seq, err := g.InsideDuplicates(report.Base, q.Recursive)
		if err != nil {
			return err
		}
		for p := range seq {
			paths = append(paths, p)
		}
	} else {
		files, err := g.Files(report.Base, q.Recursive, q.filter())
		if err != nil {
			return err
		}
		for p := range files {
			paths = append(paths, p)
		}
	}

	type share struct {
		members int
		outside bool
	}
	groups := make(map[*clones.Group]*share)

	for _, p := range paths {
		if err := interrupted(ctx); err != nil {
			return err
		}
		id := mustLookup(g.tree, p)
		entry := Entry{
			Path:           p,
			Classification: result.Of(id),
			Size:           nodeSize(g.tree.Node(id)),
		}
		if q.Outside && !g.index.HasSiblingOutside(p, report.Base) {
			continue
		}
		if q.ShowMap {
			m, err := g.FileMapping(report.Base, p)
			if err != nil {
				return err
			}
			if m != nil && q.InsideOnly {
				m.Outside = nil
			}
			entry.Copies = m
		}
		report.Stats.add(entry)
		report.Entries = append(report.Entries, entry)

		if !inside {
			if entry.Classification == classify.Clone {
				report.Stats.ReclaimableSize += entry.Size
			}
			continue
		}
		group, _ := g.index.GroupOf(p)
		s, ok := groups[group]
		if !ok {
			s = &share{}
			groups[group] = s
		}
		s.members++
		s.outside = s.outside || entry.Classification == classify.Clone
	}

	// A group kept entirely below the base still needs one member.
	for group, s := range groups {
		n := uint64(s.members)
		if !s.outside {
			n--
		}
		report.Stats.ReclaimableSize += n * group.FileSize
	}
	return nil
}

func (g *Generator) dirEntries(ctx context.Context, report *Report, result *classify.Result, q Query) error {
	dirs, err := g.Dirs(report.Base, q.Recursive, !q.All, q.filter())
	if err != nil {
		return err
	}

	// members of each group found below the listed Clone directories,
	// every file attributed to its topmost listed directory
	type share struct {
		members int
		byDir   map[string]int
	}
	groups := make(map[*clones.Group]*share)
	counted := make(map[string]bool)

	for p, c := range dirs {
		if err := interrupted(ctx); err != nil {
			return err
		}
		id := mustLookup(g.tree, p)
		entry := Entry{Path: p, Classification: c, Files: result.FileCount(id)}
		g.tree.Walk(id, func(_ tree.NodeID, n *tree.Node) bool {
			if n.IsDir() {
				return true
			}
			entry.Size += nodeSize(n)
			if c != classify.Clone || counted[n.Path] {
				return true
			}
			counted[n.Path] = true
			if group, ok := g.index.GroupOf(n.Path); ok {
				s, ok := groups[group]
				if !ok {
					s = &share{byDir: make(map[string]int)}
					groups[group] = s
				}
				s.members++
				s.byDir[p]++
			}
			return true
		})
		if deep, ok := g.tree.DeepPath(id); ok {
			entry.DeepPath = deep
		}
		if q.ShowMap || q.ShowDiff {
			m, err := g.DirMapping(p)
			if err != nil {
				return err
			}
			if q.ShowDiff {
				if entry.Diffs, err = g.Diffs(p, m); err != nil {
					return err
				}
			}
			if q.ShowMap {
				if !q.ShowSources {
					for i := range m.Locations {
						m.Locations[i].Sources = nil
					}
				}
				entry.Locations = m
			}
		}
		report.Stats.add(entry)
		report.Entries = append(report.Entries, entry)
	}

	// A group with no member left outside the listed directories keeps the
	// directory holding most of its members.
	for group, s := range groups {
		n := s.members
		if n == group.Len() {
			n -= maxShare(s.byDir)
		}
		report.Stats.ReclaimableSize += uint64(n) * group.FileSize
	}
	return nil
}

func maxShare(byDir map[string]int) int {
	best := 0
	for _, n := range byDir {
		best = max(best, n)
	}
	return best
}

func (s *Stats) add(e Entry) {
	s.Count++
	s.TotalSize += e.Size
}

func nodeSize(n *tree.Node) uint64 {
	if n.Size < 0 {
		return 0
	}
	return uint64(n.Size)
}

func mustLookup(t *tree.Tree, path string) tree.NodeID {
	id, ok := t.Lookup(path)
	if !ok {
		panic(fmt.Sprintf("view: %s vanished from the tree", path))
	}
	return id
}
