// Package render writes view reports as colored text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"clonemap/internal/classify"
	"clonemap/internal/view"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid format %q, must be one of: text, json, yaml", s)
}

type Options struct {
	Format  Format
	Colored bool
	// Absolute keeps absolute paths in text output. Otherwise paths are
	// shown relative to WorkDir.
	Absolute bool
	WorkDir  string
	// NullTerminated prints bare paths separated by NUL bytes.
	NullTerminated bool
	Stats          bool
}

// Renderer writes reports to one writer. Structured formats always carry
// absolute paths.
type Renderer struct {
	w    io.Writer
	opts Options
	yaml *yaml.Encoder

	clone, unique, mixed, faint, missing, extra *color.Color
}

func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{
		w:       w,
		opts:    opts,
		clone:   color.New(color.FgGreen),
		unique:  color.New(color.FgYellow),
		mixed:   color.New(color.FgMagenta),
		faint:   color.New(color.Faint),
		missing: color.New(color.FgRed),
		extra:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{r.clone, r.unique, r.mixed, r.faint, r.missing, r.extra} {
		if opts.Colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Report writes one report.
func (r *Renderer) Report(rep *view.Report) error {
	switch r.opts.Format {
	case FormatJSON:
		encoder := json.NewEncoder(r.w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rep)
	case FormatYAML:
		if r.yaml == nil {
			r.yaml = yaml.NewEncoder(r.w)
			r.yaml.SetIndent(2)
		}
		return r.yaml.Encode(rep)
	default:
		if r.opts.NullTerminated {
			return r.nullTerminated(rep)
		}
		return r.text(rep)
	}
}

// Close flushes a pending YAML stream.
func (r *Renderer) Close() error {
	if r.yaml != nil {
		return r.yaml.Close()
	}
	return nil
}

func (r *Renderer) display(path string) string {
	if r.opts.Absolute || r.opts.WorkDir == "" {
		return path
	}
	rel, err := filepath.Rel(r.opts.WorkDir, path)
	if err != nil {
		return path
	}
	return rel
}

func (r *Renderer) labelColor(c classify.Classification) *color.Color {
	switch c {
	case classify.Clone:
		return r.clone
	case classify.Unique:
		return r.unique
	default:
		return r.mixed
	}
}

func (r *Renderer) nullTerminated(rep *view.Report) error {
	for _, e := range rep.Entries {
		if _, err := fmt.Fprintf(r.w, "%s\x00", r.display(e.Path)); err != nil {
			return err
		}
	}
	return nil
}

// errWriter keeps the first write error and drops everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (r *Renderer) text(rep *view.Report) error {
	w := &errWriter{w: r.w}
	for _, e := range rep.Entries {
		if w.err != nil {
			return w.err
		}
		r.labelColor(e.Classification).Fprint(w, r.display(e.Path))
		if rep.Kind == view.KindDirs {
			r.faint.Fprintf(w, " (%d files, %s)", e.Files, humanize.IBytes(e.Size))
		}
		if e.DeepPath != "" {
			r.faint.Fprintf(w, " -> %s", r.display(e.DeepPath))
		}
		fmt.Fprintln(w)

		if e.Copies != nil {
			for _, c := range e.Copies.Outside {
				fmt.Fprintf(w, "    = %s\n", r.display(c))
			}
			for _, c := range e.Copies.Inside {
				r.faint.Fprintf(w, "    ~ %s\n", r.display(c))
			}
		}
		if e.Locations != nil {
			for _, loc := range e.Locations.Locations {
				fmt.Fprintf(w, "    @ %s (%d files)\n", r.display(loc.Path), loc.Files)
				for _, s := range loc.Sources {
					r.faint.Fprintf(w, "        %s = %s\n", r.display(s.File), r.display(s.Copy))
				}
			}
		}
		for _, d := range e.Diffs {
			fmt.Fprintf(w, "    diff %s", r.display(d.Location))
			if d.Exact() {
				r.clone.Fprint(w, " identical")
			}
			fmt.Fprintln(w)
			for _, m := range d.Missing {
				r.missing.Fprintf(w, "        - %s\n", m)
			}
			for _, x := range d.Extra {
				r.extra.Fprintf(w, "        + %s\n", x)
			}
		}
	}
	if w.err != nil {
		return w.err
	}

	if r.opts.Stats {
		fmt.Fprintln(w)
		if err := r.stats(w, rep); err != nil {
			return err
		}
	}
	return w.err
}

func (r *Renderer) stats(w *errWriter, rep *view.Report) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"Base", "Kind", "Count", "Total size", "Reclaimable"})
	if err := table.Append([]string{
		r.display(rep.Base),
		rep.Kind.String(),
		humanize.Comma(int64(rep.Stats.Count)),
		humanize.IBytes(rep.Stats.TotalSize),
		humanize.IBytes(rep.Stats.ReclaimableSize),
	}); err != nil {
		return fmt.Errorf("failed to add stats row: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	return w.err
}
