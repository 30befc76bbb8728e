// Package progress shows traversal and pruning progress on an interactive
// stderr. Every method is a no-op when the writer is not a terminal.
package progress

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type Bar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	label   string
	enabled bool
}

// IsInteractive reports whether w is a terminal.
func IsInteractive(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// NewSpinner creates a spinner for a walk of unknown size.
func NewSpinner(w io.Writer, label string) *Bar {
	return newSpinner(w, label, IsInteractive(w))
}

// New creates a counted bar for total steps.
func New(w io.Writer, label string, total int) *Bar {
	return newCounted(w, label, total, IsInteractive(w))
}

func newSpinner(w io.Writer, label string, enabled bool) *Bar {
	b := &Bar{label: label, enabled: enabled}
	if enabled {
		b.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(20),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	return b
}

func newCounted(w io.Writer, label string, total int, enabled bool) *Bar {
	b := &Bar{label: label, enabled: enabled}
	if enabled {
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionClearOnFinish(),
		)
	}
	return b
}

// SetDirectory shows the directory currently being read.
func (b *Bar) SetDirectory(dir string) {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar.Describe(b.label + " " + filepath.Base(dir))
}

// Increment advances by one step. Safe for concurrent use.
func (b *Bar) Increment() {
	if !b.enabled {
		return
	}
	_ = b.bar.Add(1)
}

// Finish completes the bar and clears it from the terminal.
func (b *Bar) Finish() {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}
