package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"clonemap/internal/fspath"
)

type Kind int

const (
	File Kind = iota
	Directory
	// Other covers symlinks, devices, sockets and pipes. They are kept as
	// leaves and never followed.
	Other
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "other"
	}
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return Directory
	case mode.IsRegular():
		return File
	default:
		return Other
	}
}

type Entry struct {
	Path string
	Kind Kind
	Size int64
}

// ErrorBehavior selects what happens when an entry below the root cannot
// be read.
type ErrorBehavior string

const (
	ErrorIgnore  ErrorBehavior = "ignore"
	ErrorDisplay ErrorBehavior = "display"
	ErrorStop    ErrorBehavior = "stop"
)

func ParseErrorBehavior(s string) (ErrorBehavior, error) {
	switch b := ErrorBehavior(strings.ToLower(s)); b {
	case ErrorIgnore, ErrorDisplay, ErrorStop:
		return b, nil
	}
	return "", fmt.Errorf("invalid error behavior %q, must be one of: ignore, display, stop", s)
}

type Options struct {
	Exclude       []string
	ErrorBehavior ErrorBehavior
	Log           logrus.FieldLogger
	// OnEntry is called for every accepted entry.
	OnEntry func(Entry)
}

type WalkResult struct {
	Root    Entry
	Entries []Entry // every entry below Root in lexical pre-order
	Errors  []error
}

// Walk lists every file and directory below rootPath. Entries are yielded
// parents first, so a consumer can attach each one to an already seen
// directory.
func Walk(ctx context.Context, rootPath string, opts Options) (*WalkResult, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	behavior := opts.ErrorBehavior
	if behavior == "" {
		behavior = ErrorStop
	}

	root, err := fspath.Normalize(rootPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	// a linked root is followed; links below it are not
	if info.Mode()&fs.ModeSymlink != 0 {
		if root, err = filepath.EvalSymlinks(root); err != nil {
			return nil, fmt.Errorf("failed to resolve root: %w", err)
		}
		if info, err = os.Lstat(root); err != nil {
			return nil, fmt.Errorf("failed to stat root: %w", err)
		}
	}

	result := &WalkResult{
		Root:    Entry{Path: root, Kind: kindOf(info.Mode()), Size: info.Size()},
		Entries: make([]Entry, 0),
		Errors:  make([]error, 0),
	}
	if result.Root.Kind != Directory {
		return result, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// If error is on the root path, return it (don't continue walking)
			if path == root {
				return err
			}
			return handleError(result, behavior, log, path, err)
		}
		if path == root {
			return nil
		}

		normalized, err := fspath.Normalize(path)
		if err != nil {
			// one unresolvable entry must not block the rest of the walk
			log.WithField("path", path).WithError(err).Warn("skipping entry")
			result.Errors = append(result.Errors, err)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(root, normalized)
		if shouldExclude(filepath.ToSlash(relPath), d.IsDir(), opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry := Entry{Path: normalized, Kind: kindOf(d.Type())}
		if entry.Kind == File {
			info, err := d.Info()
			if err != nil {
				return handleError(result, behavior, log, path, err)
			}
			entry.Size = info.Size()
		}

		result.Entries = append(result.Entries, entry)
		if opts.OnEntry != nil {
			opts.OnEntry(entry)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

func handleError(result *WalkResult, behavior ErrorBehavior, log logrus.FieldLogger, path string, err error) error {
	switch behavior {
	case ErrorStop:
		return err
	case ErrorDisplay:
		log.WithField("path", path).WithError(err).Warn("cannot read entry")
	}
	result.Errors = append(result.Errors, err)
	return nil
}

// shouldExclude matches relPath (slash separated) against doublestar
// patterns. Patterns ending in "/" only match directories, by any path
// component; other patterns match the base name or the whole path.
func shouldExclude(relPath string, isDir bool, exclusions []string) bool {
	base := relPath[strings.LastIndex(relPath, "/")+1:]
	for _, pattern := range exclusions {
		if dirPattern, ok := strings.CutSuffix(pattern, "/"); ok {
			if !isDir {
				continue
			}
			if matched, _ := doublestar.Match(dirPattern, base); matched {
				return true
			}
			if matched, _ := doublestar.Match(dirPattern, relPath); matched {
				return true
			}
			continue
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, relPath); matched {
				return true
			}
		}
	}
	return false
}
