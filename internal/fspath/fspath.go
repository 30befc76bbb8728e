// Package fspath normalizes filesystem paths and answers containment
// questions on normalized paths without touching the filesystem.
package fspath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathResolution marks a path that could not be made absolute.
var ErrPathResolution = errors.New("path resolution failed")

type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve path %q: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{ErrPathResolution, e.Err}
}

const sep = string(filepath.Separator)

// Normalize returns the cleaned absolute form of path. Relative paths are
// resolved against the current working directory.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", &ResolutionError{Path: path, Err: errors.New("empty path")}
	}
	if strings.ContainsRune(path, 0) {
		return "", &ResolutionError{Path: path, Err: errors.New("path contains NUL byte")}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ResolutionError{Path: path, Err: err}
	}
	return abs, nil
}

// NormalizeFrom resolves path against base when it is relative.
func NormalizeFrom(base, path string) (string, error) {
	if path == "" {
		return "", &ResolutionError{Path: path, Err: errors.New("empty path")}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return Normalize(path)
}

// Within reports whether path is root itself or lies below it.
// Both arguments must already be normalized.
func Within(path, root string) bool {
	if path == root {
		return true
	}
	if root == sep {
		return strings.HasPrefix(path, sep)
	}
	return strings.HasPrefix(path, root+sep)
}

// Rel returns path relative to root, or path unchanged when it is not
// inside root.
func Rel(root, path string) string {
	if !Within(path, root) {
		return path
	}
	if path == root {
		return "."
	}
	if root == sep {
		return path[1:]
	}
	return path[len(root)+1:]
}

// Depth counts the components of a normalized absolute path. The
// filesystem root has depth 0.
func Depth(path string) int {
	trimmed := strings.Trim(path, sep)
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, sep) + 1
}

// Parent returns the directory containing path.
func Parent(path string) string {
	return filepath.Dir(path)
}

// CommonDir returns the deepest directory containing every path.
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	common := Parent(paths[0])
	for _, p := range paths[1:] {
		for !Within(p, common) {
			next := Parent(common)
			if next == common {
				break
			}
			common = next
		}
	}
	return common
}
