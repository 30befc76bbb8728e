package clones

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"clonemap/internal/fspath"
)

// Report is a parsed fclones duplicate report.
type Report struct {
	BaseDir      string
	ScannedPaths []string
	Groups       []CloneGroup
}

type serializedReport struct {
	Header *serializedHeader  `json:"header"`
	Groups *[]serializedGroup `json:"groups"`
}

type serializedHeader struct {
	BaseDir *string   `json:"base_dir"`
	Paths   *[]string `json:"paths"`
}

type serializedGroup struct {
	FileLen *uint64   `json:"file_len"`
	Files   *[]string `json:"files"`
}

// LoadReport reads an fclones JSON report from path.
func LoadReport(path string, log logrus.FieldLogger) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clones list: %w", err)
	}
	defer f.Close()

	report, err := ParseReport(f, log)
	if err != nil {
		return nil, fmt.Errorf("failed to read clones list %s: %w", path, err)
	}
	return report, nil
}

// ParseReport decodes an fclones JSON report. Relative paths are resolved
// against the header's base_dir. Groups with fewer than two files are
// dropped with a warning.
func ParseReport(r io.Reader, log logrus.FieldLogger) (*Report, error) {
	var raw serializedReport
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	if raw.Header == nil {
		return nil, missingSection("header")
	}
	if raw.Groups == nil {
		return nil, missingSection("groups")
	}

	report := &Report{}
	if raw.Header.BaseDir != nil {
		report.BaseDir = filepath.Clean(*raw.Header.BaseDir)
	}

	if raw.Header.Paths != nil {
		if report.BaseDir == "" {
			return nil, missingSection("header/base_dir")
		}
		for _, p := range *raw.Header.Paths {
			abs, err := fspath.NormalizeFrom(report.BaseDir, p)
			if err != nil {
				return nil, fmt.Errorf("bad scanned path: %w", err)
			}
			report.ScannedPaths = append(report.ScannedPaths, abs)
		}
	}

	report.Groups = make([]CloneGroup, 0, len(*raw.Groups))
	for i, g := range *raw.Groups {
		if g.FileLen == nil {
			return nil, missingSection(fmt.Sprintf("groups[%d]/file_len", i))
		}
		if g.Files == nil {
			return nil, missingSection(fmt.Sprintf("groups[%d]/files", i))
		}
		paths := make([]string, 0, len(*g.Files))
		for _, p := range *g.Files {
			abs, err := fspath.NormalizeFrom(report.BaseDir, p)
			if err != nil {
				return nil, fmt.Errorf("bad path in groups[%d]: %w", i, err)
			}
			paths = append(paths, abs)
		}
		if len(paths) < 2 {
			log.WithField("group", i).Warn("skipping duplicate group with less than 2 files")
			continue
		}
		report.Groups = append(report.Groups, CloneGroup{FileSize: *g.FileLen, Paths: paths})
	}

	return report, nil
}

// Covers reports whether path shares content with the paths the report was
// generated for. A report without scanned paths covers everything.
func (r *Report) Covers(path string) bool {
	if len(r.ScannedPaths) == 0 {
		return true
	}
	for _, scanned := range r.ScannedPaths {
		if fspath.Within(path, scanned) || fspath.Within(scanned, path) {
			return true
		}
	}
	return false
}

func missingSection(section string) error {
	return fmt.Errorf("missing %s section: %w", section, errMissingSection)
}

var errMissingSection = errors.New("malformed report")
