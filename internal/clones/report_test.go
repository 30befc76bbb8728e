package clones

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{
  "header": {
    "version": "0.34.0",
    "command": ["fclones", "group", "."],
    "base_dir": "/data",
    "timestamp": "2024-03-01T10:00:00.000000000+00:00",
    "paths": [".", "/mnt/backup"]
  },
  "groups": [
    {
      "file_len": 1024,
      "file_hash": "9f3b",
      "files": ["/data/a/x", "b/x"]
    },
    {
      "file_len": 7,
      "file_hash": "ab12",
      "files": ["/data/lonely"]
    }
  ]
}`

func TestParseReport(t *testing.T) {
	log, hook := test.NewNullLogger()

	report, err := ParseReport(strings.NewReader(sampleReport), log)
	require.NoError(t, err)

	assert.Equal(t, "/data", report.BaseDir)
	assert.Equal(t, []string{"/data", "/mnt/backup"}, report.ScannedPaths)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, uint64(1024), report.Groups[0].FileSize)
	assert.Equal(t, []string{"/data/a/x", "/data/b/x"}, report.Groups[0].Paths)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestReport_Covers(t *testing.T) {
	log, _ := test.NewNullLogger()
	report, err := ParseReport(strings.NewReader(sampleReport), log)
	require.NoError(t, err)

	assert.True(t, report.Covers("/data"))
	assert.True(t, report.Covers("/data/a"))
	assert.True(t, report.Covers("/mnt"), "ancestor of a scanned path")
	assert.False(t, report.Covers("/home"))
	assert.False(t, report.Covers("/database"))

	assert.True(t, (&Report{}).Covers("/anything"))
}

func TestParseReport_MissingSections(t *testing.T) {
	log, _ := test.NewNullLogger()

	tests := map[string]string{
		"no header":   `{"groups": []}`,
		"no groups":   `{"header": {}}`,
		"no base dir": `{"header": {"paths": ["."]}, "groups": []}`,
		"no file_len": `{"header": {}, "groups": [{"files": ["/a", "/b"]}]}`,
		"no files":    `{"header": {}, "groups": [{"file_len": 1}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReport(strings.NewReader(doc), log)
			require.Error(t, err)
			assert.ErrorIs(t, err, errMissingSection)
		})
	}
}

func TestParseReport_BadValues(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := ParseReport(strings.NewReader(`{"header": {}, "groups": [{"file_len": 1, "files": [1, 2]}]}`), log)
	assert.Error(t, err)

	_, err = ParseReport(strings.NewReader(`{"header": {}, "groups": [{"file_len": -1, "files": []}]}`), log)
	assert.Error(t, err)

	_, err = ParseReport(strings.NewReader(`not json`), log)
	assert.Error(t, err)
}

func TestLoadReport(t *testing.T) {
	log, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "dupes.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0644))

	report, err := LoadReport(path, log)
	require.NoError(t, err)
	assert.Len(t, report.Groups, 1)

	_, err = LoadReport(filepath.Join(t.TempDir(), "missing.json"), log)
	assert.Error(t, err)
}
