package hash

import (
	"encoding/hex"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// PathsID returns a stable identifier for a set of paths. The result does
// not depend on the order of the input.
func PathsID(paths []string) string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := xxhash.New()
	for _, p := range sorted {
		h.WriteString(p)
		// NUL cannot appear inside a path, so it separates members unambiguously
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
