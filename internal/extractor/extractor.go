// Package extractor turns raw script text into structural fingerprints.
//
// Each file kind has its own extraction strategy behind a common interface.
// Extraction never fails: malformed input degrades to an empty-but-valid
// fingerprint so callers always receive well-defined sets.
package extractor

import (
	"fmt"
	"strings"

	"github.com/sedalabs/scriptscan/internal/types"
)

// Extractor produces a fingerprint from raw file content for one file kind
type Extractor interface {
	// Kind returns the file kind this extractor handles
	Kind() types.FileKind

	// Extract parses content into a fingerprint. It must not fail;
	// unparseable input yields empty sets for the fields it could not derive.
	Extract(content string) types.Fingerprint
}

// ForKind returns the extractor for a file kind
func ForKind(kind types.FileKind) (Extractor, error) {
	switch kind {
	case types.KindGeneralScript:
		return NewPythonExtractor(), nil
	case types.KindStatisticalScript:
		return NewRScriptExtractor(), nil
	case types.KindNotebook:
		return NewNotebookExtractor(), nil
	}
	return nil, fmt.Errorf("no extractor for file kind %q", kind)
}

// lineCount counts logical lines the way a splitlines call would:
// a trailing newline does not start an extra empty line.
func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// appendUnique adds value to set if not already present, preserving
// first-seen order
func appendUnique(set []string, value string) []string {
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

// containsAny reports whether s contains any of the given fragments
func containsAny(s string, fragments []string) bool {
	for _, frag := range fragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
