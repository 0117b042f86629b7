package extractor

import (
	"regexp"
	"strings"

	"github.com/sedalabs/scriptscan/internal/types"
)

// Call fragments matched per line for statistical scripts. A matching line
// contributes a truncated snippet, not just the fragment, so the alert
// description can show what was actually invoked.
var (
	rPlotFunctions  = []string{"ggplot", "plot", "hist", "boxplot", "barplot"}
	rModelFunctions = []string{"lm(", "glm(", "randomForest(", "svm("}
)

var rLibraryPattern = regexp.MustCompile(`(?:library|require)\(([^)]+)\)`)

// rSignalMaxLen caps recorded plot/model snippets
const rSignalMaxLen = 50

// RScriptExtractor handles the statistical-script kind. R has no parser
// available here, so extraction is line-oriented.
type RScriptExtractor struct{}

// Compile-time check that RScriptExtractor implements Extractor
var _ Extractor = (*RScriptExtractor)(nil)

// NewRScriptExtractor creates the statistical-script extractor
func NewRScriptExtractor() *RScriptExtractor {
	return &RScriptExtractor{}
}

// Kind implements Extractor
func (e *RScriptExtractor) Kind() types.FileKind {
	return types.KindStatisticalScript
}

// Extract implements Extractor
func (e *RScriptExtractor) Extract(content string) types.Fingerprint {
	fp := types.NewFingerprint()
	fp.LineCount = lineCount(content)

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "library(") || strings.HasPrefix(line, "require(") {
			if m := rLibraryPattern.FindStringSubmatch(line); m != nil {
				lib := strings.Trim(strings.TrimSpace(m[1]), `"'`)
				if lib != "" {
					fp.Imports = appendUnique(fp.Imports, lib)
				}
			}
		}

		if idx := strings.Index(line, " <- function("); idx > 0 {
			name := strings.TrimSpace(line[:idx])
			if name != "" {
				fp.Functions = appendUnique(fp.Functions, name)
			}
		}

		if containsAny(line, rPlotFunctions) {
			fp.PlotSignals = appendUnique(fp.PlotSignals, truncate(line, rSignalMaxLen))
		}
		if containsAny(line, rModelFunctions) {
			fp.ModelSignals = appendUnique(fp.ModelSignals, truncate(line, rSignalMaxLen))
		}
	}

	return fp
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
