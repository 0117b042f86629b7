package extractor

import (
	"strings"

	"github.com/sedalabs/scriptscan/internal/types"
)

// NotebookExtractor handles the notebook kind. Notebooks are deliberately
// approximated by cell-marker counts rather than parsed structurally, so
// their functions and imports stay empty. This systematically underestimates
// notebook similarity; replacing it requires a real notebook parser, not a
// tweak here.
type NotebookExtractor struct{}

// Compile-time check that NotebookExtractor implements Extractor
var _ Extractor = (*NotebookExtractor)(nil)

// NewNotebookExtractor creates the notebook extractor
func NewNotebookExtractor() *NotebookExtractor {
	return &NotebookExtractor{}
}

// Kind implements Extractor
func (e *NotebookExtractor) Kind() types.FileKind {
	return types.KindNotebook
}

// Extract implements Extractor
func (e *NotebookExtractor) Extract(content string) types.Fingerprint {
	fp := types.NewFingerprint()
	fp.LineCount = lineCount(content)
	fp.CellCount = strings.Count(content, `"cell_type"`)
	fp.CodeCells = strings.Count(content, `"cell_type": "code"`)
	fp.MarkdownCells = strings.Count(content, `"cell_type": "markdown"`)
	return fp
}
