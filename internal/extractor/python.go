package extractor

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/sedalabs/scriptscan/internal/types"
)

// Plot and modeling library name fragments matched against import paths.
// A fragment match anywhere in the import records the full import as a signal.
var (
	pythonPlotLibraries  = []string{"matplotlib", "seaborn", "plotly", "bokeh"}
	pythonModelLibraries = []string{"sklearn", "tensorflow", "pytorch", "keras", "xgboost"}
)

// pythonQuery captures declarations and imports in a single pass.
// Aliased imports record the original module name, not the alias, and
// "from X import Y" forms record "X.Y".
const pythonQuery = `
(function_definition name: (identifier) @func)
(class_definition name: (identifier) @class)
(import_statement name: (dotted_name) @import)
(import_statement name: (aliased_import name: (dotted_name) @import))
(import_from_statement
  module_name: (_) @from.module
  name: (dotted_name) @from.name)
(import_from_statement
  module_name: (_) @from.module
  name: (aliased_import name: (dotted_name) @from.name))
(import_from_statement
  module_name: (_) @from.module
  (wildcard_import) @from.wildcard)
`

// PythonExtractor handles the general-script kind by parsing the file into
// a syntax tree and collecting declared functions, classes, and imports.
type PythonExtractor struct {
	lang *sitter.Language
}

// Compile-time check that PythonExtractor implements Extractor
var _ Extractor = (*PythonExtractor)(nil)

// NewPythonExtractor creates the general-script extractor
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{lang: python.GetLanguage()}
}

// Kind implements Extractor
func (e *PythonExtractor) Kind() types.FileKind {
	return types.KindGeneralScript
}

// Extract implements Extractor. Syntactically invalid scripts still parse
// into a partial tree; whatever could not be derived stays empty.
func (e *PythonExtractor) Extract(content string) types.Fingerprint {
	fp := types.NewFingerprint()
	fp.LineCount = lineCount(content)

	source := []byte(content)

	parser := sitter.NewParser()
	parser.SetLanguage(e.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return fp
	}

	query, err := sitter.NewQuery([]byte(pythonQuery), e.lang)
	if err != nil {
		return fp
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var module string
		var names []string
		wildcard := false

		for _, c := range m.Captures {
			text := c.Node.Content(source)
			switch query.CaptureNameForId(c.Index) {
			case "func", "class":
				fp.Functions = appendUnique(fp.Functions, text)
			case "import":
				fp.Imports = appendUnique(fp.Imports, text)
			case "from.module":
				module = text
			case "from.name":
				names = append(names, text)
			case "from.wildcard":
				wildcard = true
			}
		}

		if module != "" {
			for _, name := range names {
				fp.Imports = appendUnique(fp.Imports, module+"."+name)
			}
			if wildcard {
				fp.Imports = appendUnique(fp.Imports, module+".*")
			}
		}
	}

	for _, imp := range fp.Imports {
		if containsAny(imp, pythonPlotLibraries) {
			fp.PlotSignals = appendUnique(fp.PlotSignals, imp)
		}
		if containsAny(imp, pythonModelLibraries) {
			fp.ModelSignals = appendUnique(fp.ModelSignals, imp)
		}
	}

	return fp
}
