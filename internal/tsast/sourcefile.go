package tsast

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

// sourceFile is a lazily-parsed file: it is parsed once, on first
// access, and the declarations extracted from that single pass are
// cached for every later query; the tree itself is closed after the walk.
type sourceFile struct {
	path    string
	dialect dialect
	source  []byte

	once        sync.Once
	imports     []astkit.Import
	reExports   []astkit.ReExport
	functions   []astkit.FunctionDecl
	classes     []astkit.ClassDecl
	interfaces  []astkit.InterfaceDecl
	typeAliases []astkit.TypeAliasDecl
	variables   []astkit.VariableDecl
	typeRefs    map[string][]astkit.TypeRef

	// currentOwnerKey is the TypeRefs() key of the declaration currently
	// being extracted, so nested param/return type collection can
	// attribute refs without threading it through every helper call.
	currentOwnerKey string

	project *Project
}

func newSourceFile(path string, d dialect, source []byte) *sourceFile {
	return &sourceFile{path: path, dialect: d, source: source}
}

func (f *sourceFile) Path() string { return f.path }

func (f *sourceFile) Source() []byte { return f.source }

func (f *sourceFile) Extension() string {
	switch f.dialect {
	case dialectTS:
		return ".ts"
	case dialectTSX:
		return ".tsx"
	default:
		return ".js"
	}
}

// ensureParsed runs the single top-level walk that populates every
// declaration slice. It is idempotent and safe to call from every
// accessor method.
func (f *sourceFile) ensureParsed() {
	f.once.Do(func() {
		f.typeRefs = map[string][]astkit.TypeRef{}

		tree, err := parse(f.dialect, f.source)
		if err != nil {
			return // unparsable file: every accessor returns empty results
		}
		defer tree.Close()

		root := tree.RootNode()
		for i := uint(0); i < root.NamedChildCount(); i++ {
			f.walkTopLevel(root.NamedChild(i))
		}
	})
}

// walkTopLevel dispatches one top-level statement. export_statement is
// unwrapped to its inner declaration (exported = true) or treated as a
// re-export when it carries a "source" clause.
func (f *sourceFile) walkTopLevel(node *tree_sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "import_statement":
		f.handleImport(node)
	case "export_statement":
		f.handleExport(node)
	case "function_declaration", "generator_function_declaration":
		f.handleFunction(node, false)
	case "class_declaration", "abstract_class_declaration":
		f.handleClass(node, false)
	case "interface_declaration":
		f.handleInterface(node, false)
	case "type_alias_declaration":
		f.handleTypeAlias(node, false)
	case "lexical_declaration", "variable_declaration":
		f.handleVariableStatement(node, false)
	}
}
