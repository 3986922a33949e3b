package tsast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

func stringLiteralValue(node *tree_sitter.Node, source []byte) string {
	text := nodeText(node, source)
	text = strings.Trim(text, "'\"`")
	return text
}

// handleImport extracts one `import ... from '...'` statement, including
// default, named and namespace forms, per §4.1's import enumeration.
func (f *sourceFile) handleImport(node *tree_sitter.Node) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return // side-effect-only import: `import './polyfill'`
	}
	specifier := stringLiteralValue(sourceNode, f.source)
	typeOnly := strings.HasPrefix(strings.TrimSpace(nodeText(node, f.source)), "import type")

	var names []astkit.ImportedName
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "import_clause":
			names = append(names, f.collectClauseNames(child)...)
		}
	}

	if len(names) == 0 {
		return
	}
	f.imports = append(f.imports, astkit.Import{Specifier: specifier, TypeOnly: typeOnly, Names: names})
}

func (f *sourceFile) collectClauseNames(clause *tree_sitter.Node) []astkit.ImportedName {
	var names []astkit.ImportedName
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			// Bare default import binding: `import Foo from './foo'`.
			names = append(names, astkit.ImportedName{Name: "default", Alias: nodeText(child, f.source), Form: astkit.ImportDefault})
		case "namespace_import":
			if id := child.NamedChild(0); id != nil {
				names = append(names, astkit.ImportedName{Alias: nodeText(id, f.source), Form: astkit.ImportNamespace})
			}
		case "named_imports":
			names = append(names, f.collectNamedSpecifiers(child)...)
		}
	}
	return names
}

func (f *sourceFile) collectNamedSpecifiers(block *tree_sitter.Node) []astkit.ImportedName {
	var names []astkit.ImportedName
	for i := uint(0); i < block.NamedChildCount(); i++ {
		spec := block.NamedChild(i)
		if spec.Kind() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, f.source)
		alias := ""
		if aliasNode != nil {
			alias = nodeText(aliasNode, f.source)
		}
		names = append(names, astkit.ImportedName{Name: name, Alias: alias, Form: astkit.ImportNamed})
	}
	return names
}

// handleExport dispatches an export_statement: a re-export (has a
// "source" clause), an exported declaration, or `export default`.
func (f *sourceFile) handleExport(node *tree_sitter.Node) {
	if sourceNode := node.ChildByFieldName("source"); sourceNode != nil {
		f.handleReExport(node, sourceNode)
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "function_declaration", "generator_function_declaration":
			f.handleFunction(child, true)
		case "class_declaration", "abstract_class_declaration":
			f.handleClass(child, true)
		case "interface_declaration":
			f.handleInterface(child, true)
		case "type_alias_declaration":
			f.handleTypeAlias(child, true)
		case "lexical_declaration", "variable_declaration":
			f.handleVariableStatement(child, true)
		}
	}
}

func (f *sourceFile) handleReExport(node, sourceNode *tree_sitter.Node) {
	specifier := stringLiteralValue(sourceNode, f.source)
	var names []astkit.ImportedName

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			spec := child.NamedChild(j)
			if spec.Kind() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			aliasNode := spec.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := nodeText(nameNode, f.source)
			alias := name
			if aliasNode != nil {
				alias = nodeText(aliasNode, f.source)
			}
			names = append(names, astkit.ImportedName{Name: name, Alias: alias, Form: astkit.ImportNamed})
		}
	}

	// `export * from './x'` carries no export_clause; Names stays empty,
	// meaning "every symbol of the target", which the import map treats
	// as unresolvable per-name (§4.3 leaves wildcard re-exports to a
	// future cross-file pass).
	f.reExports = append(f.reExports, astkit.ReExport{Specifier: specifier, Names: names})
}
