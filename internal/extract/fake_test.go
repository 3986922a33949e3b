package extract

import "github.com/couzic/ts-graph-mcp-sub001/internal/astkit"

// fakeSourceFile is a hand-built astkit.SourceFile used to unit test the
// extractors without a real tree-sitter parse, favoring small in-memory
// fixtures over golden-file parses.
type fakeSourceFile struct {
	path        string
	source      []byte
	imports     []astkit.Import
	reExports   []astkit.ReExport
	functions   []astkit.FunctionDecl
	classes     []astkit.ClassDecl
	interfaces  []astkit.InterfaceDecl
	typeAliases []astkit.TypeAliasDecl
	variables   []astkit.VariableDecl
	typeRefs    map[string][]astkit.TypeRef
	symbols     map[string]astkit.Symbol
}

func (f *fakeSourceFile) Path() string                           { return f.path }
func (f *fakeSourceFile) Extension() string                      { return ".ts" }
func (f *fakeSourceFile) Source() []byte                         { return f.source }
func (f *fakeSourceFile) Imports() []astkit.Import                { return f.imports }
func (f *fakeSourceFile) ReExports() []astkit.ReExport            { return f.reExports }
func (f *fakeSourceFile) Functions() []astkit.FunctionDecl        { return f.functions }
func (f *fakeSourceFile) Classes() []astkit.ClassDecl             { return f.classes }
func (f *fakeSourceFile) Interfaces() []astkit.InterfaceDecl       { return f.interfaces }
func (f *fakeSourceFile) TypeAliases() []astkit.TypeAliasDecl     { return f.typeAliases }
func (f *fakeSourceFile) Variables() []astkit.VariableDecl        { return f.variables }
func (f *fakeSourceFile) TypeRefs() map[string][]astkit.TypeRef   { return f.typeRefs }

func (f *fakeSourceFile) ResolveSymbol(localName string) (astkit.Symbol, bool) {
	sym, ok := f.symbols[localName]
	return sym, ok
}
