package tsast

import "github.com/couzic/ts-graph-mcp-sub001/internal/astkit"

func (f *sourceFile) Imports() []astkit.Import {
	f.ensureParsed()
	return f.imports
}

func (f *sourceFile) ReExports() []astkit.ReExport {
	f.ensureParsed()
	return f.reExports
}

func (f *sourceFile) Functions() []astkit.FunctionDecl {
	f.ensureParsed()
	return f.functions
}

func (f *sourceFile) Classes() []astkit.ClassDecl {
	f.ensureParsed()
	return f.classes
}

func (f *sourceFile) Interfaces() []astkit.InterfaceDecl {
	f.ensureParsed()
	return f.interfaces
}

func (f *sourceFile) TypeAliases() []astkit.TypeAliasDecl {
	f.ensureParsed()
	return f.typeAliases
}

func (f *sourceFile) Variables() []astkit.VariableDecl {
	f.ensureParsed()
	return f.variables
}

func (f *sourceFile) TypeRefs() map[string][]astkit.TypeRef {
	f.ensureParsed()
	return f.typeRefs
}
