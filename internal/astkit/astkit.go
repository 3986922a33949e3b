// Package astkit defines the AstProject/SourceFile collaborator boundary
// described in §4.1. The extractor and ingestion layers depend only
// on these interfaces; the concrete tree-sitter implementation lives in
// internal/tsast and is swappable for any host AST facility that
// satisfies the same contract.
package astkit

// ImportForm distinguishes how a name enters a file's scope.
type ImportForm int

const (
	ImportNamed ImportForm = iota
	ImportDefault
	ImportNamespace
)

// ImportedName is one name bound by an import declaration.
type ImportedName struct {
	// Name is the name as exported by the target module ("" for the
	// default export when Form == ImportDefault is not applicable here;
	// for ImportNamespace, Name is empty and Alias is the namespace
	// binding).
	Name  string
	Alias string
	Form  ImportForm
}

// Import is one import declaration in a source file.
type Import struct {
	// Specifier is the raw module specifier text ("./foo", "react").
	Specifier string
	TypeOnly  bool
	Names     []ImportedName
}

// ReExport is one `export { a, b as c } from './mod'` or
// `export { default as X } from './mod'` declaration.
type ReExport struct {
	Specifier string
	Names     []ImportedName
}

// Visibility mirrors graph.Visibility without importing the graph
// package, keeping astkit dependency-free of the data model.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// Param is a callable's parameter as seen by the host AST.
type Param struct {
	Name     string
	TypeText string
}

// Span is a 1-indexed inclusive line range.
type Span struct {
	StartLine int
	EndLine   int
}

// FunctionDecl is a top-level function or an arrow-function-valued
// variable (already rewritten to Function per §4.2).
type FunctionDecl struct {
	Name       string
	Exported   bool
	Async      bool
	Params     []Param
	ReturnType string
	Span       Span
	// BodyCalls and BodyRefs are produced by the AST facility's walk of
	// the callable body; the extractor layer resolves their callee
	// identifiers against the symbol map rather than re-walking text.
	BodyCalls []CallExpr
	BodyRefs  []ValueUse
}

// MethodDecl is a member function of a Class or Interface.
type MethodDecl struct {
	Name       string
	Visibility Visibility
	Static     bool
	Async      bool
	Params     []Param
	ReturnType string
	Span       Span
	BodyCalls  []CallExpr
	BodyRefs   []ValueUse
}

// PropertyDecl is a class/interface field.
type PropertyDecl struct {
	Name       string
	Visibility Visibility
	TypeText   string
	Optional   bool
	Readonly   bool
	Span       Span
}

// ClassDecl is a top-level class.
type ClassDecl struct {
	Name       string
	Exported   bool
	Extends    string
	Implements []string
	Methods    []MethodDecl
	Properties []PropertyDecl
	Span       Span
}

// InterfaceDecl is a top-level interface.
type InterfaceDecl struct {
	Name       string
	Exported   bool
	Extends    []string
	Methods    []MethodDecl
	Properties []PropertyDecl
	Span       Span
}

// TypeAliasDecl is a top-level `type X = ...` declaration.
type TypeAliasDecl struct {
	Name       string
	Exported   bool
	AliasedType string
	Span       Span
}

// VariableDecl is a top-level `const`/`let`/`var` declaration whose
// initializer is not an arrow function (those surface as FunctionDecl
// instead, per §4.2's declaration-site rewrite).
type VariableDecl struct {
	Name     string
	Exported bool
	IsConst  bool
	TypeText string
	Span     Span
	// InitializerUse, when non-nil, names a symbol the initializer
	// directly assigns from (`const alias = target;`), feeding the
	// REFERENCES "assignment" context in §4.4.
	InitializerUse *ValueUse
}

// CallExpr is one call expression found in a callable's body.
type CallExpr struct {
	// Callee is the leftmost segment of the call target text
	// ("foo.bar()" -> "foo"), per §4.4.
	Callee string
	// Member is the remainder after the leftmost segment, if any
	// ("foo.bar()" -> "bar"), used for namespace-qualified calls.
	Member string
	Span   Span
}

// UseContext mirrors graph.ReferenceContext.
type UseContext string

const (
	UseCallback   UseContext = "callback"
	UseProperty   UseContext = "property"
	UseArray      UseContext = "array"
	UseReturn     UseContext = "return"
	UseAssignment UseContext = "assignment"
	UseAccess     UseContext = "access"
)

// ValueUse is a named symbol used in a value position other than being
// directly called, per §4.4's REFERENCES rule.
type ValueUse struct {
	Name    string
	Member  string
	Context UseContext
	Span    Span
}

// TypeRef is a base named type extracted from an annotation, before
// generics/arrays/unions are stripped, per §4.4 USES_TYPE rule.
type TypeRef struct {
	Name    string
	Context TypeRefContext
}

// TypeRefContext mirrors graph.TypeContext.
type TypeRefContext string

const (
	TypeRefParameter TypeRefContext = "parameter"
	TypeRefReturn    TypeRefContext = "return"
	TypeRefVariable  TypeRefContext = "variable"
	TypeRefProperty  TypeRefContext = "property"
)

// Symbol is a handle to a declaration the host AST can resolve an
// identifier to, possibly across a re-export/alias chain per §4.1.
type Symbol struct {
	// DefiningFile is the path (relative to that file's own package
	// root) of the file that actually declares the symbol, after
	// following any alias chain.
	DefiningFile string
	// DefiningName is the symbol's name at its defining declaration
	// (e.g. the class/function name behind a `default as X` re-export).
	DefiningName string
	// InferredKind is the extractor's best guess at the declaration's
	// NodeKind, per the kind-inference rules in §4.3 step 3.
	InferredKind string
	// CrossPackage is non-empty when resolution required re-entering a
	// different package's project context via a ProjectRegistry
	// (§4.3 step 5 / §4.8); it names that package.
	CrossPackage string
}

// SourceFile is a parsed source file as seen by the extractor layer.
// All capabilities are read-only and safe to call concurrently across
// distinct SourceFile values.
type SourceFile interface {
	// Path is the file path relative to the project root, forward-slash
	// normalized.
	Path() string
	Extension() string
	// Source returns the file's raw bytes, used by the extractor layer to
	// compute each node's content hash and snippet (§3).
	Source() []byte
	Imports() []Import
	ReExports() []ReExport
	Functions() []FunctionDecl
	Classes() []ClassDecl
	Interfaces() []InterfaceDecl
	TypeAliases() []TypeAliasDecl
	Variables() []VariableDecl
	// TypeRefs surfaces the USES_TYPE inputs (parameter, return,
	// variable and property type names) per declaration, keyed by the
	// declaring symbol's local name (or "Owner.member" for members).
	TypeRefs() map[string][]TypeRef
	// ResolveSymbol follows alias/re-export chains for a locally bound
	// name, per §4.1's followAliasChain capability. ok is false
	// when the name cannot be resolved within this project context.
	ResolveSymbol(localName string) (Symbol, bool)
}

// Package groups the source files under one compile-configuration root
// (§6's "tsconfig-equivalent").
type Package struct {
	Name          string
	TsconfigPath  string
	Files         []SourceFile
}

// AstProject enumerates source files under configured package roots and
// yields their SourceFile handles, per §4.1. Declaration-only
// artifacts (e.g. ".d.ts") and vendor directories are already excluded
// by the time files reach the extractor layer.
type AstProject interface {
	Packages() []Package
}

// ProjectRegistry resolves a package name to the AstProject context that
// owns it, for cross-package alias resolution (§4.3 step 5, §4.8).
// It is read-only after construction (§9 "Global state to avoid").
type ProjectRegistry interface {
	Resolve(packageName string) (AstProject, bool)
}
