package extract

import (
	"path"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// builtinTypes is the skip-list of ambient/global type names that never
// produce a USES_TYPE edge, per §4.4's fixed set.
var builtinTypes = map[string]bool{
	"String": true, "Number": true, "Boolean": true, "Array": true,
	"Object": true, "Date": true, "RegExp": true, "Promise": true,
	"Map": true, "Set": true, "WeakMap": true, "WeakSet": true,
	"Error": true, "Function": true, "Symbol": true, "BigInt": true,
}

// Edges builds every edge for one file, per §4.4: CONTAINS first,
// then IMPORTS, EXTENDS/IMPLEMENTS, CALLS, REFERENCES and USES_TYPE.
func Edges(sf astkit.SourceFile, ctx FileContext) []graph.Edge {
	local := buildLocalSymbols(sf, ctx)
	im := BuildImportMap(sf, false, ctx.Registry)
	imWithTypes := BuildImportMap(sf, true, ctx.Registry)
	namespaces := buildNamespaces(sf)

	var out []graph.Edge
	out = append(out, ContainsEdges(sf, ctx)...)
	out = append(out, ImportEdges(sf, ctx)...)
	out = append(out, ExtendsImplementsEdges(sf, ctx, local, im)...)
	out = append(out, CallsEdges(sf, ctx, local, im, namespaces)...)
	out = append(out, ReferencesEdges(sf, ctx, local, im)...)
	out = append(out, UsesTypeEdges(sf, ctx, local, imWithTypes)...)
	return out
}

// buildNamespaces maps the local binding of every `import * as ns`
// declaration to its module specifier, so CALLS extraction can recognize
// namespace-qualified calls and resolve them via resolveNamespaceMember.
func buildNamespaces(sf astkit.SourceFile) map[string]string {
	out := map[string]string{}
	for _, imp := range sf.Imports() {
		for _, n := range imp.Names {
			if n.Form == astkit.ImportNamespace {
				out[n.Alias] = imp.Specifier
			}
		}
	}
	return out
}

// ContainsEdges emits File->symbol edges for every top-level declaration
// and owner->member edges for every class/interface's methods and
// properties, per §4.4.
func ContainsEdges(sf astkit.SourceFile, ctx FileContext) []graph.Edge {
	var out []graph.Edge

	for _, fn := range sf.Functions() {
		out = append(out, graph.NewContainsEdge(ctx.FilePath, graph.ID(ctx.FilePath, graph.KindFunction, fn.Name)))
	}
	for _, v := range sf.Variables() {
		out = append(out, graph.NewContainsEdge(ctx.FilePath, graph.ID(ctx.FilePath, graph.KindVariable, v.Name)))
	}
	for _, ta := range sf.TypeAliases() {
		out = append(out, graph.NewContainsEdge(ctx.FilePath, graph.ID(ctx.FilePath, graph.KindTypeAlias, ta.Name)))
	}
	for _, cls := range sf.Classes() {
		classID := graph.ID(ctx.FilePath, graph.KindClass, cls.Name)
		out = append(out, graph.NewContainsEdge(ctx.FilePath, classID))
		for _, m := range cls.Methods {
			out = append(out, graph.Edge{Source: classID, Target: graph.MemberID(ctx.FilePath, graph.KindMethod, cls.Name, m.Name), Kind: graph.EdgeContains})
		}
		for _, p := range cls.Properties {
			out = append(out, graph.Edge{Source: classID, Target: graph.MemberID(ctx.FilePath, graph.KindProperty, cls.Name, p.Name), Kind: graph.EdgeContains})
		}
	}
	for _, iface := range sf.Interfaces() {
		ifaceID := graph.ID(ctx.FilePath, graph.KindInterface, iface.Name)
		out = append(out, graph.NewContainsEdge(ctx.FilePath, ifaceID))
		for _, m := range iface.Methods {
			out = append(out, graph.Edge{Source: ifaceID, Target: graph.MemberID(ctx.FilePath, graph.KindMethod, iface.Name, m.Name), Kind: graph.EdgeContains})
		}
		for _, p := range iface.Properties {
			out = append(out, graph.Edge{Source: ifaceID, Target: graph.MemberID(ctx.FilePath, graph.KindProperty, iface.Name, p.Name), Kind: graph.EdgeContains})
		}
	}

	return out
}

// ImportEdges emits one File->File IMPORTS edge per distinct target file,
// aggregating every imported symbol name and the type-only flag (an
// import is type-only only when every name imported from that specifier
// is type-only), per §4.4.
func ImportEdges(sf astkit.SourceFile, ctx FileContext) []graph.Edge {
	type agg struct {
		symbols  []string
		typeOnly bool
		seen     map[string]bool
	}
	byTarget := map[string]*agg{}
	var order []string

	for _, imp := range sf.Imports() {
		if !isInternalSpecifier(imp.Specifier) {
			continue
		}
		target := resolveImportTargetFile(sf, imp.Specifier)
		a, ok := byTarget[target]
		if !ok {
			a = &agg{typeOnly: true, seen: map[string]bool{}}
			byTarget[target] = a
			order = append(order, target)
		}
		if !imp.TypeOnly {
			a.typeOnly = false
		}
		for _, n := range imp.Names {
			name := n.Name
			if n.Form == astkit.ImportNamespace {
				name = "*"
			} else if n.Form == astkit.ImportDefault {
				name = "default"
			}
			if !a.seen[name] {
				a.seen[name] = true
				a.symbols = append(a.symbols, name)
			}
		}
	}

	out := make([]graph.Edge, 0, len(order))
	for _, target := range order {
		a := byTarget[target]
		out = append(out, graph.NewImportsEdge(ctx.FilePath, target, a.typeOnly, a.symbols))
	}
	return out
}

func resolveImportTargetFile(sf astkit.SourceFile, specifier string) string {
	return resolveRelativeFile(sf.Path(), specifier)
}

// ExtendsImplementsEdges emits EXTENDS and IMPLEMENTS edges for classes
// and interfaces, resolving base-type names against the file's own
// declarations first and its ImportMap second, per §4.4. A base
// name that resolves to neither source is skipped (it names an external
// or ambient type, e.g. `class Foo extends Error`).
func ExtendsImplementsEdges(sf astkit.SourceFile, ctx FileContext, local localSymbolTable, im ImportMap) []graph.Edge {
	var out []graph.Edge

	for _, cls := range sf.Classes() {
		sourceID := graph.ID(ctx.FilePath, graph.KindClass, cls.Name)
		if cls.Extends != "" {
			if target, ok := resolve(cls.Extends, local, im); ok {
				out = append(out, graph.NewExtendsEdge(sourceID, target))
			}
		}
		for _, impl := range cls.Implements {
			if target, ok := resolve(impl, local, im); ok {
				out = append(out, graph.NewImplementsEdge(sourceID, target))
			}
		}
	}
	for _, iface := range sf.Interfaces() {
		sourceID := graph.ID(ctx.FilePath, graph.KindInterface, iface.Name)
		for _, ext := range iface.Extends {
			if target, ok := resolve(ext, local, im); ok {
				out = append(out, graph.NewExtendsEdge(sourceID, target))
			}
		}
	}

	return out
}

// callable bundles the owning node id with the body the extractors walk,
// letting CallsEdges/ReferencesEdges share one loop over every
// function/method in the file.
type callable struct {
	id    string
	calls []astkit.CallExpr
	refs  []astkit.ValueUse
}

func callables(sf astkit.SourceFile, ctx FileContext) []callable {
	var out []callable
	for _, fn := range sf.Functions() {
		out = append(out, callable{id: graph.ID(ctx.FilePath, graph.KindFunction, fn.Name), calls: fn.BodyCalls, refs: fn.BodyRefs})
	}
	for _, cls := range sf.Classes() {
		for _, m := range cls.Methods {
			out = append(out, callable{id: graph.MemberID(ctx.FilePath, graph.KindMethod, cls.Name, m.Name), calls: m.BodyCalls, refs: m.BodyRefs})
		}
	}
	for _, iface := range sf.Interfaces() {
		for _, m := range iface.Methods {
			out = append(out, callable{id: graph.MemberID(ctx.FilePath, graph.KindMethod, iface.Name, m.Name), calls: m.BodyCalls, refs: m.BodyRefs})
		}
	}
	return out
}

// CallsEdges emits one CALLS edge per (caller, callee) pair, aggregating
// every call site into that edge's call_sites attribute, per §4.4.
// A namespace-qualified call (`ns.member()`) resolves via the namespace
// import's local binding combined with the member name.
func CallsEdges(sf astkit.SourceFile, ctx FileContext, local localSymbolTable, im ImportMap, namespaces map[string]string) []graph.Edge {
	var out []graph.Edge

	for _, c := range callables(sf, ctx) {
		sites := map[string][]graph.CallSiteRange{}
		var order []string
		for _, call := range c.calls {
			target, ok := resolveCallTarget(sf, ctx, call, local, im, namespaces)
			if !ok {
				continue
			}
			if _, seen := sites[target]; !seen {
				order = append(order, target)
			}
			sites[target] = append(sites[target], graph.CallSiteRange{StartLine: call.Span.StartLine, EndLine: call.Span.EndLine})
		}
		for _, target := range order {
			out = append(out, graph.NewCallsEdge(c.id, target, sites[target]))
		}
	}

	return out
}

// resolveCallTarget resolves one call expression's callee to a target node
// id. A namespace-qualified call (`ns.member()`) is handled per the
// resolved Open Question in SPEC_FULL.md: best-effort resolution within
// the same package's AstProject, skipped (no edge emitted) otherwise —
// §4.3 step 8/§9 deliberately leaves cross-package namespace calls
// unexpanded by the ImportMap.
func resolveCallTarget(sf astkit.SourceFile, ctx FileContext, call astkit.CallExpr, local localSymbolTable, im ImportMap, namespaces map[string]string) (string, bool) {
	if call.Member != "" {
		if specifier, isNamespace := namespaces[call.Callee]; isNamespace {
			return resolveNamespaceMember(sf, ctx, specifier, call.Member)
		}
	}
	return resolve(call.Callee, local, im)
}

// resolveNamespaceMember looks up `member` as a top-level declaration of
// the file `specifier` (relative to sf) resolves to within ctx.Package's
// own AstProject. It never crosses into a different package's project
// context; that case is left unresolved per the Open Question decision.
func resolveNamespaceMember(sf astkit.SourceFile, ctx FileContext, specifier, member string) (string, bool) {
	if ctx.Registry == nil || !isInternalSpecifier(specifier) {
		return "", false
	}
	proj, ok := ctx.Registry.Resolve(ctx.Package)
	if !ok {
		return "", false
	}
	base := path.Clean(path.Join(path.Dir(sf.Path()), specifier))
	candidates := pathCandidates(base)
	for _, pkg := range proj.Packages() {
		for _, f := range pkg.Files {
			clean := path.Clean(f.Path())
			matched := false
			for _, c := range candidates {
				if clean == c {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			if kind, ok := declaredKindIn(f, member); ok {
				return graph.ID(f.Path(), graph.NodeKind(kind), member), true
			}
			if sym, ok := f.ResolveSymbol(member); ok {
				definingName := sym.DefiningName
				if definingName == "" {
					definingName = member
				}
				return graph.ID(sym.DefiningFile, kindFromInferred(sym.InferredKind), definingName), true
			}
			return "", false
		}
	}
	return "", false
}

// ReferencesEdges emits REFERENCES edges for named-value uses that are
// not themselves call expressions, per §4.4. Top-level variable
// initializers that directly alias another symbol also produce an
// "assignment" REFERENCES edge from the variable to that symbol.
func ReferencesEdges(sf astkit.SourceFile, ctx FileContext, local localSymbolTable, im ImportMap) []graph.Edge {
	var out []graph.Edge

	for _, c := range callables(sf, ctx) {
		for _, ref := range c.refs {
			target, ok := resolve(ref.Name, local, im)
			if !ok {
				continue
			}
			out = append(out, graph.NewReferencesEdge(c.id, target, toRefContext(ref.Context)))
		}
	}

	for _, v := range sf.Variables() {
		if v.InitializerUse == nil {
			continue
		}
		target, ok := resolve(v.InitializerUse.Name, local, im)
		if !ok {
			continue
		}
		sourceID := graph.ID(ctx.FilePath, graph.KindVariable, v.Name)
		out = append(out, graph.NewReferencesEdge(sourceID, target, graph.RefAssignment))
	}

	return out
}

func toRefContext(c astkit.UseContext) graph.ReferenceContext {
	switch c {
	case astkit.UseCallback:
		return graph.RefCallback
	case astkit.UseProperty:
		return graph.RefProperty
	case astkit.UseArray:
		return graph.RefArray
	case astkit.UseReturn:
		return graph.RefReturn
	case astkit.UseAssignment:
		return graph.RefAssignment
	default:
		return graph.RefAccess
	}
}

// UsesTypeEdges emits USES_TYPE edges from every declaration's recorded
// type references, resolving base type names against the file's own
// declarations first and the type-only-inclusive ImportMap second, per
// §4.4. Built-in/ambient type names never produce an edge.
func UsesTypeEdges(sf astkit.SourceFile, ctx FileContext, local localSymbolTable, imWithTypes ImportMap) []graph.Edge {
	var out []graph.Edge

	for ownerKey, refs := range sf.TypeRefs() {
		sourceID := typeRefSourceID(sf, ctx, ownerKey)
		if sourceID == "" {
			continue
		}
		for _, ref := range refs {
			if builtinTypes[ref.Name] {
				continue
			}
			target, ok := resolve(ref.Name, local, imWithTypes)
			if !ok {
				continue
			}
			out = append(out, graph.NewUsesTypeEdge(sourceID, target, toTypeContext(ref.Context)))
		}
	}

	return out
}

// typeRefSourceID maps a TypeRefs() key ("fnA" or "UserService.addUser")
// back to its node id, disambiguating member keys against the owning
// class/interface's actual method and property lists.
func typeRefSourceID(sf astkit.SourceFile, ctx FileContext, key string) string {
	owner := graph.OwnerOf(key)
	if owner == "" {
		if _, ok := func() (astkit.VariableDecl, bool) {
			for _, v := range sf.Variables() {
				if v.Name == key {
					return v, true
				}
			}
			return astkit.VariableDecl{}, false
		}(); ok {
			return graph.ID(ctx.FilePath, graph.KindVariable, key)
		}
		return graph.ID(ctx.FilePath, graph.KindFunction, key)
	}

	member := key[len(owner)+1:]
	for _, cls := range sf.Classes() {
		if cls.Name != owner {
			continue
		}
		for _, p := range cls.Properties {
			if p.Name == member {
				return graph.MemberID(ctx.FilePath, graph.KindProperty, owner, member)
			}
		}
		return graph.MemberID(ctx.FilePath, graph.KindMethod, owner, member)
	}
	for _, iface := range sf.Interfaces() {
		if iface.Name != owner {
			continue
		}
		for _, p := range iface.Properties {
			if p.Name == member {
				return graph.MemberID(ctx.FilePath, graph.KindProperty, owner, member)
			}
		}
		return graph.MemberID(ctx.FilePath, graph.KindMethod, owner, member)
	}
	return graph.MemberID(ctx.FilePath, graph.KindMethod, owner, member)
}

func toTypeContext(c astkit.TypeRefContext) graph.TypeContext {
	switch c {
	case astkit.TypeRefParameter:
		return graph.TypeCtxParameter
	case astkit.TypeRefReturn:
		return graph.TypeCtxReturn
	case astkit.TypeRefVariable:
		return graph.TypeCtxVariable
	default:
		return graph.TypeCtxProperty
	}
}
