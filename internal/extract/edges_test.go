package extract

import (
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

func TestImportEdgesAggregatesSymbolsPerTarget(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/consumer.ts",
		imports: []astkit.Import{
			{Specifier: "./util", Names: []astkit.ImportedName{{Name: "formatDate"}}},
			{Specifier: "./util", TypeOnly: true, Names: []astkit.ImportedName{{Name: "Config"}}},
		},
	}
	ctx := FileContext{FilePath: "src/consumer.ts"}

	edges := ImportEdges(sf, ctx)
	if len(edges) != 1 {
		t.Fatalf("expected one aggregated edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Kind != graph.EdgeImports {
		t.Fatalf("expected IMPORTS edge, got %s", e.Kind)
	}
	if e.Attrs[graph.AttrTypeOnly] != false {
		t.Fatalf("expected mixed import to not be type-only, got %+v", e.Attrs)
	}
	symbols := e.Attrs[graph.AttrImportedSymbols].([]string)
	if len(symbols) != 2 {
		t.Fatalf("expected both symbol names aggregated, got %v", symbols)
	}
}

func TestCallsEdgesAggregatesCallSites(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/svc.ts",
		functions: []astkit.FunctionDecl{
			{Name: "caller", BodyCalls: []astkit.CallExpr{
				{Callee: "helper", Span: astkit.Span{StartLine: 2, EndLine: 2}},
				{Callee: "helper", Span: astkit.Span{StartLine: 5, EndLine: 5}},
			}},
			{Name: "helper"},
		},
	}
	ctx := FileContext{FilePath: "src/svc.ts"}
	local := buildLocalSymbols(sf, ctx)

	edges := CallsEdges(sf, ctx, local, ImportMap{}, map[string]string{})
	if len(edges) != 1 {
		t.Fatalf("expected one CALLS edge, got %d", len(edges))
	}
	if edges[0].Attrs[graph.AttrCallCount] != 2 {
		t.Fatalf("expected call count 2, got %+v", edges[0].Attrs)
	}
}

func TestCallsEdgesSkipsUnresolvedCallee(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/svc.ts",
		functions: []astkit.FunctionDecl{
			{Name: "caller", BodyCalls: []astkit.CallExpr{{Callee: "externalLibFn"}}},
		},
	}
	ctx := FileContext{FilePath: "src/svc.ts"}
	local := buildLocalSymbols(sf, ctx)

	edges := CallsEdges(sf, ctx, local, ImportMap{}, map[string]string{})
	if len(edges) != 0 {
		t.Fatalf("expected no edges for unresolved callee, got %d", len(edges))
	}
}

func TestCallsEdgesResolvesNamespaceMemberWithinSamePackage(t *testing.T) {
	helperFile := &fakeSourceFile{
		path:      "src/helpers.ts",
		functions: []astkit.FunctionDecl{{Name: "format"}},
	}
	sf := &fakeSourceFile{
		path: "src/svc.ts",
		imports: []astkit.Import{
			{Specifier: "./helpers", Names: []astkit.ImportedName{{Alias: "helpers", Form: astkit.ImportNamespace}}},
		},
		functions: []astkit.FunctionDecl{
			{Name: "caller", BodyCalls: []astkit.CallExpr{
				{Callee: "helpers", Member: "format", Span: astkit.Span{StartLine: 3, EndLine: 3}},
			}},
		},
	}
	reg := &fakeRegistry{byName: map[string]astkit.AstProject{
		"app": &fakeProject{pkg: astkit.Package{Name: "app", Files: []astkit.SourceFile{sf, helperFile}}},
	}}
	ctx := FileContext{FilePath: "src/svc.ts", Package: "app", Registry: reg}
	local := buildLocalSymbols(sf, ctx)
	namespaces := buildNamespaces(sf)

	edges := CallsEdges(sf, ctx, local, ImportMap{}, namespaces)
	if len(edges) != 1 {
		t.Fatalf("expected one resolved CALLS edge, got %d", len(edges))
	}
	want := graph.ID("src/helpers.ts", graph.KindFunction, "format")
	if edges[0].Target != want {
		t.Fatalf("expected target %s, got %s", want, edges[0].Target)
	}
}

func TestCallsEdgesSkipsCrossPackageNamespaceMember(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/svc.ts",
		imports: []astkit.Import{
			{Specifier: "shared-utils", Names: []astkit.ImportedName{{Alias: "utils", Form: astkit.ImportNamespace}}},
		},
		functions: []astkit.FunctionDecl{
			{Name: "caller", BodyCalls: []astkit.CallExpr{
				{Callee: "utils", Member: "format", Span: astkit.Span{StartLine: 3, EndLine: 3}},
			}},
		},
	}
	ctx := FileContext{FilePath: "src/svc.ts", Package: "app", Registry: &fakeRegistry{byName: map[string]astkit.AstProject{}}}
	local := buildLocalSymbols(sf, ctx)
	namespaces := buildNamespaces(sf)

	edges := CallsEdges(sf, ctx, local, ImportMap{}, namespaces)
	if len(edges) != 0 {
		t.Fatalf("expected namespace member on an unresolved package to be skipped, got %d edges", len(edges))
	}
}

func TestExtendsImplementsEdges(t *testing.T) {
	sf := &fakeSourceFile{
		path: "src/svc.ts",
		classes: []astkit.ClassDecl{
			{Name: "Base"},
			{Name: "Derived", Extends: "Base", Implements: []string{"Marker"}},
		},
		interfaces: []astkit.InterfaceDecl{{Name: "Marker"}},
	}
	ctx := FileContext{FilePath: "src/svc.ts"}
	local := buildLocalSymbols(sf, ctx)

	edges := ExtendsImplementsEdges(sf, ctx, local, ImportMap{})
	if len(edges) != 2 {
		t.Fatalf("expected extends + implements edges, got %d", len(edges))
	}
}

func TestUsesTypeEdgesSkipsBuiltins(t *testing.T) {
	sf := &fakeSourceFile{
		path:      "src/svc.ts",
		functions: []astkit.FunctionDecl{{Name: "caller"}},
		classes:   []astkit.ClassDecl{{Name: "Repo"}},
		typeRefs: map[string][]astkit.TypeRef{
			"caller": {
				{Name: "String", Context: astkit.TypeRefParameter},
				{Name: "Repo", Context: astkit.TypeRefReturn},
			},
		},
	}
	ctx := FileContext{FilePath: "src/svc.ts"}
	local := buildLocalSymbols(sf, ctx)

	edges := UsesTypeEdges(sf, ctx, local, ImportMap{})
	if len(edges) != 1 {
		t.Fatalf("expected builtin type skipped, got %d edges", len(edges))
	}
	if edges[0].Target != graph.ID("src/svc.ts", graph.KindClass, "Repo") {
		t.Fatalf("unexpected target %q", edges[0].Target)
	}
}
