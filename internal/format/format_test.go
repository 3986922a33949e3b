package format

import (
	"strings"
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

func TestContextLinesTable(t *testing.T) {
	cases := []struct {
		n        int
		wantCtx  int
		wantOK   bool
	}{
		{0, 0, false},
		{1, 10, true},
		{5, 10, true},
		{6, 9, true},  // floor((25-6)/2) = 9
		{25, 0, true}, // floor((25-25)/2) = 0
		{26, 0, true},
		{35, 0, true},
		{36, 0, false},
		{100, 0, false},
	}
	for _, c := range cases {
		ctx, ok := ContextLines(c.n)
		if ok != c.wantOK || (ok && ctx != c.wantCtx) {
			t.Errorf("ContextLines(%d) = (%d, %v), want (%d, %v)", c.n, ctx, ok, c.wantCtx, c.wantOK)
		}
	}
}

func TestGraphTextMessageOnly(t *testing.T) {
	out := GraphText(&query.Result{Message: "no symbol found"})
	if out != "no symbol found\n" {
		t.Fatalf("expected message passthrough, got %q", out)
	}
}

func TestGraphTextRendersGraphAndNodesSections(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Function:fnA", Kind: graph.KindFunction, Name: "fnA", FilePath: "src/a.ts"}
	b := &graph.Node{ID: "src/b.ts:Function:fnB", Kind: graph.KindFunction, Name: "fnB", FilePath: "src/b.ts"}
	r := &query.Result{
		Nodes:    []*graph.Node{a, b},
		Edges:    []graph.Edge{graph.NewCallsEdge(a.ID, b.ID, nil)},
		AliasMap: map[string]string{a.ID: "fnA", b.ID: "fnB"},
		Metadata: map[string]query.NodeMeta{a.ID: {Depth: 0}, b.ID: {Depth: 1}},
	}
	out := GraphText(r)
	if !strings.Contains(out, "## Graph") || !strings.Contains(out, "## Nodes") {
		t.Fatalf("expected both sections, got:\n%s", out)
	}
	if !strings.Contains(out, "src/a.ts:Function:fnA --CALLS--> src/b.ts:Function:fnB") {
		t.Fatalf("expected rendered call edge, got:\n%s", out)
	}
}

func TestGraphTextTruncationMarker(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Function:fnA", Kind: graph.KindFunction, Name: "fnA", FilePath: "src/a.ts"}
	r := &query.Result{
		Nodes:     []*graph.Node{a},
		AliasMap:  map[string]string{a.ID: "fnA"},
		Metadata:  map[string]query.NodeMeta{a.ID: {}},
		MaxNodes:  1,
		Truncated: true,
	}
	out := GraphText(r)
	if !strings.Contains(out, "## Truncated") {
		t.Fatalf("expected truncation marker, got:\n%s", out)
	}
}

func TestMermaidSingletonFileRenderedBare(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Function:fnA", Kind: graph.KindFunction, Name: "fnA", FilePath: "src/a.ts", Package: "app"}
	r := &query.Result{Nodes: []*graph.Node{a}, AliasMap: map[string]string{a.ID: "fnA"}}
	out := Mermaid(r)
	if strings.Contains(out, "subgraph") {
		t.Fatalf("expected no subgraph for a singleton file, got:\n%s", out)
	}
	if !strings.Contains(out, "fnA()") {
		t.Fatalf("expected Function display name with trailing (), got:\n%s", out)
	}
}

func TestMermaidGroupsMultipleSymbolsPerFile(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Function:fnA", Kind: graph.KindFunction, Name: "fnA", FilePath: "src/a.ts", Package: "app"}
	b := &graph.Node{ID: "src/a.ts:Function:fnB", Kind: graph.KindFunction, Name: "fnB", FilePath: "src/a.ts", Package: "app"}
	r := &query.Result{
		Nodes:    []*graph.Node{a, b},
		Edges:    []graph.Edge{graph.NewCallsEdge(a.ID, b.ID, nil)},
		AliasMap: map[string]string{a.ID: "fnA", b.ID: "fnB"},
	}
	out := Mermaid(r)
	if !strings.Contains(out, "subgraph") {
		t.Fatalf("expected a subgraph once a file holds >=2 symbols, got:\n%s", out)
	}
}

func TestMermaidEscapesAngleBrackets(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Variable:x", Kind: graph.KindVariable, Name: "List<T>", FilePath: "src/a.ts"}
	r := &query.Result{Nodes: []*graph.Node{a}, AliasMap: map[string]string{a.ID: "List<T>"}}
	out := Mermaid(r)
	if strings.Contains(out, "List<T>") {
		t.Fatalf("expected angle brackets escaped, got:\n%s", out)
	}
	if !strings.Contains(out, "List&lt;T&gt;") {
		t.Fatalf("expected html-escaped label, got:\n%s", out)
	}
}

func TestMermaidSeparatesConnectedComponents(t *testing.T) {
	a := &graph.Node{ID: "src/a.ts:Function:fnA", Kind: graph.KindFunction, Name: "fnA", FilePath: "src/a.ts"}
	b := &graph.Node{ID: "src/b.ts:Function:fnB", Kind: graph.KindFunction, Name: "fnB", FilePath: "src/b.ts"}
	r := &query.Result{
		Nodes:    []*graph.Node{a, b},
		AliasMap: map[string]string{a.ID: "fnA", b.ID: "fnB"},
	}
	out := Mermaid(r)
	if !strings.Contains(out, "---") {
		t.Fatalf("expected two separate diagrams joined by ---, got:\n%s", out)
	}
}
