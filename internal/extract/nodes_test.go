package extract

import (
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

func TestNodesOrdersFileFirst(t *testing.T) {
	sf := &fakeSourceFile{
		path:      "src/svc.ts",
		functions: []astkit.FunctionDecl{{Name: "helper", Exported: true}},
		classes: []astkit.ClassDecl{{
			Name:     "UserService",
			Exported: true,
			Methods:  []astkit.MethodDecl{{Name: "addUser", Visibility: astkit.VisibilityPublic}},
			Properties: []astkit.PropertyDecl{
				{Name: "repo", Visibility: astkit.VisibilityPrivate, TypeText: "Repo"},
			},
		}},
	}
	ctx := FileContext{FilePath: "src/svc.ts", Module: "app", Package: "app"}

	nodes := Nodes(sf, ctx)
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}
	if nodes[0].Kind != graph.KindFile {
		t.Fatalf("expected File node first, got %s", nodes[0].Kind)
	}

	var method, prop *graph.Node
	for _, n := range nodes {
		switch n.ID {
		case graph.MemberID("src/svc.ts", graph.KindMethod, "UserService", "addUser"):
			method = n
		case graph.MemberID("src/svc.ts", graph.KindProperty, "UserService", "repo"):
			prop = n
		}
	}
	if method == nil || !method.Exported {
		t.Fatalf("expected public method to be exported, got %+v", method)
	}
	if prop == nil || prop.Exported {
		t.Fatalf("expected private property to not be exported, got %+v", prop)
	}
	if prop.Props[graph.PropTypeText] != "Repo" {
		t.Fatalf("expected property type text propagated, got %+v", prop.Props)
	}
}

func TestFileNodeCapturesExtension(t *testing.T) {
	ctx := FileContext{FilePath: "src/a.tsx", Module: "app", Package: "app"}
	n := fileNode(ctx)
	if n.Props[graph.PropExtension] != "tsx" {
		t.Fatalf("expected tsx extension, got %+v", n.Props)
	}
	if n.ID != "src/a.tsx" {
		t.Fatalf("expected bare path id, got %q", n.ID)
	}
}
