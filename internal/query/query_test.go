package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/search"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

func funcNode(path, name string) *graph.Node {
	return &graph.Node{ID: graph.ID(path, graph.KindFunction, name), Kind: graph.KindFunction, Name: name, FilePath: path}
}

func fileNode(path string) *graph.Node {
	return &graph.Node{ID: graph.FileID(path), Kind: graph.KindFile, Name: path, FilePath: path}
}

// newDeepChain builds the §8 "deep chain" scenario: step01..step10, each
// exporting stepK which calls step(K+1), with step01 exporting entry
// instead which calls step02.
func newDeepChain(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	var nodes []*graph.Node
	var edges []graph.Edge
	for i := 1; i <= 10; i++ {
		path := fmt.Sprintf("src/step%02d.ts", i)
		nodes = append(nodes, fileNode(path))
		if i == 1 {
			nodes = append(nodes, funcNode(path, "entry"))
		} else {
			nodes = append(nodes, funcNode(path, fmt.Sprintf("step%02d", i)))
		}
	}
	for i := 1; i <= 9; i++ {
		from := "src/step01.ts"
		var fromName string
		if i == 1 {
			fromName = "entry"
		} else {
			fromName = fmt.Sprintf("step%02d", i)
			from = fmt.Sprintf("src/step%02d.ts", i)
		}
		to := fmt.Sprintf("src/step%02d.ts", i+1)
		toName := fmt.Sprintf("step%02d", i+1)
		edges = append(edges, graph.NewCallsEdge(
			graph.ID(from, graph.KindFunction, fromName),
			graph.ID(to, graph.KindFunction, toName),
			[]graph.CallSiteRange{{StartLine: i, EndLine: i}},
		))
	}

	if err := s.UpsertNodes(nodes); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	if err := s.UpsertEdges(edges); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}
	return s
}

func TestDeepChainCalleesFullDepth(t *testing.T) {
	s := newDeepChain(t)
	defer s.Close()
	eng := New(s, nil)

	entry := graph.ID("src/step01.ts", graph.KindFunction, "entry")
	res, err := eng.SearchGraph(context.Background(), Constraints{From: &Endpoint{Symbol: entry}, MaxDepth: 10})
	if err != nil {
		t.Fatalf("SearchGraph: %v", err)
	}
	// entry itself + step02..step10 = 10 nodes.
	if len(res.Nodes) != 10 {
		t.Fatalf("expected 10 nodes (entry + step02..step10), got %d: %+v", len(res.Nodes), names(res.Nodes))
	}
	for i := 2; i <= 10; i++ {
		want := fmt.Sprintf("step%02d", i)
		if !containsName(res.Nodes, want) {
			t.Fatalf("expected %s among callees, got %v", want, names(res.Nodes))
		}
	}
}

func TestDeepChainCalleesBoundedDepth(t *testing.T) {
	s := newDeepChain(t)
	defer s.Close()
	eng := New(s, nil)

	entry := graph.ID("src/step01.ts", graph.KindFunction, "entry")
	res, err := eng.SearchGraph(context.Background(), Constraints{From: &Endpoint{Symbol: entry}, MaxDepth: 3})
	if err != nil {
		t.Fatalf("SearchGraph: %v", err)
	}
	// entry + step02, step03, step04 = 4 nodes.
	if len(res.Nodes) != 4 {
		t.Fatalf("expected 4 nodes at depth 3, got %d: %v", len(res.Nodes), names(res.Nodes))
	}
	for _, want := range []string{"step02", "step03", "step04"} {
		if !containsName(res.Nodes, want) {
			t.Fatalf("expected %s within depth 3, got %v", want, names(res.Nodes))
		}
	}
}

func TestDeepChainCallersFullDepth(t *testing.T) {
	s := newDeepChain(t)
	defer s.Close()
	eng := New(s, nil)

	step10 := graph.ID("src/step10.ts", graph.KindFunction, "step10")
	res, err := eng.SearchGraph(context.Background(), Constraints{To: &Endpoint{Symbol: step10}, MaxDepth: 10})
	if err != nil {
		t.Fatalf("SearchGraph: %v", err)
	}
	// step10 + entry, step02..step09 = 10 nodes.
	if len(res.Nodes) != 10 {
		t.Fatalf("expected 10 nodes, got %d: %v", len(res.Nodes), names(res.Nodes))
	}
	if !containsName(res.Nodes, "entry") {
		t.Fatalf("expected entry among callers, got %v", names(res.Nodes))
	}
}

func TestDeepChainPathAlternatesCalls(t *testing.T) {
	s := newDeepChain(t)
	defer s.Close()
	eng := New(s, nil)

	entry := graph.ID("src/step01.ts", graph.KindFunction, "entry")
	step10 := graph.ID("src/step10.ts", graph.KindFunction, "step10")
	res, err := eng.SearchGraph(context.Background(), Constraints{
		From: &Endpoint{Symbol: entry}, To: &Endpoint{Symbol: step10}, MaxDepth: 10,
	})
	if err != nil {
		t.Fatalf("SearchGraph: %v", err)
	}
	if len(res.Nodes) != 10 {
		t.Fatalf("expected a 10-node path, got %d: %v", len(res.Nodes), names(res.Nodes))
	}
	if len(res.Edges) != 9 {
		t.Fatalf("expected 9 edges, got %d", len(res.Edges))
	}
	for _, e := range res.Edges {
		if e.Kind != graph.EdgeCalls {
			t.Fatalf("expected all edges to be CALLS, got %s", e.Kind)
		}
	}
}

func TestSearchGraphRequiresAnEndpoint(t *testing.T) {
	s, _ := store.OpenMemory()
	defer s.Close()
	eng := New(s, nil)

	res, err := eng.SearchGraph(context.Background(), Constraints{})
	if err != nil {
		t.Fatalf("SearchGraph: %v", err)
	}
	if res.Message == "" {
		t.Fatal("expected a message result when no constraints are given")
	}
}

func TestTopicFilterNarrowsTraversal(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	cmd := funcNode("src/command.ts", "SetDefaultProviderCommand")
	audit := funcNode("src/audit.ts", "AuditService")
	provider := funcNode("src/provider.ts", "ProviderService")
	if err := s.UpsertNodes([]*graph.Node{
		fileNode("src/command.ts"), fileNode("src/audit.ts"), fileNode("src/provider.ts"),
		cmd, audit, provider,
	}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	if err := s.UpsertEdges([]graph.Edge{
		graph.NewCallsEdge(cmd.ID, audit.ID, nil),
		graph.NewCallsEdge(cmd.ID, provider.ID, nil),
	}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	idx := search.NewIndex(nil, nil, 0.5)
	idx.Add(context.Background(), search.Document{ID: audit.ID, Symbol: audit.Name, File: audit.FilePath, Kind: string(audit.Kind), Content: "audit logging service"}, "h1")
	idx.Add(context.Background(), search.Document{ID: provider.ID, Symbol: provider.Name, File: provider.FilePath, Kind: string(provider.Kind), Content: "provider configuration"}, "h2")
	idx.Add(context.Background(), search.Document{ID: cmd.ID, Symbol: cmd.Name, File: cmd.FilePath, Kind: string(cmd.Kind), Content: "sets the default provider and audits the change"}, "h3")

	eng := New(s, idx)

	full, err := eng.SearchGraph(context.Background(), Constraints{From: &Endpoint{Symbol: cmd.ID}, MaxDepth: 5})
	if err != nil {
		t.Fatalf("SearchGraph (full): %v", err)
	}
	if len(full.Nodes) != 3 {
		t.Fatalf("expected 3 nodes without topic filter, got %d: %v", len(full.Nodes), names(full.Nodes))
	}

	filtered, err := eng.SearchGraph(context.Background(), Constraints{From: &Endpoint{Symbol: cmd.ID}, Topic: "audit", MaxDepth: 5})
	if err != nil {
		t.Fatalf("SearchGraph (topic): %v", err)
	}
	if !containsName(filtered.Nodes, "AuditService") {
		t.Fatalf("expected AuditService to survive the audit topic filter, got %v", names(filtered.Nodes))
	}
	if containsName(filtered.Nodes, "ProviderService") {
		t.Fatalf("expected ProviderService excluded by the audit topic filter, got %v", names(filtered.Nodes))
	}
}

func names(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func containsName(nodes []*graph.Node, name string) bool {
	for _, n := range nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}
