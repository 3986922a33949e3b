package store

import (
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

func TestOpenMemory(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	s.Close()
}

func fileNode(path string) *graph.Node {
	return &graph.Node{ID: path, Kind: graph.KindFile, Name: path, FilePath: path, Props: map[string]any{graph.PropExtension: ".ts"}}
}

func funcNode(path, name string) *graph.Node {
	return &graph.Node{ID: graph.ID(path, graph.KindFunction, name), Kind: graph.KindFunction, Name: name, FilePath: path}
}

func TestNodeCRUD(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	f := fileNode("src/a.ts")
	n := funcNode("src/a.ts", "foo")
	if err := s.UpsertNodes([]*graph.Node{f, n}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}

	got, err := s.GetNode(n.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got == nil || got.Name != "foo" {
		t.Fatalf("expected node foo, got %+v", got)
	}

	byFile, err := s.NodesByFile("src/a.ts")
	if err != nil {
		t.Fatalf("NodesByFile: %v", err)
	}
	if len(byFile) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(byFile))
	}

	byName, err := s.NodesByName("foo")
	if err != nil {
		t.Fatalf("NodesByName: %v", err)
	}
	if len(byName) != 1 {
		t.Fatalf("expected 1 node named foo, got %d", len(byName))
	}

	count, err := s.CountNodes()
	if err != nil {
		t.Fatalf("CountNodes: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 nodes, got %d", count)
	}
}

func TestRemoveFileNodesCascadesEdges(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	a := funcNode("src/a.ts", "caller")
	b := funcNode("src/b.ts", "callee")
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/a.ts"), fileNode("src/b.ts"), a, b}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	edge := graph.NewCallsEdge(a.ID, b.ID, []graph.CallSiteRange{{StartLine: 1, EndLine: 1}})
	if err := s.UpsertEdges([]graph.Edge{edge}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	if err := s.RemoveFileNodes("src/a.ts"); err != nil {
		t.Fatalf("RemoveFileNodes: %v", err)
	}

	remaining, err := s.ForwardEdges(a.ID)
	if err != nil {
		t.Fatalf("ForwardEdges: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected edge removed with its source node, got %d", len(remaining))
	}

	n, err := s.GetNode(a.ID)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if n != nil {
		t.Fatalf("expected node removed, got %+v", n)
	}
}

func TestExistingIDsDropsDangling(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	a := funcNode("src/a.ts", "foo")
	if err := s.UpsertNodes([]*graph.Node{a}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}

	existing, err := s.ExistingIDs([]string{a.ID, "src/a.ts:Function:ghost"})
	if err != nil {
		t.Fatalf("ExistingIDs: %v", err)
	}
	if !existing[a.ID] {
		t.Fatalf("expected %s to exist", a.ID)
	}
	if existing["src/a.ts:Function:ghost"] {
		t.Fatal("expected dangling id absent")
	}
}

func TestForwardReachableFiltersDanglingTargets(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	a := funcNode("src/a.ts", "caller")
	b := funcNode("src/a.ts", "callee")
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/a.ts"), a, b}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}

	ghostEdge := graph.NewCallsEdge(a.ID, "src/a.ts:Function:ghost", nil)
	realEdge := graph.NewCallsEdge(a.ID, b.ID, []graph.CallSiteRange{{StartLine: 2, EndLine: 2}})
	if err := s.UpsertEdges([]graph.Edge{ghostEdge, realEdge}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	reachable, err := s.ForwardReachable(a.ID, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("ForwardReachable: %v", err)
	}
	if len(reachable) != 1 || reachable[0].Node.ID != b.ID {
		t.Fatalf("expected only callee reachable, got %+v", reachable)
	}
}

func TestPathFindsShortestRoute(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	a := funcNode("src/a.ts", "a")
	b := funcNode("src/a.ts", "b")
	c := funcNode("src/a.ts", "c")
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/a.ts"), a, b, c}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	if err := s.UpsertEdges([]graph.Edge{
		graph.NewCallsEdge(a.ID, b.ID, nil),
		graph.NewCallsEdge(b.ID, c.ID, nil),
	}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	result, err := s.Path(a.ID, c.ID, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if !result.Found {
		t.Fatal("expected path to be found")
	}
	if len(result.Nodes) != 3 || len(result.Edges) != 2 {
		t.Fatalf("expected 3 nodes/2 edges, got %d/%d", len(result.Nodes), len(result.Edges))
	}
}

func TestImpactTracksMinDepth(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	a := funcNode("src/a.ts", "a")
	b := funcNode("src/a.ts", "b")
	target := funcNode("src/a.ts", "target")
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/a.ts"), a, b, target}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	if err := s.UpsertEdges([]graph.Edge{
		graph.NewCallsEdge(a.ID, target.ID, nil),
		graph.NewCallsEdge(b.ID, a.ID, nil),
	}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	impact, err := s.Impact(target.ID, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if len(impact) != 2 {
		t.Fatalf("expected 2 impacted nodes, got %d", len(impact))
	}
	if impact[0].Node.ID != a.ID || impact[0].Depth != 1 {
		t.Fatalf("expected a at depth 1 first, got %+v", impact[0])
	}
	if impact[1].Node.ID != b.ID || impact[1].Depth != 2 {
		t.Fatalf("expected b at depth 2 second, got %+v", impact[1])
	}
}

func TestRouterOpensOnePerPackage(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRouter(dir)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer r.CloseAll()

	s, err := r.ForPackage("app")
	if err != nil {
		t.Fatalf("ForPackage: %v", err)
	}
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/a.ts")}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}

	pkgs, err := r.ListPackages()
	if err != nil {
		t.Fatalf("ListPackages: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "app" {
		t.Fatalf("expected [app], got %+v", pkgs)
	}
}

// TestRemoveFileNodesPreservesIncomingEdgesFromOtherFiles guards the §4.6
// dangling-edge contract: re-indexing one file must not drop CALLS/other
// edges authored by a different, unchanged file that merely target a
// node in the re-indexed file. Otherwise an unchanged file's edges are
// lost forever once its content hash causes incremental sync to skip it.
func TestRemoveFileNodesPreservesIncomingEdgesFromOtherFiles(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	caller := funcNode("src/step01.ts", "entry") // stands in for an untouched caller file
	callee := funcNode("src/step02.ts", "step02")
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/step01.ts"), fileNode("src/step02.ts"), caller, callee}); err != nil {
		t.Fatalf("UpsertNodes: %v", err)
	}
	edge := graph.NewCallsEdge(caller.ID, callee.ID, []graph.CallSiteRange{{StartLine: 1, EndLine: 1}})
	if err := s.UpsertEdges([]graph.Edge{edge}); err != nil {
		t.Fatalf("UpsertEdges: %v", err)
	}

	// Simulate step02.ts being re-indexed: its own nodes are removed and
	// rewritten, but step01.ts is untouched (skipped by the manifest hash
	// check) and never re-supplies the entry->step02 edge.
	if err := s.RemoveFileNodes("src/step02.ts"); err != nil {
		t.Fatalf("RemoveFileNodes: %v", err)
	}
	if err := s.UpsertNodes([]*graph.Node{fileNode("src/step02.ts"), callee}); err != nil {
		t.Fatalf("re-add step02 nodes: %v", err)
	}

	reachable, err := s.ForwardReachable(caller.ID, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("ForwardReachable: %v", err)
	}
	if len(reachable) != 1 || reachable[0].Node.ID != callee.ID {
		t.Fatalf("expected the untouched file's CALLS edge to survive step02's re-index, got %+v", reachable)
	}
}
