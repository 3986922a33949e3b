package store

import (
	"container/list"
	"fmt"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// DefaultMaxDepth bounds recursive reachability walks absent caller
// override, per §4.6.
const DefaultMaxDepth = 100

// ReachableNode is one node discovered during a BFS traversal, tagged
// with the depth and (for Impact) the edge kind it was first reached by.
type ReachableNode struct {
	Node          *graph.Node
	Depth         int
	EntryEdgeKind graph.EdgeKind
}

// PathResult is the outcome of a shortest-path search. Found is false
// when no directed path exists within maxDepth.
type PathResult struct {
	Found bool
	Nodes []*graph.Node
	Edges []graph.Edge
}

// ForwardReachable walks CALLS edges (or, when kinds is non-empty, the
// given edge kinds) outward from startID up to maxDepth hops, returning
// every distinct node reached, dangling targets dropped.
func (s *Store) ForwardReachable(startID string, maxDepth int, kinds ...graph.EdgeKind) ([]ReachableNode, error) {
	if len(kinds) == 0 {
		kinds = []graph.EdgeKind{graph.EdgeCalls}
	}
	return s.bfs(startID, maxDepth, kinds, s.ForwardEdges, func(e graph.Edge) string { return e.Target })
}

// BackwardReachable is ForwardReachable reversed: it walks edges into
// startID, used for caller traversal.
func (s *Store) BackwardReachable(startID string, maxDepth int, kinds ...graph.EdgeKind) ([]ReachableNode, error) {
	if len(kinds) == 0 {
		kinds = []graph.EdgeKind{graph.EdgeCalls}
	}
	return s.bfs(startID, maxDepth, kinds, s.BackwardEdges, func(e graph.Edge) string { return e.Source })
}

// Impact walks every incoming edge of any kind (or a filtered subset)
// into targetID, tracking the minimum depth and the edge kind at which
// each node was first reached. Rows are returned sorted by depth, then
// file path, then name, per §4.6.
func (s *Store) Impact(targetID string, maxDepth int, kinds ...graph.EdgeKind) ([]ReachableNode, error) {
	visited := map[string]*ReachableNode{}
	frontier := []string{targetID}
	depth := 0

	for len(frontier) > 0 && depth < maxDepth {
		depth++
		var next []string
		for _, id := range frontier {
			edges, err := s.BackwardEdges(id, kinds...)
			if err != nil {
				return nil, fmt.Errorf("impact backward edges: %w", err)
			}
			for _, e := range edges {
				if _, seen := visited[e.Source]; seen {
					continue
				}
				next = append(next, e.Source)
				visited[e.Source] = &ReachableNode{Depth: depth, EntryEdgeKind: e.Kind}
			}
		}
		frontier = next
	}

	ids := make([]string, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	nodes, err := s.nodesByIDs(ids)
	if err != nil {
		return nil, err
	}

	out := make([]ReachableNode, 0, len(nodes))
	for _, n := range nodes {
		rn := visited[n.ID]
		rn.Node = n
		out = append(out, *rn)
	}
	sortReachable(out)
	return out, nil
}

// Path finds the shortest directed path from fromID to toID over the
// given edge kinds (all kinds if none given), bounded by maxDepth hops.
func (s *Store) Path(fromID, toID string, maxDepth int, kinds ...graph.EdgeKind) (*PathResult, error) {
	if fromID == toID {
		n, err := s.GetNode(fromID)
		if err != nil || n == nil {
			return &PathResult{Found: false}, err
		}
		return &PathResult{Found: true, Nodes: []*graph.Node{n}}, nil
	}

	visited := map[string]bool{fromID: true}
	queue := list.New()
	queue.PushBack(&pathStep{id: fromID})
	depth := 0

	for queue.Len() > 0 && depth < maxDepth {
		depth++
		levelSize := queue.Len()
		for i := 0; i < levelSize; i++ {
			front := queue.Remove(queue.Front()).(*pathStep)
			edges, err := s.ForwardEdges(front.id, kinds...)
			if err != nil {
				return nil, fmt.Errorf("path forward edges: %w", err)
			}
			for _, e := range edges {
				if visited[e.Target] {
					continue
				}
				edge := e
				cur := &pathStep{id: e.Target, via: &edge, prev: front}
				if e.Target == toID {
					return s.reconstructPath(cur)
				}
				visited[e.Target] = true
				queue.PushBack(cur)
			}
		}
	}
	return &PathResult{Found: false}, nil
}

// pathStep is one node in Path's BFS parent-pointer tree, walked back
// from the goal to reconstruct the full node/edge sequence.
type pathStep struct {
	id   string
	via  *graph.Edge
	prev *pathStep
}

func (s *Store) reconstructPath(last *pathStep) (*PathResult, error) {
	cur := last

	var ids []string
	var edges []graph.Edge
	for cur != nil {
		ids = append([]string{cur.id}, ids...)
		if cur.via != nil {
			edges = append([]graph.Edge{*cur.via}, edges...)
		}
		cur = cur.prev
	}

	nodes, err := s.nodesByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := map[string]*graph.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	ordered := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}
	if len(ordered) != len(ids) {
		// a node on the path no longer exists; the path is not usable.
		return &PathResult{Found: false}, nil
	}
	return &PathResult{Found: true, Nodes: ordered, Edges: edges}, nil
}

// bfs is the shared forward/backward traversal core: edgeFn fetches one
// node's outgoing (or incoming) edges already dangling-filtered by the
// nodes join in ForwardEdges/BackwardEdges, and neighborOf picks the
// far-end id off an edge.
func (s *Store) bfs(startID string, maxDepth int, kinds []graph.EdgeKind,
	edgeFn func(string, ...graph.EdgeKind) ([]graph.Edge, error),
	neighborOf func(graph.Edge) string) ([]ReachableNode, error) {

	visited := map[string]int{}
	frontier := []string{startID}
	depth := 0

	for len(frontier) > 0 && depth < maxDepth {
		depth++
		var next []string
		for _, id := range frontier {
			edges, err := edgeFn(id, kinds...)
			if err != nil {
				return nil, fmt.Errorf("bfs edges: %w", err)
			}
			for _, e := range edges {
				nb := neighborOf(e)
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = depth
				next = append(next, nb)
			}
		}
		frontier = next
	}

	ids := make([]string, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	nodes, err := s.nodesByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]ReachableNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ReachableNode{Node: n, Depth: visited[n.ID]})
	}
	sortReachable(out)
	return out, nil
}

func sortReachable(rs []ReachableNode) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0; j-- {
			a, b := rs[j-1], rs[j]
			if less := reachableLess(b, a); less {
				rs[j-1], rs[j] = rs[j], rs[j-1]
			} else {
				break
			}
		}
	}
}

func reachableLess(a, b ReachableNode) bool {
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	if a.Node.FilePath != b.Node.FilePath {
		return a.Node.FilePath < b.Node.FilePath
	}
	return a.Node.Name < b.Node.Name
}

// nodesByIDs fetches nodes for an id set in one batched query, used by
// every traversal to perform the dangling-node join §3 requires.
func (s *Store) nodesByIDs(ids []string) ([]*graph.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	existing, err := s.ExistingIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]*graph.Node, 0, len(existing))
	for _, id := range ids {
		if !existing[id] {
			continue
		}
		n, err := s.GetNode(id)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}
