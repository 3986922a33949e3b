// Package query implements the query engine of §4.9: one composable
// operation, SearchGraph, dispatched over a {from?, to?, topic?}
// constraint triple, plus the nine stable tool operations §6 names
// (forward-callees, backward-callers, forward-callers, impact, find-path,
// neighborhood, file-symbols, search-graph, search-symbols) built on top
// of it. It consults internal/store for reachability and internal/search
// for endpoint resolution from free text, exactly the two collaborators
// §2's data-flow diagram names for the query side.
package query

import (
	"context"
	"fmt"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/search"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

// DefaultMaxDepth mirrors store.DefaultMaxDepth; repeated here so callers
// of this package need not import internal/store for the constant.
const DefaultMaxDepth = store.DefaultMaxDepth

// DefaultMaxNodes bounds a rendered result absent caller override, per
// §4.9 ("maxNodes? default implementation-chosen").
const DefaultMaxNodes = 200

// DefaultTopicK is how many hits a topic/query endpoint pulls from the
// search index before exact-match preference and graph-membership
// filtering narrow it down.
const DefaultTopicK = 50

// Endpoint is one side of a constraint: either an exact Symbol (a full
// canonical id, or a bare name resolved within the store) or a free-text
// Query resolved via the search index, per §4.9's endpoint shape.
type Endpoint struct {
	Symbol string
	Query  string
}

func (e *Endpoint) empty() bool { return e == nil || (e.Symbol == "" && e.Query == "") }

// Constraints is §4.9's {from?, to?, topic?} input, plus the
// optional depth/kind/module filters named in §1/§4.6.
type Constraints struct {
	From     *Endpoint
	To       *Endpoint
	Topic    string
	MaxDepth int
	MaxNodes int
	Kinds    []graph.EdgeKind
	Module   string
}

func (c Constraints) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

func (c Constraints) maxNodes() int {
	if c.MaxNodes > 0 {
		return c.MaxNodes
	}
	return DefaultMaxNodes
}

// NodeMeta is per-node context carried alongside a Result, consumed by
// internal/format for adaptive snippet rendering (§4.10).
type NodeMeta struct {
	Depth         int
	EntryEdgeKind graph.EdgeKind
	CallSites     []graph.CallSiteRange
}

// Result is §4.9's result shape: `{edges[], nodes[], aliasMap,
// metadataByNodeId, maxNodes?, message?}`.
type Result struct {
	Nodes      []*graph.Node
	Edges      []graph.Edge
	AliasMap   map[string]string // node id -> short display label
	Metadata   map[string]NodeMeta
	MaxNodes   int
	Truncated  bool
	Message    string
	SearchMode search.Mode // "" when no search index was consulted
}

// Engine answers §4.9's search_graph operation and the nine derived
// tool operations over one package's store and (optional) search index.
type Engine struct {
	Store *store.Store
	Index *search.Index // nil degrades topic/query resolution to "no matches"
}

// New constructs an Engine. idx may be nil; topic/query constraints then
// resolve to an informational message instead of a match set, per spec
// §7's "provider unavailable" fallback generalized to "no index at all".
func New(s *store.Store, idx *search.Index) *Engine {
	return &Engine{Store: s, Index: idx}
}

// SearchGraph dispatches one Constraints value through §4.9's
// matrix: error when nothing is given, forward/backward/path/topic
// traversal otherwise, with topic acting as either the sole selector or
// a post-traversal filter.
func (e *Engine) SearchGraph(ctx context.Context, c Constraints) (*Result, error) {
	if c.From.empty() && c.To.empty() && c.Topic == "" {
		return &Result{Message: "At least one of from, to, or topic is required"}, nil
	}

	switch {
	case !c.From.empty() && !c.To.empty():
		return e.pathResult(c)
	case !c.From.empty() && c.Topic == "":
		return e.traversalResult(c, c.From, e.Store.ForwardReachable)
	case !c.To.empty() && c.Topic == "":
		return e.traversalResult(c, c.To, e.Store.BackwardReachable)
	case c.From.empty() && c.To.empty():
		return e.topicOnlyResult(ctx, c)
	default:
		// any endpoint plus a topic: traverse then filter by topic membership.
		var base *Result
		var err error
		if !c.From.empty() {
			base, err = e.traversalResult(c, c.From, e.Store.ForwardReachable)
		} else {
			base, err = e.traversalResult(c, c.To, e.Store.BackwardReachable)
		}
		if err != nil || base.Message != "" {
			return base, err
		}
		return e.filterByTopic(ctx, base, c.Topic)
	}
}

// resolveEndpoint turns one Endpoint into its candidate start nodes: a
// Symbol is tried first as a canonical id, then as a bare name lookup
// across the store; a Query is resolved via the search index. An empty
// match set returns an explanatory message rather than an error, since
// "nothing matched" is a normal, reportable outcome, not a failure.
func (e *Engine) resolveEndpoint(ctx context.Context, ep *Endpoint) ([]*graph.Node, string, error) {
	if ep.empty() {
		return nil, "endpoint is required", nil
	}
	if ep.Symbol != "" {
		if n, err := e.Store.GetNode(ep.Symbol); err != nil {
			return nil, "", fmt.Errorf("query: resolve symbol %s: %w", ep.Symbol, err)
		} else if n != nil {
			return []*graph.Node{n}, "", nil
		}
		byName, err := e.Store.NodesByName(ep.Symbol)
		if err != nil {
			return nil, "", fmt.Errorf("query: resolve name %s: %w", ep.Symbol, err)
		}
		if len(byName) > 0 {
			return byName, "", nil
		}
		return nil, fmt.Sprintf("no symbol found matching %q", ep.Symbol), nil
	}

	nodes, _, err := e.searchNodes(ctx, ep.Query, DefaultTopicK)
	if err != nil {
		return nil, "", err
	}
	if len(nodes) == 0 {
		return nil, fmt.Sprintf("no symbols matched query %q", ep.Query), nil
	}
	return nodes, "", nil
}

type reachFn func(startID string, maxDepth int, kinds ...graph.EdgeKind) ([]store.ReachableNode, error)

// traversalResult resolves ep to one or more start nodes and unions their
// reachability walks, since §4.9's "endpoint resolution" step 2 can
// return multiple matching nodes from a free-text query, each of which
// becomes its own traversal seed.
func (e *Engine) traversalResult(c Constraints, ep *Endpoint, walk reachFn) (*Result, error) {
	starts, msg, err := e.resolveEndpoint(context.Background(), ep)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return &Result{Message: msg}, nil
	}

	seen := map[string]store.ReachableNode{}
	for _, start := range starts {
		reached, err := walk(start.ID, c.maxDepth(), c.Kinds...)
		if err != nil {
			return nil, fmt.Errorf("query: traversal from %s: %w", start.ID, err)
		}
		for _, rn := range reached {
			if c.Module != "" && rn.Node.Module != c.Module {
				continue
			}
			if existing, ok := seen[rn.Node.ID]; !ok || rn.Depth < existing.Depth {
				seen[rn.Node.ID] = rn
			}
		}
	}

	result := buildResult(starts, seen, c.maxNodes())
	e.truncate(result, starts)
	return result, nil
}

// pathResult resolves both endpoints and returns the shortest path
// between the first match on each side, per §4.9's "from+to ->
// path search". Multiple matches on either side fall back to the first
// candidate; a true multi-candidate path search is out of scope (spec
// keeps disambiguation to single-endpoint resolution).
func (e *Engine) pathResult(c Constraints) (*Result, error) {
	froms, msg, err := e.resolveEndpoint(context.Background(), c.From)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return &Result{Message: msg}, nil
	}
	tos, msg, err := e.resolveEndpoint(context.Background(), c.To)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return &Result{Message: msg}, nil
	}

	path, err := e.Store.Path(froms[0].ID, tos[0].ID, c.maxDepth(), c.Kinds...)
	if err != nil {
		return nil, fmt.Errorf("query: path: %w", err)
	}
	if !path.Found {
		return &Result{Message: fmt.Sprintf("no path found from %s to %s within depth %d", froms[0].ID, tos[0].ID, c.maxDepth())}, nil
	}

	result := &Result{
		Nodes:    path.Nodes,
		Edges:    path.Edges,
		AliasMap: aliasMapFor(path.Nodes),
		Metadata: map[string]NodeMeta{},
		MaxNodes: c.maxNodes(),
	}
	for i, n := range path.Nodes {
		result.Metadata[n.ID] = NodeMeta{Depth: i}
	}
	return result, nil
}

// topicOnlyResult implements §4.9's topic-only row: a free-text
// query returns up to k matching nodes; if they form any edge among
// themselves the result is a graph, otherwise a flat node list.
func (e *Engine) topicOnlyResult(ctx context.Context, c Constraints) (*Result, error) {
	nodes, mode, err := e.searchNodes(ctx, c.Topic, DefaultTopicK)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return &Result{Message: fmt.Sprintf("no symbols matched topic %q", c.Topic)}, nil
	}

	result := &Result{
		Nodes:      nodes,
		AliasMap:   aliasMapFor(nodes),
		Metadata:   map[string]NodeMeta{},
		MaxNodes:   c.maxNodes(),
		SearchMode: mode,
	}
	for _, n := range nodes {
		result.Metadata[n.ID] = NodeMeta{}
	}
	e.truncateFlat(result)
	e.fillEdges(result)
	return result, nil
}

// filterByTopic intersects an already-computed traversal result with the
// topic-matching symbol set, per §4.9's "traverse then filter" row.
func (e *Engine) filterByTopic(ctx context.Context, base *Result, topic string) (*Result, error) {
	topicNodes, mode, err := e.searchNodes(ctx, topic, DefaultTopicK)
	if err != nil {
		return nil, err
	}
	keep := map[string]bool{}
	for _, n := range topicNodes {
		keep[n.ID] = true
	}

	var nodes []*graph.Node
	for _, n := range base.Nodes {
		if keep[n.ID] {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return &Result{Message: fmt.Sprintf("traversal result had no members matching topic %q", topic)}, nil
	}

	var edges []graph.Edge
	for _, edge := range base.Edges {
		if keep[edge.Source] && keep[edge.Target] {
			edges = append(edges, edge)
		}
	}

	meta := map[string]NodeMeta{}
	for _, n := range nodes {
		meta[n.ID] = base.Metadata[n.ID]
	}

	return &Result{
		Nodes:      nodes,
		Edges:      edges,
		AliasMap:   aliasMapFor(nodes),
		Metadata:   meta,
		MaxNodes:   base.MaxNodes,
		SearchMode: mode,
	}, nil
}

// searchNodes resolves a free-text query to matching store nodes via the
// search index, applying the exact-token-match preference rule.
func (e *Engine) searchNodes(ctx context.Context, q string, k int) ([]*graph.Node, search.Mode, error) {
	if e.Index == nil {
		return nil, "", nil
	}
	hits, mode, err := e.Index.Search(ctx, q, k)
	if err != nil {
		return nil, "", fmt.Errorf("query: search: %w", err)
	}
	if exact := search.ExactTokenMatches(q, hits); len(exact) > 0 {
		hits = exact
	}
	var nodes []*graph.Node
	for _, h := range hits {
		n, err := e.Store.GetNode(h.ID)
		if err != nil {
			return nil, "", fmt.Errorf("query: node for hit %s: %w", h.ID, err)
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, mode, nil
}

// buildResult assembles a traversal's node list (starts first, then every
// reached node) and per-node depth metadata. It sets no edges; truncate's
// fillEdges call derives them from the store, restricted to the kept
// node set.
func buildResult(starts []*graph.Node, reached map[string]store.ReachableNode, maxNodes int) *Result {
	nodes := make([]*graph.Node, 0, len(reached)+len(starts))
	seenIDs := map[string]bool{}
	for _, s := range starts {
		if !seenIDs[s.ID] {
			nodes = append(nodes, s)
			seenIDs[s.ID] = true
		}
	}
	for _, rn := range reached {
		if !seenIDs[rn.Node.ID] {
			nodes = append(nodes, rn.Node)
			seenIDs[rn.Node.ID] = true
		}
	}

	meta := map[string]NodeMeta{}
	for _, s := range starts {
		meta[s.ID] = NodeMeta{Depth: 0}
	}
	for _, rn := range reached {
		meta[rn.Node.ID] = NodeMeta{Depth: rn.Depth, EntryEdgeKind: rn.EntryEdgeKind}
	}

	return &Result{
		Nodes:    nodes,
		AliasMap: aliasMapFor(nodes),
		Metadata: meta,
		MaxNodes: maxNodes,
	}
}

// aliasMapFor builds the formatter-facing alias map: node id -> a short
// display label (the node's bare Name, members included), so
// Mermaid/graph-text output need not repeat full canonical ids.
func aliasMapFor(nodes []*graph.Node) map[string]string {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Name
	}
	return out
}

// truncate applies §4.9's truncation rule: if |nodes| > maxNodes,
// keep a BFS-reachable subgraph from the seed nodes up to the budget
// (walking the live edge set via the store, since a ReachableNode set
// carries no adjacency of its own) and mark the result as truncated so
// the formatter can emit a marker.
func (e *Engine) truncate(r *Result, seeds []*graph.Node) {
	if len(r.Nodes) <= r.MaxNodes {
		e.fillEdges(r)
		return
	}

	byID := map[string]*graph.Node{}
	for _, n := range r.Nodes {
		byID[n.ID] = n
	}

	keepIDs := map[string]bool{}
	var queue []*graph.Node
	for _, s := range seeds {
		if n, ok := byID[s.ID]; ok && !keepIDs[n.ID] {
			keepIDs[n.ID] = true
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 && len(keepIDs) < r.MaxNodes {
		cur := queue[0]
		queue = queue[1:]
		fwd, _ := e.Store.ForwardEdges(cur.ID)
		for _, edge := range fwd {
			if keepIDs[edge.Target] || len(keepIDs) >= r.MaxNodes {
				continue
			}
			if n, ok := byID[edge.Target]; ok {
				keepIDs[edge.Target] = true
				queue = append(queue, n)
			}
		}
	}
	// Seeds absent from the result (e.g. a backward traversal's target,
	// which is reached-into rather than a member of the reached set) or a
	// budget not yet exhausted by BFS fall back to ascending depth order.
	if len(keepIDs) < r.MaxNodes {
		ordered := make([]*graph.Node, len(r.Nodes))
		copy(ordered, r.Nodes)
		sortByDepth(ordered, r.Metadata)
		for _, n := range ordered {
			if len(keepIDs) >= r.MaxNodes {
				break
			}
			keepIDs[n.ID] = true
		}
	}

	var kept []*graph.Node
	for _, n := range r.Nodes {
		if keepIDs[n.ID] {
			kept = append(kept, n)
		}
	}
	r.Nodes = kept
	r.Truncated = true
	e.fillEdges(r)
}

func sortByDepth(nodes []*graph.Node, meta map[string]NodeMeta) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && meta[nodes[j-1].ID].Depth > meta[nodes[j].ID].Depth; j-- {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
		}
	}
}

func (e *Engine) truncateFlat(r *Result) {
	if len(r.Nodes) <= r.MaxNodes {
		return
	}
	r.Nodes = r.Nodes[:r.MaxNodes]
	r.Truncated = true
}

// fillEdges re-derives the edge set for the final kept node set from the
// store, used after truncation drops nodes (and therefore some edges)
// from a traversal result, and for the topic-only result's initial edge
// discovery among its matched nodes.
func (e *Engine) fillEdges(r *Result) {
	idSet := map[string]bool{}
	for _, n := range r.Nodes {
		idSet[n.ID] = true
	}
	var edges []graph.Edge
	seen := map[string]bool{}
	for _, n := range r.Nodes {
		forward, err := e.Store.ForwardEdges(n.ID)
		if err != nil {
			continue
		}
		for _, edge := range forward {
			if !idSet[edge.Target] {
				continue
			}
			key := edge.Source + "\x00" + edge.Target + "\x00" + string(edge.Kind) + "\x00" + edge.Discriminator
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, edge)
		}
	}
	r.Edges = edges
}
