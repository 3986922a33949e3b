package query

import (
	"context"
	"fmt"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

// ForwardCallees answers "what does X call": a forward traversal over
// CALLS edges from the resolved symbol.
func (e *Engine) ForwardCallees(ctx context.Context, symbol string, maxDepth int) (*Result, error) {
	c := Constraints{MaxDepth: maxDepth, Kinds: []graph.EdgeKind{graph.EdgeCalls}}
	return e.traversalResult(c, &Endpoint{Symbol: symbol}, e.Store.ForwardReachable)
}

// BackwardCallers answers "who calls X": a backward traversal over CALLS
// edges into the resolved symbol.
func (e *Engine) BackwardCallers(ctx context.Context, symbol string, maxDepth int) (*Result, error) {
	c := Constraints{MaxDepth: maxDepth, Kinds: []graph.EdgeKind{graph.EdgeCalls}}
	return e.traversalResult(c, &Endpoint{Symbol: symbol}, e.Store.BackwardReachable)
}

// ForwardCallers answers a fan-in question distinct from backward-callers:
// given X, who else calls the things X calls. This surfaces X's "call
// neighbors" for refactor blast-radius estimation (if a callee of X
// changes, what other call sites does that callee have) rather than who
// calls X directly. It takes X's direct callees, then walks backward
// CALLS edges from each of them, excluding X's own callees from the
// result so the output is genuinely "other" callers.
func (e *Engine) ForwardCallers(ctx context.Context, symbol string, maxDepth int) (*Result, error) {
	starts, msg, err := e.resolveEndpoint(ctx, &Endpoint{Symbol: symbol})
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return &Result{Message: msg}, nil
	}

	calleeIDs := map[string]bool{}
	for _, s := range starts {
		direct, err := e.Store.ForwardEdges(s.ID, graph.EdgeCalls)
		if err != nil {
			return nil, fmt.Errorf("query: forward-callers direct callees: %w", err)
		}
		for _, edge := range direct {
			calleeIDs[edge.Target] = true
		}
	}
	if len(calleeIDs) == 0 {
		return &Result{Message: fmt.Sprintf("%s has no outgoing calls to fan in on", symbol)}, nil
	}

	c := Constraints{MaxDepth: maxDepth}
	seen := map[string]store.ReachableNode{}
	for calleeID := range calleeIDs {
		reached, err := e.Store.BackwardReachable(calleeID, c.maxDepth(), graph.EdgeCalls)
		if err != nil {
			return nil, fmt.Errorf("query: forward-callers fan-in from %s: %w", calleeID, err)
		}
		for _, rn := range reached {
			if calleeIDs[rn.Node.ID] {
				continue // a callee of X fanning back to another callee of X isn't a new caller
			}
			if existing, ok := seen[rn.Node.ID]; !ok || rn.Depth < existing.Depth {
				seen[rn.Node.ID] = rn
			}
		}
	}
	if len(seen) == 0 {
		return &Result{Message: fmt.Sprintf("no other callers found fanning in on %s's callees", symbol)}, nil
	}

	result := buildResult(starts, seen, DefaultMaxNodes)
	e.truncate(result, starts)
	return result, nil
}

// Impact answers "what depends on X transitively": a backward traversal
// over every edge kind, not just CALLS, since a rename or removal can
// break importers, extenders and type users too.
func (e *Engine) Impact(ctx context.Context, symbol string, maxDepth int) (*Result, error) {
	c := Constraints{MaxDepth: maxDepth}
	return e.traversalResult(c, &Endpoint{Symbol: symbol}, e.Store.Impact)
}

// FindPath answers "how does X reach Y": shortest path search between
// two resolved endpoints.
func (e *Engine) FindPath(ctx context.Context, from, to string, maxDepth int) (*Result, error) {
	return e.pathResult(Constraints{From: &Endpoint{Symbol: from}, To: &Endpoint{Symbol: to}, MaxDepth: maxDepth})
}

// Neighborhood answers "what surrounds X": the union of X's direct
// (depth-1) forward and backward edges of any kind, a cheap orientation
// view distinct from a full multi-hop traversal.
func (e *Engine) Neighborhood(ctx context.Context, symbol string) (*Result, error) {
	starts, msg, err := e.resolveEndpoint(ctx, &Endpoint{Symbol: symbol})
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return &Result{Message: msg}, nil
	}

	nodes := map[string]*graph.Node{}
	var edges []graph.Edge
	for _, s := range starts {
		nodes[s.ID] = s
		fwd, err := e.Store.ForwardEdges(s.ID)
		if err != nil {
			return nil, fmt.Errorf("query: neighborhood forward: %w", err)
		}
		bwd, err := e.Store.BackwardEdges(s.ID)
		if err != nil {
			return nil, fmt.Errorf("query: neighborhood backward: %w", err)
		}
		for _, edge := range append(fwd, bwd...) {
			edges = append(edges, edge)
			other := edge.Target
			if other == s.ID {
				other = edge.Source
			}
			if _, ok := nodes[other]; !ok {
				if n, err := e.Store.GetNode(other); err == nil && n != nil {
					nodes[other] = n
				}
			}
		}
	}

	var nodeList []*graph.Node
	for _, n := range nodes {
		nodeList = append(nodeList, n)
	}
	meta := map[string]NodeMeta{}
	for _, n := range nodeList {
		depth := 1
		for _, s := range starts {
			if s.ID == n.ID {
				depth = 0
			}
		}
		meta[n.ID] = NodeMeta{Depth: depth}
	}

	result := &Result{
		Nodes:    nodeList,
		Edges:    edges,
		AliasMap: aliasMapFor(nodeList),
		Metadata: meta,
		MaxNodes: DefaultMaxNodes,
	}
	e.truncate(result, starts)
	return result, nil
}

// FileSymbols answers "what is declared in this file": every node whose
// FilePath matches, File node included, ordered by source position.
func (e *Engine) FileSymbols(ctx context.Context, filePath string) (*Result, error) {
	nodes, err := e.Store.NodesByFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("query: file-symbols: %w", err)
	}
	if len(nodes) == 0 {
		return &Result{Message: fmt.Sprintf("no symbols found in %s", filePath)}, nil
	}
	meta := map[string]NodeMeta{}
	for _, n := range nodes {
		meta[n.ID] = NodeMeta{}
	}
	result := &Result{
		Nodes:    nodes,
		AliasMap: aliasMapFor(nodes),
		Metadata: meta,
		MaxNodes: DefaultMaxNodes,
	}
	e.fillEdges(result)
	return result, nil
}

// SearchSymbols answers a bare free-text lookup with no graph traversal:
// the topic-only row of SearchGraph's dispatch matrix, exposed directly
// since it is common enough to warrant its own tool name.
func (e *Engine) SearchSymbols(ctx context.Context, q string, k int) (*Result, error) {
	if k <= 0 {
		k = DefaultTopicK
	}
	return e.topicOnlyResult(ctx, Constraints{Topic: q, MaxNodes: k})
}
