// Package format renders a query.Result into the two deterministic text
// shapes an LLM consumer reads: a plain graph-text listing and a Mermaid
// diagram, plus the adaptive code-snippet block that accompanies either.
// It is a thin rendering layer over already-resolved Store/query data,
// producing markdown text rather than raw JSON since this domain's
// result shape is graph-structured rather than single-record.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

// GraphText renders r as `## Graph` (one edge per line, `src --KIND-->
// dst`) followed by `## Nodes` (one node per line, alias and kind). A
// truncated result gets a trailing marker so the caller knows the
// listing is partial.
func GraphText(r *query.Result) string {
	var sb strings.Builder

	if r.Message != "" {
		sb.WriteString(r.Message)
		sb.WriteByte('\n')
		return sb.String()
	}

	sb.WriteString("## Graph\n")
	edges := make([]graph.Edge, len(r.Edges))
	copy(edges, r.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Kind != edges[j].Kind {
			return edges[i].Kind < edges[j].Kind
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		fmt.Fprintf(&sb, "  %s --%s--> %s\n", e.Source, e.Kind, e.Target)
	}

	sb.WriteString("## Nodes\n")
	nodes := make([]*graph.Node, len(r.Nodes))
	copy(nodes, r.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		alias := r.AliasMap[n.ID]
		meta := r.Metadata[n.ID]
		fmt.Fprintf(&sb, "  %s (%s, %s) depth=%d\n", n.ID, alias, n.Kind, meta.Depth)
	}

	if r.Truncated {
		fmt.Fprintf(&sb, "## Truncated\n  result exceeds maxNodes=%d; subgraph kept from seed nodes\n", r.MaxNodes)
	}

	return sb.String()
}
