package format

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
)

// Mermaid renders r as one or more `graph LR` diagrams, one per connected
// component, grouping each file's (or, when the result spans multiple
// packages, each package's) symbols into a subgraph once it holds at
// least two of them; singletons are emitted bare at the top level.
// Identifiers are sanitized to [A-Za-z0-9_]+ with a disambiguating
// suffix; Function/Method display names get a trailing "()"; angle
// brackets are always HTML-escaped.
func Mermaid(r *query.Result) string {
	if r.Message != "" {
		return r.Message + "\n"
	}
	if len(r.Nodes) == 0 {
		return "graph LR\n"
	}

	ids := newIDSanitizer()
	components := connectedComponents(r.Nodes, r.Edges)

	var diagrams []string
	for _, comp := range components {
		diagrams = append(diagrams, renderComponent(r, comp, ids))
	}
	return strings.Join(diagrams, "\n---\n")
}

func renderComponent(r *query.Result, nodes []*graph.Node, ids *idSanitizer) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	multiPackage := false
	pkgSeen := map[string]bool{}
	for _, n := range nodes {
		pkgSeen[n.Package] = true
	}
	multiPackage = len(pkgSeen) > 1

	groupKey := func(n *graph.Node) string {
		if multiPackage {
			return "pkg:" + n.Package
		}
		return "file:" + n.FilePath
	}

	groups := map[string][]*graph.Node{}
	var groupOrder []string
	for _, n := range nodes {
		k := groupKey(n)
		if _, ok := groups[k]; !ok {
			groupOrder = append(groupOrder, k)
		}
		groups[k] = append(groups[k], n)
	}
	sort.Strings(groupOrder)

	for _, k := range groupOrder {
		members := groups[k]
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		if len(members) >= 2 {
			label := strings.TrimPrefix(strings.TrimPrefix(k, "pkg:"), "file:")
			fmt.Fprintf(&sb, "  subgraph %s[%s]\n", ids.sanitize("grp_"+k), escapeLabel(label))
			for _, n := range members {
				fmt.Fprintf(&sb, "    %s[%s]\n", ids.sanitize(n.ID), displayLabel(n, r.AliasMap[n.ID]))
			}
			sb.WriteString("  end\n")
		} else {
			for _, n := range members {
				fmt.Fprintf(&sb, "  %s[%s]\n", ids.sanitize(n.ID), displayLabel(n, r.AliasMap[n.ID]))
			}
		}
	}

	present := map[string]bool{}
	for _, n := range nodes {
		present[n.ID] = true
	}
	edges := make([]graph.Edge, len(r.Edges))
	copy(edges, r.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		fmt.Fprintf(&sb, "  %s -->|%s| %s\n", ids.sanitize(e.Source), e.Kind, ids.sanitize(e.Target))
	}

	return sb.String()
}

// displayLabel gives Function/Method nodes a trailing "()" and
// HTML-escapes any angle brackets in the name, per §4.10.
func displayLabel(n *graph.Node, alias string) string {
	name := alias
	if name == "" {
		name = n.Name
	}
	if n.Kind == graph.KindFunction || n.Kind == graph.KindMethod {
		name += "()"
	}
	return escapeLabel(name)
}

func escapeLabel(s string) string {
	return html.EscapeString(s)
}

// idSanitizer maps arbitrary strings to Mermaid-safe [A-Za-z0-9_]+
// identifiers, appending a monotonic suffix on collision after
// sanitization strips distinguishing characters.
type idSanitizer struct {
	seen map[string]string
	used map[string]int
}

func newIDSanitizer() *idSanitizer {
	return &idSanitizer{seen: map[string]string{}, used: map[string]int{}}
}

func (s *idSanitizer) sanitize(raw string) string {
	if existing, ok := s.seen[raw]; ok {
		return existing
	}
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
	if base == "" || (base[0] >= '0' && base[0] <= '9') {
		base = "n_" + base
	}
	id := base
	if n := s.used[base]; n > 0 {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	s.used[base]++
	s.seen[raw] = id
	return id
}

// connectedComponents groups nodes into undirected connected components
// over edges, so each becomes its own diagram per §4.10.
func connectedComponents(nodes []*graph.Node, edges []graph.Edge) [][]*graph.Node {
	byID := map[string]*graph.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	adj := map[string][]string{}
	for _, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := map[string]bool{}
	var ordered []string
	for _, n := range nodes {
		ordered = append(ordered, n.ID)
	}
	sort.Strings(ordered)

	var components [][]*graph.Node
	for _, start := range ordered {
		if visited[start] {
			continue
		}
		var comp []*graph.Node
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, byID[cur])
			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i].ID < comp[j].ID })
		components = append(components, comp)
	}
	return components
}
