package store

import "fmt"

// RelationshipPattern is a (source kind)-[edge kind]->(target kind)
// triple with its occurrence count, a `(:Label)-[:TYPE]->(:Label)`-style
// histogram over the stored graph.
type RelationshipPattern struct {
	SourceKind string `json:"source_kind"`
	EdgeKind   string `json:"edge_kind"`
	TargetKind string `json:"target_kind"`
	Count      int    `json:"count"`
}

// SchemaSummary is the graph-schema tool's response: node/edge kind
// counts plus a dangling-edge health signal, supplementing the nine
// named query-engine tools.
type SchemaSummary struct {
	TotalNodes           int                   `json:"total_nodes"`
	NodesByKind          map[string]int        `json:"nodes_by_kind"`
	TotalEdges           int                   `json:"total_edges"`
	EdgesByKind          map[string]int        `json:"edges_by_kind"`
	RelationshipPatterns []RelationshipPattern `json:"relationship_patterns"`
	SampleFunctionNames  []string              `json:"sample_function_names"`
	SampleClassNames     []string              `json:"sample_class_names"`
	DanglingEdges        int                   `json:"dangling_edges"`
}

// Schema assembles a SchemaSummary in one call, used by both the MCP
// graph-schema tool and the `cli` subcommand's human-readable output.
func (s *Store) Schema() (*SchemaSummary, error) {
	totalNodes, err := s.CountNodes()
	if err != nil {
		return nil, fmt.Errorf("schema total nodes: %w", err)
	}
	nodesByKind, err := s.CountNodesByKind()
	if err != nil {
		return nil, fmt.Errorf("schema nodes by kind: %w", err)
	}
	totalEdges, err := s.CountEdges()
	if err != nil {
		return nil, fmt.Errorf("schema total edges: %w", err)
	}
	edgesByKind, err := s.CountEdgesByKind()
	if err != nil {
		return nil, fmt.Errorf("schema edges by kind: %w", err)
	}
	patterns, err := s.relationshipPatterns()
	if err != nil {
		return nil, fmt.Errorf("schema relationship patterns: %w", err)
	}
	funcNames, err := s.sampleNamesByKind("Function", 30)
	if err != nil {
		return nil, fmt.Errorf("schema sample function names: %w", err)
	}
	classNames, err := s.sampleNamesByKind("Class", 20)
	if err != nil {
		return nil, fmt.Errorf("schema sample class names: %w", err)
	}
	dangling, err := s.DanglingEdgeCount()
	if err != nil {
		return nil, fmt.Errorf("schema dangling edges: %w", err)
	}
	return &SchemaSummary{
		TotalNodes:           totalNodes,
		NodesByKind:          nodesByKind,
		TotalEdges:           totalEdges,
		EdgesByKind:          edgesByKind,
		RelationshipPatterns: patterns,
		SampleFunctionNames:  funcNames,
		SampleClassNames:     classNames,
		DanglingEdges:        dangling,
	}, nil
}

// relationshipPatterns returns the top 25 (source kind)-[edge]->(target
// kind) triples by occurrence count, letting an LLM see what shapes of
// edge actually exist before issuing search-graph calls.
func (s *Store) relationshipPatterns() ([]RelationshipPattern, error) {
	rows, err := s.q.Query(`
		SELECT sn.kind, e.kind, tn.kind, COUNT(*) AS cnt
		FROM edges e
		JOIN nodes sn ON sn.id = e.source
		JOIN nodes tn ON tn.id = e.target
		GROUP BY sn.kind, e.kind, tn.kind
		ORDER BY cnt DESC
		LIMIT 25`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RelationshipPattern
	for rows.Next() {
		var p RelationshipPattern
		if err := rows.Scan(&p.SourceKind, &p.EdgeKind, &p.TargetKind, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// sampleNamesByKind returns up to limit node names of the given kind, in
// name order, for the schema's orientation samples.
func (s *Store) sampleNamesByKind(kind string, limit int) ([]string, error) {
	rows, err := s.q.Query(`SELECT name FROM nodes WHERE kind = ? ORDER BY name LIMIT ?`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
