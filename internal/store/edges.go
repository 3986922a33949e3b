package store

import (
	"fmt"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

const numEdgeCols = 5
const edgesBatchSize = 999 / numEdgeCols

// UpsertEdges inserts or updates edges in batched multi-row statements.
// Edges are never required to reference existing nodes at write time
// (§3's dangling-edge tolerance); every read path filters instead.
func (s *Store) UpsertEdges(edges []graph.Edge) error {
	for i := 0; i < len(edges); i += edgesBatchSize {
		end := i + edgesBatchSize
		if end > len(edges) {
			end = len(edges)
		}
		if err := s.upsertEdgeChunk(edges[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertEdgeChunk(batch []graph.Edge) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO edges (source, target, kind, discriminator, attrs) VALUES `)

	args := make([]any, 0, len(batch)*numEdgeCols)
	for i, e := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?,?)")
		args = append(args, e.Source, e.Target, string(e.Kind), e.Discriminator, marshalProps(e.Attrs))
	}
	sb.WriteString(` ON CONFLICT(source, target, kind, discriminator) DO UPDATE SET attrs=excluded.attrs`)

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("upsert edge batch: %w", err)
	}
	return nil
}

// deleteEdgesTouching deletes every edge whose source is in ids, batched
// under the bind-variable limit. Only the source side cascades (§4.6:
// "ON DELETE CASCADE for the source side; targets are NOT constrained").
// Edges authored by other, unchanged files that merely target one of
// these ids are left in place as dangling-tolerant incoming edges and
// dropped at query time by the nodes-join instead (§3/§9) — deleting them
// here would lose them permanently once their source file is skipped by
// the incremental-sync hash check.
func (s *Store) deleteEdgesTouching(ids []string) error {
	const batchSize = 900
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, 0, len(batch))
		for _, id := range batch {
			args = append(args, id)
		}
		query := fmt.Sprintf(`DELETE FROM edges WHERE source IN (%s)`, placeholders)
		if _, err := s.q.Exec(query, args...); err != nil {
			return fmt.Errorf("delete edges sourced at nodes: %w", err)
		}
	}
	return nil
}

func scanEdges(queryFn func() (rowsScanner, error)) ([]graph.Edge, error) {
	rows, err := queryFn()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var kind, disc, attrsJSON string
		if err := rows.Scan(&e.Source, &e.Target, &kind, &disc, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Kind = graph.EdgeKind(kind)
		e.Discriminator = disc
		e.Attrs = unmarshalProps(attrsJSON)
		out = append(out, e)
	}
	return out, nil
}

// rowsScanner is the subset of *sql.Rows used by scanEdges, so it can be
// satisfied by either a live query result.
type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// ForwardEdges returns every edge with source == nodeID and, when kinds
// is non-empty, Kind in kinds, whose target still exists in the nodes
// table (§3's dangling-edge join).
func (s *Store) ForwardEdges(nodeID string, kinds ...graph.EdgeKind) ([]graph.Edge, error) {
	query, args := edgeQuery("source", "target", nodeID, kinds)
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("forward edges: %w", err)
	}
	return scanEdges(func() (rowsScanner, error) { return rows, nil })
}

// BackwardEdges returns every edge with target == nodeID and, when kinds
// is non-empty, Kind in kinds, whose source still exists.
func (s *Store) BackwardEdges(nodeID string, kinds ...graph.EdgeKind) ([]graph.Edge, error) {
	query, args := edgeQuery("target", "source", nodeID, kinds)
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("backward edges: %w", err)
	}
	return scanEdges(func() (rowsScanner, error) { return rows, nil })
}

func edgeQuery(anchorCol, neighborCol, nodeID string, kinds []graph.EdgeKind) (string, []any) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`SELECT e.source, e.target, e.kind, e.discriminator, e.attrs
		FROM edges e JOIN nodes n ON n.id = e.%s
		WHERE e.%s = ?`, neighborCol, anchorCol))
	args := []any{nodeID}
	if len(kinds) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(kinds)), ",")
		sb.WriteString(fmt.Sprintf(` AND e.kind IN (%s)`, placeholders))
		for _, k := range kinds {
			args = append(args, string(k))
		}
	}
	return sb.String(), args
}

// CountEdges returns the total edge count, used by graph-schema.
func (s *Store) CountEdges() (int, error) {
	var n int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}

// CountEdgesByKind returns the per-kind edge count, used by graph-schema.
func (s *Store) CountEdgesByKind() (map[string]int, error) {
	rows, err := s.q.Query(`SELECT kind, COUNT(*) FROM edges GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count edges by kind: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		out[kind] = count
	}
	return out, nil
}

// DanglingEdgeCount returns the number of edges whose target has no
// matching row in nodes, exposed by graph-schema as a health signal.
func (s *Store) DanglingEdgeCount() (int, error) {
	var n int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM edges e LEFT JOIN nodes n ON n.id = e.target WHERE n.id IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dangling edge count: %w", err)
	}
	return n, nil
}
