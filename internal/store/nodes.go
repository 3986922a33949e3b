package store

import (
	"fmt"
	"strings"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// numNodeCols is the bind-variable count of one upsertNodeChunk row;
// SQLite caps a statement at 999 bind variables total, so batch size is
// derived from it rather than hardcoded.
const numNodeCols = 12
const nodesBatchSize = 999 / numNodeCols

// UpsertNodes inserts or updates nodes in batched multi-row statements,
// since the node id is already the caller-supplied canonical string (no
// id recovery pass is needed, unlike an autoincrement schema).
func (s *Store) UpsertNodes(nodes []*graph.Node) error {
	for i := 0; i < len(nodes); i += nodesBatchSize {
		end := i + nodesBatchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		if err := s.upsertNodeChunk(nodes[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertNodeChunk(batch []*graph.Node) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO nodes (id, kind, name, file_path, module, package, start_line, end_line, exported, content_hash, snippet, props) VALUES `)

	args := make([]any, 0, len(batch)*numNodeCols)
	for i, n := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args, n.ID, string(n.Kind), n.Name, n.FilePath, n.Module, n.Package,
			n.StartLine, n.EndLine, boolToInt(n.Exported), n.ContentHash, n.Snippet, marshalProps(n.Props))
	}
	sb.WriteString(` ON CONFLICT(id) DO UPDATE SET
		kind=excluded.kind, name=excluded.name, file_path=excluded.file_path,
		module=excluded.module, package=excluded.package,
		start_line=excluded.start_line, end_line=excluded.end_line,
		exported=excluded.exported, content_hash=excluded.content_hash,
		snippet=excluded.snippet, props=excluded.props`)

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("upsert node batch: %w", err)
	}
	return nil
}

// RemoveFileNodes deletes every node whose file_path matches filePath,
// along with every edge whose source is one of them (edges from other
// files that target them are kept) and their stored embeddings, as the
// first step of re-indexing
// one file (§4.6's per-file pipeline: remove-prior-nodes first).
func (s *Store) RemoveFileNodes(filePath string) error {
	rows, err := s.q.Query(`SELECT id FROM nodes WHERE file_path = ?`, filePath)
	if err != nil {
		return fmt.Errorf("select file nodes: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan node id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil
	}
	if err := s.deleteEdgesTouching(ids); err != nil {
		return err
	}
	if err := s.RemoveFileEmbeddings(ids); err != nil {
		return err
	}
	if _, err := s.q.Exec(`DELETE FROM nodes WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("delete file nodes: %w", err)
	}
	return nil
}

// ClearAll wipes every node, edge, embedding and manifest row, used by a
// full re-sync.
func (s *Store) ClearAll() error {
	for _, table := range []string{"edges", "nodes", "embeddings", "manifest"} {
		if _, err := s.q.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// GetNode fetches one node by its canonical id, joining nothing: callers
// that need dangling-edge tolerance call this (or NodesExist) explicitly
// rather than relying on a foreign key, per §3.
func (s *Store) GetNode(id string) (*graph.Node, error) {
	rows, err := s.q.Query(`SELECT id, kind, name, file_path, module, package, start_line, end_line, exported, content_hash, snippet, props FROM nodes WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, nil
	}
	return rowToNode(rows)
}

// NodesByFile returns every node declared in filePath, File node included.
func (s *Store) NodesByFile(filePath string) ([]*graph.Node, error) {
	rows, err := s.q.Query(`SELECT id, kind, name, file_path, module, package, start_line, end_line, exported, content_hash, snippet, props FROM nodes WHERE file_path = ? ORDER BY start_line`, filePath)
	if err != nil {
		return nil, fmt.Errorf("nodes by file: %w", err)
	}
	defer rows.Close()
	var out []*graph.Node
	for rows.Next() {
		n, err := rowToNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// NodesByName returns every node matching name exactly, across all
// files, used for free-text search's exact-token-match preference rule.
func (s *Store) NodesByName(name string) ([]*graph.Node, error) {
	rows, err := s.q.Query(`SELECT id, kind, name, file_path, module, package, start_line, end_line, exported, content_hash, snippet, props FROM nodes WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("nodes by name: %w", err)
	}
	defer rows.Close()
	var out []*graph.Node
	for rows.Next() {
		n, err := rowToNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// AllSearchableNodes returns every non-File node, the input set for
// rebuilding the lexical half of a search.Index from storage alone (e.g.
// when an MCP server process starts against an already-indexed cache
// directory rather than running ingestion itself).
func (s *Store) AllSearchableNodes() ([]*graph.Node, error) {
	rows, err := s.q.Query(`SELECT id, kind, name, file_path, module, package, start_line, end_line, exported, content_hash, snippet, props FROM nodes WHERE kind != ?`, string(graph.KindFile))
	if err != nil {
		return nil, fmt.Errorf("all searchable nodes: %w", err)
	}
	defer rows.Close()
	var out []*graph.Node
	for rows.Next() {
		n, err := rowToNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ExistingIDs filters ids down to those actually present in the nodes
// table, in batches under the 999 bind-variable limit. This is the join
// every reachability query performs to silently drop dangling edges.
func (s *Store) ExistingIDs(ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	const batchSize = 900
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for j, id := range batch {
			args[j] = id
		}
		rows, err := s.q.Query(fmt.Sprintf(`SELECT id FROM nodes WHERE id IN (%s)`, placeholders), args...)
		if err != nil {
			return nil, fmt.Errorf("existing ids: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan existing id: %w", err)
			}
			out[id] = true
		}
		rows.Close()
	}
	return out, nil
}

// CountNodes returns the total node count, used by graph-schema.
func (s *Store) CountNodes() (int, error) {
	var n int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

// CountNodesByKind returns the per-kind node count, used by graph-schema.
func (s *Store) CountNodesByKind() (map[string]int, error) {
	rows, err := s.q.Query(`SELECT kind, COUNT(*) FROM nodes GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count nodes by kind: %w", err)
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
