// Package store is the persistent graph store: a SQLite-backed two-table
// (nodes, edges) representation of the code graph, queried by the
// reachability and search layers, keyed by the canonical string node ids
// of §3 rather than integer surrogate keys.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work identically
// inside and outside a transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps one project's SQLite connection.
type Store struct {
	db *sql.DB
	q  Querier
}

// OpenPath opens (creating if necessary) the SQLite database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	s := &Store{db: db}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction runs fn against a transaction-scoped Store. s itself is
// never mutated, so concurrent read-only callers using s are unaffected.
func (s *Store) WithTransaction(fn func(tx *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		module TEXT DEFAULT '',
		package TEXT DEFAULT '',
		start_line INTEGER DEFAULT 0,
		end_line INTEGER DEFAULT 0,
		exported INTEGER DEFAULT 0,
		content_hash TEXT DEFAULT '',
		snippet TEXT DEFAULT '',
		props TEXT DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file_path);
	CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
	CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		discriminator TEXT DEFAULT '',
		attrs TEXT DEFAULT '{}',
		UNIQUE(source, target, kind, discriminator)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source, kind);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target, kind);

	CREATE TABLE IF NOT EXISTS embeddings (
		node_id TEXT NOT NULL,
		model TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		vector BLOB NOT NULL,
		PRIMARY KEY (node_id, model)
	);

	CREATE TABLE IF NOT EXISTS manifest (
		rel_path TEXT PRIMARY KEY,
		mtime TEXT NOT NULL,
		size INTEGER NOT NULL,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func marshalProps(props map[string]any) string {
	if len(props) == 0 {
		return "{}"
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func unmarshalProps(data string) map[string]any {
	if data == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return map[string]any{}
	}
	return m
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowToNode scans one nodes-table row already positioned at its 12 graph
// columns (id, kind, name, file_path, module, package, start_line,
// end_line, exported, content_hash, snippet, props).
func rowToNode(rows *sql.Rows) (*graph.Node, error) {
	var n graph.Node
	var exported int
	var propsJSON string
	if err := rows.Scan(&n.ID, &n.Kind, &n.Name, &n.FilePath, &n.Module, &n.Package,
		&n.StartLine, &n.EndLine, &exported, &n.ContentHash, &n.Snippet, &propsJSON); err != nil {
		return nil, err
	}
	n.Exported = exported != 0
	n.Props = unmarshalProps(propsJSON)
	return &n, nil
}
