package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EmbeddingRow is one node's vector, denormalized into the graph store so
// the search layer can rebuild its in-memory vector index with a single
// query instead of consulting the embedding cache per node (§4.7).
// The authoritative, content-hash-deduplicated copy lives in the
// separate embedding cache (internal/search.Cache); this table is a
// per-node projection of it; kept in sync by the ingestion driver.
type EmbeddingRow struct {
	NodeID      string
	Model       string
	ContentHash string
	Vector      []float32
}

// UpsertEmbedding stores or replaces one node's vector for a model.
func (s *Store) UpsertEmbedding(e EmbeddingRow) error {
	_, err := s.q.Exec(`INSERT INTO embeddings (node_id, model, content_hash, vector) VALUES (?, ?, ?, ?)
		ON CONFLICT(node_id, model) DO UPDATE SET content_hash=excluded.content_hash, vector=excluded.vector`,
		e.NodeID, e.Model, e.ContentHash, encodeVector(e.Vector))
	if err != nil {
		return fmt.Errorf("upsert embedding %s: %w", e.NodeID, err)
	}
	return nil
}

// GetEmbedding fetches one node's vector for a model, if present.
func (s *Store) GetEmbedding(nodeID, model string) (*EmbeddingRow, error) {
	row := s.q.QueryRow(`SELECT node_id, model, content_hash, vector FROM embeddings WHERE node_id = ? AND model = ?`, nodeID, model)
	var e EmbeddingRow
	var blob []byte
	if err := row.Scan(&e.NodeID, &e.Model, &e.ContentHash, &blob); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		return nil, fmt.Errorf("get embedding %s: %w", nodeID, err)
	}
	e.Vector = decodeVector(blob)
	return &e, nil
}

// AllEmbeddings returns every stored vector for a model, used to rebuild
// the in-memory vector search index at startup/query time.
func (s *Store) AllEmbeddings(model string) ([]EmbeddingRow, error) {
	rows, err := s.q.Query(`SELECT node_id, model, content_hash, vector FROM embeddings WHERE model = ?`, model)
	if err != nil {
		return nil, fmt.Errorf("all embeddings: %w", err)
	}
	defer rows.Close()
	var out []EmbeddingRow
	for rows.Next() {
		var e EmbeddingRow
		var blob []byte
		if err := rows.Scan(&e.NodeID, &e.Model, &e.ContentHash, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		e.Vector = decodeVector(blob)
		out = append(out, e)
	}
	return out, nil
}

// RemoveFileEmbeddings deletes every embedding of the given node ids (one
// file's nodes, as RemoveFileNodes passes them) for re-index cleanup.
func (s *Store) RemoveFileEmbeddings(nodeIDs []string) error {
	for _, id := range nodeIDs {
		if _, err := s.q.Exec(`DELETE FROM embeddings WHERE node_id = ?`, id); err != nil {
			return fmt.Errorf("remove embedding %s: %w", id, err)
		}
	}
	return nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
