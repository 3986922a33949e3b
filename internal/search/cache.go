package search

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache is the embedding cache keyed by (model_name, content_hash), per
// §4.7 and the `<cacheDir>/embeddings/<model>.db` file layout in §6.
// It is a separate durable store from the graph database so a cache wipe
// never touches node/edge data and vice versa, and so the same cached
// vector can be reused across unrelated projects that happen to contain
// identical declarations (same model, same content hash).
type Cache struct {
	db    *sql.DB
	model string
}

// OpenCache opens (creating if necessary) the embedding cache file for one
// model under cacheDir/embeddings/<model>.db.
func OpenCache(cacheDir, model string) (*Cache, error) {
	dir := filepath.Join(cacheDir, "embeddings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, model+".db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open embedding cache %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS vectors (
		content_hash TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache schema: %w", err)
	}
	return &Cache{db: db, model: model}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached vector for contentHash, or (nil, false) on miss.
func (c *Cache) Get(contentHash string) ([]float32, bool, error) {
	var blob []byte
	err := c.db.QueryRow(`SELECT vector FROM vectors WHERE content_hash = ?`, contentHash).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached embedding: %w", err)
	}
	return decodeVector(blob), true, nil
}

// Put stores or replaces the vector for contentHash. Writes are
// idempotent upserts, per §5's shared-resource policy for the
// embedding cache (multi-reader/single-writer, upsert semantics).
func (c *Cache) Put(contentHash string, vector []float32) error {
	_, err := c.db.Exec(`INSERT INTO vectors (content_hash, vector) VALUES (?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET vector=excluded.vector`,
		contentHash, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("put cached embedding: %w", err)
	}
	return nil
}

// EmbedWithCache returns contentHash's vector from the cache if present;
// otherwise it invokes provider, caches the result, and returns it. This
// is the ingestion-time cache rule from §4.7.
func (c *Cache) EmbedWithCache(ctx context.Context, provider EmbeddingProvider, contentHash, text string) ([]float32, error) {
	if v, ok, err := c.Get(contentHash); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}
	v, err := provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.Put(contentHash, v); err != nil {
		return nil, err
	}
	return v, nil
}
