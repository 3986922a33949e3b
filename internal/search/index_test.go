package search

import (
	"context"
	"testing"
)

func TestLexicalSearchPrefersExactMatch(t *testing.T) {
	idx := NewIndex(nil, nil, 0.5)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Symbol: "formatDate", Content: "formats a date value"},
		{ID: "b", Symbol: "formatDateLongVerbose", Content: "format format format date date date"},
	}
	for _, d := range docs {
		if err := idx.Add(ctx, d, "hash-"+d.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	hits, mode, err := idx.Search(ctx, "formatDate", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if mode != ModeKeyword {
		t.Fatalf("expected keyword mode with no provider, got %s", mode)
	}
	if len(hits) == 0 || hits[0].ID != "a" {
		t.Fatalf("expected exact symbol match 'a' to rank first, got %+v", hits)
	}
}

func TestHybridSearchUsesProvider(t *testing.T) {
	provider := NewHashingEmbedder(LocalHash384)
	dir := t.TempDir()
	c, err := OpenCache(dir, provider.Name())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	idx := NewIndex(provider, c, 0.5)
	ctx := context.Background()

	doc := Document{ID: "x", Symbol: "computeTotal", Content: "sums all line items"}
	if err := idx.Add(ctx, doc, "hash-x"); err != nil {
		t.Fatalf("add: %v", err)
	}

	hits, mode, err := idx.Search(ctx, "sums line items", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if mode != ModeSemantic {
		t.Fatalf("expected semantic mode with provider configured, got %s", mode)
	}
	if len(hits) != 1 || hits[0].ID != "x" {
		t.Fatalf("expected doc x in results, got %+v", hits)
	}
}

func TestEmbeddingCacheReusesVector(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(dir, "local-hash-384")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	provider := NewHashingEmbedder(LocalHash384)
	ctx := context.Background()

	v1, err := c.EmbedWithCache(ctx, provider, "hash-1", "some text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	v2, err := c.EmbedWithCache(ctx, provider, "hash-1", "different text entirely")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v1) != len(v2) {
		t.Fatalf("expected cached vector of same length")
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("expected cache hit to reuse vector unchanged at index %d", i)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	if sim := Cosine(a, b); sim < 0.999 {
		t.Fatalf("expected identical vectors to have cosine ~1, got %f", sim)
	}
	c := []float32{0, 1, 0}
	if sim := Cosine(a, c); sim > 0.001 {
		t.Fatalf("expected orthogonal vectors to have cosine ~0, got %f", sim)
	}
}
