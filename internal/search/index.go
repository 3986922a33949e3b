package search

import (
	"context"
	"fmt"
	"sort"
)

// Mode reports which search mode actually produced a result, surfaced to
// callers per §7 ("keyword search" vs "semantic search").
type Mode string

const (
	ModeKeyword  Mode = "keyword search"
	ModeSemantic Mode = "semantic search"
)

// Index is the hybrid search index over one package's nodes: a lexical
// inverted index always present, plus an optional vector index populated
// only when an EmbeddingProvider and Cache are configured (§4.7's
// "used when an EmbeddingProvider is available").
type Index struct {
	lexical      *lexicalIndex
	vector       *vectorIndex
	provider     EmbeddingProvider
	cache        *Cache
	hybridWeight float64 // lexical weight in [0,1]; vector gets 1-weight
}

// NewIndex builds an empty hybrid index. provider and cache may both be
// nil, in which case the index degrades to lexical-only search and
// reports ModeKeyword (§7's "provider unavailable" fallback).
func NewIndex(provider EmbeddingProvider, cache *Cache, hybridWeight float64) *Index {
	if hybridWeight <= 0 {
		hybridWeight = 0.5
	}
	return &Index{
		lexical:      newLexicalIndex(),
		vector:       newVectorIndex(),
		provider:     provider,
		cache:        cache,
		hybridWeight: hybridWeight,
	}
}

// Add indexes one document, computing and caching its embedding (by
// contentHash) when the index has a provider configured.
func (idx *Index) Add(ctx context.Context, doc Document, contentHash string) error {
	idx.lexical.add(doc)
	if idx.provider == nil || idx.cache == nil {
		return nil
	}
	vec, err := idx.cache.EmbedWithCache(ctx, idx.provider, contentHash, doc.Symbol+" "+doc.Content)
	if err != nil {
		// Embedding failures degrade to lexical-only for this document;
		// ingestion proceeds (§5: embedding timeouts don't abort a
		// file's indexing, retried on next run).
		return fmt.Errorf("embed document %s: %w", doc.ID, err)
	}
	idx.vector.add(doc, vec)
	return nil
}

// AddDocument indexes doc's lexical channel only, with no embedding
// computation. Used to rebuild the index from the graph store's nodes
// table in a process that did not itself run ingestion (§6's
// persisted-files contract implies the index must be reconstructible
// from storage alone).
func (idx *Index) AddDocument(doc Document) {
	idx.lexical.add(doc)
}

// AddVector populates doc's vector channel with an already-computed
// embedding, the rebuild counterpart to AddDocument, fed from the graph
// store's denormalized embeddings table rather than re-invoking an
// EmbeddingProvider.
func (idx *Index) AddVector(doc Document, vec []float32) {
	idx.vector.add(doc, vec)
}

// Remove drops a document from both channels, used when re-indexing a
// changed or deleted file.
func (idx *Index) Remove(docID string) {
	idx.lexical.remove(docID)
	idx.vector.remove(docID)
}

// Vector returns docID's embedding, if the vector channel holds one.
// Used by the ingestion driver to denormalize a freshly computed
// embedding into the graph store's embeddings table (§4.7), so a
// later process can rebuild this index from storage alone.
func (idx *Index) Vector(docID string) ([]float32, bool) {
	v, ok := idx.vector.vectors[docID]
	return v, ok
}

// ModelName reports the configured provider's name, or "" when no
// provider is wired, for callers persisting per-model embedding rows.
func (idx *Index) ModelName() string {
	if idx.provider == nil {
		return ""
	}
	return idx.provider.Name()
}

// Search runs the configured mode (hybrid if a vector index is populated,
// lexical-only otherwise) and returns the top k fused results along with
// which mode actually served the query.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]ScoredDocument, Mode, error) {
	lexHits := idx.lexical.search(query, 0)
	if idx.provider == nil || len(idx.vector.vectors) == 0 {
		if k > 0 && len(lexHits) > k {
			lexHits = lexHits[:k]
		}
		return lexHits, ModeKeyword, nil
	}

	qVec, err := idx.provider.Embed(ctx, query)
	if err != nil {
		// Provider unavailable at query time: fall back to lexical-only,
		// per §7.
		if k > 0 && len(lexHits) > k {
			lexHits = lexHits[:k]
		}
		return lexHits, ModeKeyword, nil
	}
	vecHits := idx.vector.search(qVec, 0)

	fused := fuse(lexHits, vecHits, idx.hybridWeight)
	if k > 0 && len(fused) > k {
		fused = fused[:k]
	}
	return fused, ModeSemantic, nil
}

// fuse combines lexical and vector hit lists with weighted-score fusion,
// normalizing each channel's scores to [0,1] by its own max so neither
// channel's raw scale dominates, then applies the exact-token-match
// preference rule as the primary sort key (§4.7).
func fuse(lexHits, vecHits []ScoredDocument, hybridWeight float64) []ScoredDocument {
	lexMax := maxScore(lexHits)
	vecMax := maxScore(vecHits)

	type acc struct {
		doc        Document
		score      float64
		exactMatch bool
	}
	byID := map[string]*acc{}
	for _, h := range lexHits {
		norm := 0.0
		if lexMax > 0 {
			norm = h.Score / lexMax
		}
		byID[h.ID] = &acc{doc: h.Document, score: hybridWeight * norm, exactMatch: h.ExactMatch}
	}
	for _, h := range vecHits {
		norm := 0.0
		if vecMax > 0 {
			norm = h.Score / vecMax
		}
		if a, ok := byID[h.ID]; ok {
			a.score += (1 - hybridWeight) * norm
		} else {
			byID[h.ID] = &acc{doc: h.Document, score: (1 - hybridWeight) * norm}
		}
	}

	out := make([]ScoredDocument, 0, len(byID))
	for _, a := range byID {
		out = append(out, ScoredDocument{Document: a.doc, Score: a.score, ExactMatch: a.exactMatch})
	}
	sortScored(out)
	return out
}

func maxScore(hits []ScoredDocument) float64 {
	max := 0.0
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	return max
}

// ExactTokenMatches filters hits down to those whose symbol contains an
// exact token match against query, implementing the standalone half of
// §4.7's preference rule for callers that need just the filter
// (e.g. endpoint resolution, which prefers an exact hit over taking top-k
// regardless of score).
func ExactTokenMatches(query string, hits []ScoredDocument) []ScoredDocument {
	qTokens := map[string]bool{}
	for _, t := range Tokenize(query) {
		qTokens[t] = true
	}
	var out []ScoredDocument
	for _, h := range hits {
		for _, st := range Tokenize(h.Symbol) {
			if qTokens[st] {
				out = append(out, h)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
