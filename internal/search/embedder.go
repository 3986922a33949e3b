package search

import (
	"context"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// EmbeddingProvider maps text to a fixed-dimensionality vector, per the
// spec's EmbeddingProvider boundary (§1, §4.7). Real embedding providers
// are deliberately out of scope for this repository: the retrieval pack
// contains no ecosystem ML/embedding client (see SPEC_FULL.md Open
// Question #2), so the only built-in implementation is HashingEmbedder.
type EmbeddingProvider interface {
	Name() string
	Dim() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ModelPreset names a built-in EmbeddingProvider configuration.
type ModelPreset struct {
	Name string
	Dim  int
}

// LocalHash384 is the sole built-in embedding preset.
var LocalHash384 = ModelPreset{Name: "local-hash-384", Dim: 384}

// NewEmbeddingProvider resolves a preset name to a provider. Unknown names
// fall back to LocalHash384, since the system must always have a usable
// embedding path (§7's "provider unavailable" case only applies to
// injected external providers, never the built-in default).
func NewEmbeddingProvider(modelName string) EmbeddingProvider {
	switch modelName {
	case LocalHash384.Name, "":
		return NewHashingEmbedder(LocalHash384)
	default:
		return NewHashingEmbedder(LocalHash384)
	}
}

// HashingEmbedder is a deterministic feature-hashing embedder: every
// token's xxh3 hash is folded into one of Dim buckets, sign-weighted by a
// second hash bit, then the vector is L2-normalized. It is not a semantic
// embedding model, but it is deterministic, dependency-light, and gives
// the hybrid search layer a genuine vector channel to fuse against the
// lexical channel, which is the structural property the rest of the
// system (cache, fusion, cosine ranking) depends on.
type HashingEmbedder struct {
	preset ModelPreset
}

func NewHashingEmbedder(preset ModelPreset) *HashingEmbedder {
	return &HashingEmbedder{preset: preset}
}

func (h *HashingEmbedder) Name() string { return h.preset.Name }
func (h *HashingEmbedder) Dim() int     { return h.preset.Dim }

func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("embed: %w", ctx.Err())
	default:
	}

	dim := h.preset.Dim
	vec := make([]float32, dim)
	for _, tok := range Tokenize(text) {
		hash := xxh3.HashString(tok)
		bucket := int(hash % uint64(dim))
		sign := float32(1)
		if (hash>>63)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var norm float64
	for _, f := range vec {
		norm += float64(f) * float64(f)
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}
