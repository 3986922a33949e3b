// Package search implements the hybrid lexical + vector search index and
// embedding cache described in §4.7: tiered relevance (exact match beats
// partial match beats raw score) over an in-memory inverted index plus
// cosine similarity, since the graph's search surface is structured
// symbol/content text rather than free-form notes.
package search

// Document mirrors one indexed node: §4.7's search document
// {id, symbol, file, kind, content, embedding?}.
type Document struct {
	ID      string
	Symbol  string
	File    string
	Kind    string
	Content string
}

// ScoredDocument is one search hit with its fused relevance score.
type ScoredDocument struct {
	Document
	Score      float64
	ExactMatch bool
}
