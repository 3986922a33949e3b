package search

import (
	"math"
	"sort"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// lexicalIndex is a BM25-like inverted index over tokenized symbol+content
// text (§4.7's "Lexical" mode).
type lexicalIndex struct {
	docs       map[string]Document
	tokens     map[string][]string   // docID -> token list, for length + exact-match checks
	postings   map[string]map[string]int // token -> docID -> term frequency
	docLen     map[string]int
	avgDocLen  float64
	totalDocs  int
}

func newLexicalIndex() *lexicalIndex {
	return &lexicalIndex{
		docs:     map[string]Document{},
		tokens:   map[string][]string{},
		postings: map[string]map[string]int{},
		docLen:   map[string]int{},
	}
}

func (idx *lexicalIndex) add(doc Document) {
	toks := Tokenize(doc.Symbol + " " + doc.Content)
	idx.docs[doc.ID] = doc
	idx.tokens[doc.ID] = toks
	idx.docLen[doc.ID] = len(toks)

	freq := map[string]int{}
	for _, t := range toks {
		freq[t]++
	}
	for t, f := range freq {
		bucket, ok := idx.postings[t]
		if !ok {
			bucket = map[string]int{}
			idx.postings[t] = bucket
		}
		bucket[doc.ID] = f
	}
	idx.recomputeAvgLen()
}

func (idx *lexicalIndex) remove(docID string) {
	delete(idx.docs, docID)
	delete(idx.docLen, docID)
	seen := map[string]bool{}
	for _, t := range idx.tokens[docID] {
		if seen[t] {
			continue
		}
		seen[t] = true
		if bucket, ok := idx.postings[t]; ok {
			delete(bucket, docID)
			if len(bucket) == 0 {
				delete(idx.postings, t)
			}
		}
	}
	delete(idx.tokens, docID)
	idx.recomputeAvgLen()
}

func (idx *lexicalIndex) recomputeAvgLen() {
	idx.totalDocs = len(idx.docs)
	if idx.totalDocs == 0 {
		idx.avgDocLen = 0
		return
	}
	sum := 0
	for _, l := range idx.docLen {
		sum += l
	}
	idx.avgDocLen = float64(sum) / float64(idx.totalDocs)
}

// search scores every document containing at least one query token and
// returns the top k by BM25 score, annotating exact symbol-token matches
// per §4.7's preference rule.
func (idx *lexicalIndex) search(query string, k int) []ScoredDocument {
	qTokens := Tokenize(query)
	if len(qTokens) == 0 || idx.totalDocs == 0 {
		return nil
	}

	scores := map[string]float64{}
	for _, qt := range qTokens {
		bucket, ok := idx.postings[qt]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(idx.totalDocs)-float64(len(bucket))+0.5)/(float64(len(bucket))+0.5))
		for docID, tf := range bucket {
			dl := float64(idx.docLen[docID])
			denom := float64(tf) + bm25K1*(1-bm25B+bm25B*dl/maxFloat(idx.avgDocLen, 1))
			scores[docID] += idf * (float64(tf) * (bm25K1 + 1)) / denom
		}
	}

	exactSymbols := map[string]bool{}
	for docID, doc := range idx.docs {
		symTokens := Tokenize(doc.Symbol)
		for _, qt := range qTokens {
			for _, st := range symTokens {
				if st == qt {
					exactSymbols[docID] = true
				}
			}
		}
	}

	out := make([]ScoredDocument, 0, len(scores))
	for docID, score := range scores {
		out = append(out, ScoredDocument{
			Document:   idx.docs[docID],
			Score:      score,
			ExactMatch: exactSymbols[docID],
		})
	}
	sortScored(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// sortScored orders by the preference rule: exact symbol-token matches
// first, then descending score, then id for determinism.
func sortScored(docs []ScoredDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].ExactMatch != docs[j].ExactMatch {
			return docs[i].ExactMatch
		}
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
}
