// Package index builds a sparse term-weight model over one tenant's corpus
// and scores normalized queries against it. The index is derived state: it is
// rebuilt from scratch after every content-changing corpus mutation and is
// never persisted.
package index

import (
	"math"
	"sort"
)

// Match pairs a document's corpus position with its cosine similarity.
type Match struct {
	Position   int
	Similarity float64
}

// Index is a TF-IDF term-weight matrix over one tenant's documents plus the
// vocabulary mapping term -> column. Rows address documents by their corpus
// position at build time; the index is valid only for the exact document
// sequence it was built from.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	rows       [][]float64
}

// Build fits a TF-IDF model over the token sequences of a corpus, one entry
// per document in corpus order. Term frequency is count/len(tokens), IDF is
// the smoothed log((1+N)/(1+df))+1, and each document vector is L2-normalized.
func Build(documents [][]string) *Index {
	df := make(map[string]int)
	for _, tokens := range documents {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable column ordering keeps builds reproducible
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	ix := &Index{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		rows:       make([][]float64, len(documents)),
	}

	n := float64(len(documents))
	for col, term := range terms {
		ix.vocabulary[term] = col
		ix.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for pos, tokens := range documents {
		ix.rows[pos] = ix.vectorize(tokens)
	}

	return ix
}

// Score ranks documents by cosine similarity against the query tokens and
// returns the top topN matches (topN <= 0 means 1). Query terms outside the
// trained vocabulary contribute zero weight; documents with exactly zero
// similarity are excluded, so the result is empty when nothing overlaps.
// Ties break toward the lower corpus position for determinism.
func (ix *Index) Score(queryTokens []string, topN int) []Match {
	if topN <= 0 {
		topN = 1
	}
	if len(ix.rows) == 0 {
		return nil
	}

	query := ix.vectorize(queryTokens)
	if query == nil {
		return nil
	}

	matches := make([]Match, 0, len(ix.rows))
	for pos, row := range ix.rows {
		sim := dot(query, row)
		if sim > 0 {
			matches = append(matches, Match{Position: pos, Similarity: sim})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Position < matches[j].Position
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// DocumentCount reports the number of rows the index was built over.
func (ix *Index) DocumentCount() int {
	return len(ix.rows)
}

// vectorize projects a token sequence into the trained vocabulary space and
// L2-normalizes the result. Returns nil when no token is in vocabulary.
func (ix *Index) vectorize(tokens []string) []float64 {
	counts := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if col, ok := ix.vocabulary[tok]; ok {
			counts[col]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	vec := make([]float64, len(ix.idf))
	for col, count := range counts {
		tf := float64(count) / float64(total)
		vec[col] = tf * ix.idf[col]
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func dot(a, b []float64) float64 {
	if b == nil {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
