package domain

import (
	"context"
	"sort"
	"strings"
)

// DefaultTopK is the retrieval depth used when the caller passes k <= 0.
const DefaultTopK = 5

// Retriever returns the top-k most relevant documents for a query, most
// relevant first. Results are always a subsequence of the corpus.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Document, error)
}

// KeywordRetriever ranks documents by lexical overlap with the query. It is
// fully deterministic and needs no external backend, so it serves both as the
// default retriever when no vector index exists and as the per-request
// fallback for the vector path.
type KeywordRetriever struct {
	corpus Corpus
}

// NewKeywordRetriever creates a keyword retriever over the given corpus.
func NewKeywordRetriever(corpus Corpus) *KeywordRetriever {
	return &KeywordRetriever{corpus: corpus}
}

// Retrieve scores each document by the number of distinct query tokens that
// occur as substrings of its lower-cased content. Documents are ordered by
// score descending, ties broken by corpus order. When no token matches
// anything, the first k corpus documents are returned instead of an empty
// result.
func (r *KeywordRetriever) Retrieve(_ context.Context, query string, k int) ([]Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	tokens := queryTokens(query)

	type scoredDoc struct {
		score int
		doc   Document
	}
	scored := make([]scoredDoc, len(r.corpus))
	for i, d := range r.corpus {
		text := strings.ToLower(d.Content)
		score := 0
		for t := range tokens {
			if strings.Contains(text, t) {
				score++
			}
		}
		scored[i] = scoredDoc{score: score, doc: d}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	results := make([]Document, 0, k)
	for _, s := range scored {
		if s.score == 0 || len(results) == k {
			break
		}
		results = append(results, s.doc)
	}
	if len(results) > 0 {
		return results, nil
	}

	// Nothing matched: show something rather than nothing.
	for i := 0; i < len(r.corpus) && i < k; i++ {
		results = append(results, r.corpus[i])
	}
	return results, nil
}

// queryTokens lower-cases the whitespace-separated query tokens and discards
// those of length <= 2.
func queryTokens(query string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(query) {
		t = strings.ToLower(t)
		if len(t) > 2 {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

var _ Retriever = (*KeywordRetriever)(nil)
