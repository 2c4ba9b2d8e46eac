package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"weekend-guide/internal/domain"
)

// VectorRetriever embeds the query and ranks indexed events by embedding
// similarity. Any failure on this path is reported as ErrRetrievalBackend so
// the fallback decorator can recover it.
type VectorRetriever struct {
	encoder domain.VectorEncoder
	repo    domain.EventIndexRepository
	logger  *slog.Logger
}

// NewVectorRetriever creates a retriever backed by the vector index.
func NewVectorRetriever(encoder domain.VectorEncoder, repo domain.EventIndexRepository, logger *slog.Logger) *VectorRetriever {
	return &VectorRetriever{
		encoder: encoder,
		repo:    repo,
		logger:  logger,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	embeddings, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", domain.ErrRetrievalBackend, err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", domain.ErrRetrievalBackend, len(embeddings))
	}

	results, err := r.repo.Search(ctx, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %v", domain.ErrRetrievalBackend, err)
	}

	docs := make([]domain.Document, len(results))
	for i, res := range results {
		docs[i] = res.Document
	}
	return docs, nil
}

// FallbackRetriever recovers primary-path failures by retrying the same
// request against the fallback retriever. The failure is scoped to the
// request: the primary stays selected for subsequent requests.
type FallbackRetriever struct {
	primary  domain.Retriever
	fallback domain.Retriever
	logger   *slog.Logger
}

// NewFallbackRetriever wraps primary with a per-request fallback.
func NewFallbackRetriever(primary, fallback domain.Retriever, logger *slog.Logger) *FallbackRetriever {
	return &FallbackRetriever{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FallbackRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Document, error) {
	docs, err := r.primary.Retrieve(ctx, query, k)
	if err == nil {
		return docs, nil
	}
	r.logger.Warn("vector retrieval failed, falling back to keyword retrieval", "error", err)
	return r.fallback.Retrieve(ctx, query, k)
}

var (
	_ domain.Retriever = (*VectorRetriever)(nil)
	_ domain.Retriever = (*FallbackRetriever)(nil)
)
