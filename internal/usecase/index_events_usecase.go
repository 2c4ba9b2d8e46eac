package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"weekend-guide/internal/domain"
)

const (
	embedBatchSize   = 32
	embedConcurrency = 4
)

// IndexEventsUsecase builds the vector index from event records: project to
// documents, embed, and atomically replace the stored index.
type IndexEventsUsecase interface {
	Index(ctx context.Context, events []domain.EventRecord) error
}

type indexEventsUsecase struct {
	repo      domain.EventIndexRepository
	encoder   domain.VectorEncoder
	txManager domain.TransactionManager
	logger    *slog.Logger
}

// NewIndexEventsUsecase wires the index build pipeline.
func NewIndexEventsUsecase(
	repo domain.EventIndexRepository,
	encoder domain.VectorEncoder,
	txManager domain.TransactionManager,
	logger *slog.Logger,
) IndexEventsUsecase {
	return &indexEventsUsecase{
		repo:      repo,
		encoder:   encoder,
		txManager: txManager,
		logger:    logger,
	}
}

func (u *indexEventsUsecase) Index(ctx context.Context, events []domain.EventRecord) error {
	if len(events) == 0 {
		return fmt.Errorf("no events to index")
	}

	docs := domain.NewCorpus(events)
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	u.logger.Info("embedding events for index build",
		"event_count", len(events),
		"model", u.encoder.Version(),
	)
	start := time.Now()

	embeddings := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for lo := 0; lo < len(texts); lo += embedBatchSize {
		lo := lo
		hi := min(lo+embedBatchSize, len(texts))
		g.Go(func() error {
			batch, err := u.encoder.Encode(gctx, texts[lo:hi])
			if err != nil {
				return fmt.Errorf("encode batch at %d: %w", lo, err)
			}
			if len(batch) != hi-lo {
				return fmt.Errorf("encode batch at %d: expected %d embeddings, got %d", lo, hi-lo, len(batch))
			}
			copy(embeddings[lo:hi], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	now := time.Now()
	indexed := make([]domain.IndexedEvent, len(events))
	for i := range events {
		indexed[i] = domain.IndexedEvent{
			ID:        uuid.New(),
			EventID:   events[i].ID,
			Ordinal:   i,
			Content:   docs[i].Content,
			Metadata:  docs[i].Metadata,
			Embedding: pgvector.NewVector(embeddings[i]),
			CreatedAt: now,
		}
	}

	err := u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		return u.repo.ReplaceAll(ctx, indexed)
	})
	if err != nil {
		return fmt.Errorf("replace index: %w", err)
	}

	u.logger.Info("index build complete",
		"event_count", len(events),
		"elapsed", time.Since(start).String(),
	)
	return nil
}
