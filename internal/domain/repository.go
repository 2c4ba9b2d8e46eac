package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// IndexedEvent is a persisted corpus entry with its embedding. Ordinal
// preserves ingestion order so the corpus can be reconstructed from the index
// in its original sequence.
type IndexedEvent struct {
	ID        uuid.UUID
	EventID   string
	Ordinal   int
	Content   string
	Metadata  map[string]any
	Embedding pgvector.Vector
	CreatedAt time.Time
}

// EventSearchResult is a document found via vector search with its similarity
// score.
type EventSearchResult struct {
	Document Document
	Score    float32
}

// EventIndexRepository stores and searches event embeddings.
type EventIndexRepository interface {
	// ReplaceAll atomically swaps the index contents for the given events.
	ReplaceAll(ctx context.Context, events []IndexedEvent) error

	// LoadDocuments reconstructs the document corpus in ingestion order.
	LoadDocuments(ctx context.Context) ([]Document, error)

	// Search returns the closest documents to the query vector, best first.
	Search(ctx context.Context, queryVector []float32, limit int) ([]EventSearchResult, error)

	// Count reports the number of indexed events.
	Count(ctx context.Context) (int, error)
}

// IngestJob is a queued background ingestion task.
type IngestJob struct {
	ID           uuid.UUID
	JobType      string
	Payload      map[string]any
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventJobRepository queues and tracks ingestion jobs.
type EventJobRepository interface {
	Enqueue(ctx context.Context, job *IngestJob) error

	// AcquireNextJob atomically claims the oldest queued job, marking it
	// processing. Returns nil, nil when the queue is empty.
	AcquireNextJob(ctx context.Context) (*IngestJob, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
