package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weekend-guide/internal/domain"
)

type eventJobRepository struct {
	db *pgxpool.Pool
}

// NewEventJobRepository creates the Postgres-backed ingestion job queue.
func NewEventJobRepository(db *pgxpool.Pool) domain.EventJobRepository {
	return &eventJobRepository{db: db}
}

func (r *eventJobRepository) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	query := `
		INSERT INTO event_jobs (id, job_type, payload, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	payloadBytes, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		job.ID,
		job.JobType,
		payloadBytes,
		job.Status,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (r *eventJobRepository) AcquireNextJob(ctx context.Context) (*domain.IngestJob, error) {
	// Claim the oldest queued job and flip it to processing in one statement
	// so concurrent workers never pick up the same job.
	query := `
		WITH next_job AS (
			SELECT id
			FROM event_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE event_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE event_jobs.id = next_job.id
		RETURNING event_jobs.id, event_jobs.job_type, event_jobs.payload, event_jobs.status,
			event_jobs.error_message, event_jobs.created_at, event_jobs.updated_at
	`

	var job domain.IngestJob
	var payloadBytes []byte

	err := r.db.QueryRow(ctx, query, time.Now()).Scan(
		&job.ID,
		&job.JobType,
		&payloadBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire next job: %w", err)
	}

	if err := json.Unmarshal(payloadBytes, &job.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &job, nil
}

func (r *eventJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	query := `
		UPDATE event_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, status, errorMessage, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}
