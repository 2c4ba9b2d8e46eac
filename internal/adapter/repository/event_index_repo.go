package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"weekend-guide/internal/domain"
)

type eventIndexRepository struct {
	pool *pgxpool.Pool
}

// NewEventIndexRepository creates the pgvector-backed event index repository.
func NewEventIndexRepository(pool *pgxpool.Pool) domain.EventIndexRepository {
	return &eventIndexRepository{pool: pool}
}

type dbExecutor interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *eventIndexRepository) getExecutor(ctx context.Context) dbExecutor {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *eventIndexRepository) ReplaceAll(ctx context.Context, events []domain.IndexedEvent) error {
	exec := r.getExecutor(ctx)

	if _, err := exec.Exec(ctx, "DELETE FROM event_index"); err != nil {
		return fmt.Errorf("failed to clear event index: %w", err)
	}

	rows := make([][]interface{}, len(events))
	for i, e := range events {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", e.EventID, err)
		}
		rows[i] = []interface{}{
			e.ID,
			e.EventID,
			e.Ordinal,
			e.Content,
			metadata,
			e.Embedding,
			e.CreatedAt,
		}
	}

	_, err := exec.CopyFrom(
		ctx,
		pgx.Identifier{"event_index"},
		[]string{"id", "event_id", "ordinal", "content", "metadata", "embedding", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert events: %w", err)
	}

	return nil
}

func (r *eventIndexRepository) LoadDocuments(ctx context.Context) ([]domain.Document, error) {
	query := `
		SELECT content, metadata
		FROM event_index
		ORDER BY ordinal ASC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query event index: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.Content, &d.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan indexed event: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return docs, nil
}

func (r *eventIndexRepository) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.EventSearchResult, error) {
	query := `
		SELECT content, metadata, 1 - (embedding <=> $1) AS score
		FROM event_index
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search event index: %w", err)
	}
	defer rows.Close()

	var results []domain.EventSearchResult
	for rows.Next() {
		var res domain.EventSearchResult
		if err := rows.Scan(&res.Document.Content, &res.Document.Metadata, &res.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *eventIndexRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.getExecutor(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM event_index").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed events: %w", err)
	}
	return count, nil
}
