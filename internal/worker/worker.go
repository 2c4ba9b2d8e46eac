package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"weekend-guide/internal/domain"
	"weekend-guide/internal/usecase"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	jobTimeout          = 120 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute

	defaultSyntheticCount = 200
	defaultSyntheticSeed  = 42
)

// EventFetcher pulls event records from an external source.
type EventFetcher interface {
	FetchEvents(ctx context.Context) ([]domain.EventRecord, error)
}

// IngestWorker polls the job queue and rebuilds the vector index.
type IngestWorker struct {
	jobRepo      domain.EventJobRepository
	indexUsecase usecase.IndexEventsUsecase
	fetcher      EventFetcher // nil when no external event source is configured
	logger       *slog.Logger
	stopChan     chan struct{}
	backoff      time.Duration
}

func NewIngestWorker(
	jobRepo domain.EventJobRepository,
	indexUsecase usecase.IndexEventsUsecase,
	fetcher EventFetcher,
	logger *slog.Logger,
) *IngestWorker {
	return &IngestWorker{
		jobRepo:      jobRepo,
		indexUsecase: indexUsecase,
		fetcher:      fetcher,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

func (w *IngestWorker) Start() {
	w.logger.Info("Starting IngestWorker")
	go w.run()
}

func (w *IngestWorker) Stop() {
	w.logger.Info("Stopping IngestWorker")
	close(w.stopChan)
}

func (w *IngestWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *IngestWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("Failed to acquire next job", "error", err)
		return
	}
	if job == nil {
		return // No jobs
	}

	w.logger.Info("Processing job", "job_id", job.ID, "type", job.JobType)

	var processErr error

	switch job.JobType {
	case "reindex_events":
		processErr = w.processReindexEvents(ctx, job)
	default:
		processErr = fmt.Errorf("unknown job type: %s", job.JobType)
	}

	status := "completed"
	var errMsg *string
	if processErr != nil {
		status = "failed"
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("Worker backing off", "job_id", job.ID, "backoff", w.backoff, "error", processErr)
	} else {
		w.backoff = 0
		w.logger.Info("Job completed", "job_id", job.ID)
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, status, errMsg); err != nil {
		w.logger.Error("Failed to update job status", "job_id", job.ID, "error", err)
	}
}

func (w *IngestWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (w *IngestWorker) processReindexEvents(ctx context.Context, job *domain.IngestJob) error {
	source, _ := job.Payload["source"].(string)
	if source == "" {
		source = "synthetic"
	}

	var events []domain.EventRecord
	switch source {
	case "synthetic":
		count := payloadInt(job.Payload, "count", defaultSyntheticCount)
		seed := payloadInt(job.Payload, "seed", defaultSyntheticSeed)
		events = domain.SyntheticEvents(count, int64(seed))
	case "airtable":
		if w.fetcher == nil {
			return fmt.Errorf("airtable source requested but no fetcher configured")
		}
		fetched, err := w.fetcher.FetchEvents(ctx)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		events = fetched
	default:
		return fmt.Errorf("unknown event source: %s", source)
	}

	return w.indexUsecase.Index(ctx, events)
}

// payloadInt reads an integer payload field. Values round-trip through jsonb
// as float64, so both representations are accepted.
func payloadInt(payload map[string]any, key string, fallback int) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
