package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"weekend-guide/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

type stubJobRepo struct {
	mu       sync.Mutex
	jobs     []*domain.IngestJob // consumed FIFO by AcquireNextJob
	err      error
	statuses []string
}

func (s *stubJobRepo) Enqueue(ctx context.Context, job *domain.IngestJob) error { return nil }

func (s *stubJobRepo) AcquireNextJob(ctx context.Context) (*domain.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.jobs) == 0 {
		return nil, nil
	}
	job := s.jobs[0]
	s.jobs = s.jobs[1:]
	return job, nil
}

func (s *stubJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

type stubIndexUsecase struct {
	mu          sync.Mutex
	capturedCtx context.Context
	gotEvents   []domain.EventRecord
	returnErr   error
}

func (s *stubIndexUsecase) Index(ctx context.Context, events []domain.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capturedCtx = ctx
	s.gotEvents = events
	return s.returnErr
}

type stubFetcher struct {
	events []domain.EventRecord
	err    error
}

func (s *stubFetcher) FetchEvents(ctx context.Context) ([]domain.EventRecord, error) {
	return s.events, s.err
}

func makeJob(payload map[string]any) *domain.IngestJob {
	return &domain.IngestJob{
		ID:      uuid.New(),
		JobType: "reindex_events",
		Payload: payload,
		Status:  "processing",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- tests ---

func TestProcessNextJob_SyntheticSource(t *testing.T) {
	uc := &stubIndexUsecase{}
	repo := &stubJobRepo{jobs: []*domain.IngestJob{
		makeJob(map[string]any{"source": "synthetic", "count": float64(10), "seed": float64(7)}),
	}}

	w := NewIngestWorker(repo, uc, nil, testLogger())
	w.processNextJob()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	require.Len(t, uc.gotEvents, 10)
	assert.Equal(t, []string{"completed"}, repo.statuses)

	deadline, ok := uc.capturedCtx.Deadline()
	assert.True(t, ok, "context passed to Index must have a deadline")
	assert.WithinDuration(t, time.Now().Add(jobTimeout), deadline, 5*time.Second)
}

func TestProcessNextJob_AirtableSource(t *testing.T) {
	fetched := domain.SyntheticEvents(3, 1)
	uc := &stubIndexUsecase{}
	repo := &stubJobRepo{jobs: []*domain.IngestJob{
		makeJob(map[string]any{"source": "airtable"}),
	}}

	w := NewIngestWorker(repo, uc, &stubFetcher{events: fetched}, testLogger())
	w.processNextJob()

	uc.mu.Lock()
	defer uc.mu.Unlock()
	assert.Equal(t, fetched, uc.gotEvents)
	assert.Equal(t, []string{"completed"}, repo.statuses)
}

func TestProcessNextJob_AirtableWithoutFetcherFails(t *testing.T) {
	uc := &stubIndexUsecase{}
	repo := &stubJobRepo{jobs: []*domain.IngestJob{
		makeJob(map[string]any{"source": "airtable"}),
	}}

	w := NewIngestWorker(repo, uc, nil, testLogger())
	w.processNextJob()

	assert.Equal(t, []string{"failed"}, repo.statuses)
	assert.Nil(t, uc.gotEvents)
}

func TestProcessNextJob_UnknownJobTypeFails(t *testing.T) {
	repo := &stubJobRepo{jobs: []*domain.IngestJob{
		{ID: uuid.New(), JobType: "mystery", Status: "processing"},
	}}

	w := NewIngestWorker(repo, &stubIndexUsecase{}, nil, testLogger())
	w.processNextJob()

	assert.Equal(t, []string{"failed"}, repo.statuses)
}

func TestIngestWorker_BacksOffOnConsecutiveFailures(t *testing.T) {
	repo := &stubJobRepo{jobs: []*domain.IngestJob{
		makeJob(nil), makeJob(nil), makeJob(nil),
	}}
	uc := &stubIndexUsecase{returnErr: errors.New("embedder unreachable")}

	w := NewIngestWorker(repo, uc, nil, testLogger())

	w.processNextJob()
	assert.Equal(t, initialBackoff, w.backoff)

	w.processNextJob()
	assert.Equal(t, 2*time.Second, w.backoff)

	w.processNextJob()
	assert.Equal(t, 4*time.Second, w.backoff)
}

func TestIngestWorker_BackoffResetsOnSuccess(t *testing.T) {
	repo := &stubJobRepo{jobs: []*domain.IngestJob{makeJob(nil), makeJob(nil)}}
	uc := &stubIndexUsecase{returnErr: errors.New("fail")}

	w := NewIngestWorker(repo, uc, nil, testLogger())

	w.processNextJob()
	assert.Equal(t, initialBackoff, w.backoff)

	uc.mu.Lock()
	uc.returnErr = nil
	uc.mu.Unlock()

	w.processNextJob()
	assert.Equal(t, time.Duration(0), w.backoff, "backoff should reset on success")
}

func TestIngestWorker_BackoffCapsAtMax(t *testing.T) {
	w := NewIngestWorker(nil, nil, nil, testLogger())

	bo := time.Duration(0)
	for i := 0; i < 20; i++ {
		bo = w.nextBackoff(bo)
	}
	assert.Equal(t, maxBackoff, bo, "backoff must cap at maxBackoff")
}

func TestPayloadInt(t *testing.T) {
	payload := map[string]any{"float": float64(12), "int": 7, "string": "nope"}

	assert.Equal(t, 12, payloadInt(payload, "float", 0))
	assert.Equal(t, 7, payloadInt(payload, "int", 0))
	assert.Equal(t, 99, payloadInt(payload, "string", 99))
	assert.Equal(t, 99, payloadInt(payload, "missing", 99))
}
