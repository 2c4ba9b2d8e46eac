package domain_test

import (
	"testing"
	"time"

	"weekend-guide/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowDoc(id, start, end string) domain.Document {
	return domain.NewDocument(domain.EventRecord{
		ID:       id,
		Title:    "Event " + id,
		StartISO: start,
		EndISO:   end,
	})
}

func TestFilterByWindow_IdentityWhenNoBounds(t *testing.T) {
	docs := []domain.Document{
		windowDoc("e1", "2025-10-04T09:00:00", "2025-10-04T11:00:00"),
		windowDoc("e2", "garbage", "garbage"),
	}

	filtered := domain.FilterByWindow(docs, nil, nil)
	assert.Equal(t, docs, filtered)
}

func TestFilterByWindow_DropsNonOverlapping(t *testing.T) {
	docs := []domain.Document{
		windowDoc("before", "2025-10-03T09:00:00", "2025-10-03T11:00:00"),
		windowDoc("inside", "2025-10-04T10:00:00", "2025-10-04T12:00:00"),
		windowDoc("after", "2025-10-06T09:00:00", "2025-10-06T11:00:00"),
	}
	start := time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)

	filtered := domain.FilterByWindow(docs, &start, &end)
	assert.Equal(t, []string{"inside"}, docIDs(filtered))
}

func TestFilterByWindow_BoundaryOverlapIsInclusive(t *testing.T) {
	// Ends exactly at the window start: not strictly before, so retained.
	docs := []domain.Document{
		windowDoc("touching", "2025-10-03T22:00:00", "2025-10-04T00:00:00"),
	}
	start := time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)

	filtered := domain.FilterByWindow(docs, &start, nil)
	assert.Equal(t, []string{"touching"}, docIDs(filtered))
}

func TestFilterByWindow_FailsOpenOnUnparseableDates(t *testing.T) {
	docs := []domain.Document{
		windowDoc("bad", "not-a-date", "also-not-a-date"),
		windowDoc("missing", "", ""),
		windowDoc("old", "2020-01-01T09:00:00", "2020-01-01T11:00:00"),
	}
	start := time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)

	filtered := domain.FilterByWindow(docs, &start, nil)
	assert.Equal(t, []string{"bad", "missing"}, docIDs(filtered))
}

func TestFilterByWindow_PreservesOrderAndIsIdempotent(t *testing.T) {
	docs := []domain.Document{
		windowDoc("e3", "2025-10-04T18:00:00", "2025-10-04T20:00:00"),
		windowDoc("e1", "2025-10-04T09:00:00", "2025-10-04T11:00:00"),
		windowDoc("e2", "2025-10-05T09:00:00", "2025-10-05T11:00:00"),
	}
	start := time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 4, 23, 59, 59, 0, time.UTC)

	once := domain.FilterByWindow(docs, &start, &end)
	assert.Equal(t, []string{"e3", "e1"}, docIDs(once))

	twice := domain.FilterByWindow(once, &start, &end)
	assert.Equal(t, once, twice)
}

func TestParseEventTime_Layouts(t *testing.T) {
	cases := []struct {
		value any
		want  time.Time
	}{
		{"2025-10-04T09:00:00Z", time.Date(2025, 10, 4, 9, 0, 0, 0, time.UTC)},
		{"2025-10-04T09:00:00", time.Date(2025, 10, 4, 9, 0, 0, 0, time.UTC)},
		{"2025-10-04", time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := domain.ParseEventTime(tc.value)
		require.NoError(t, err)
		assert.True(t, got.Equal(tc.want), "parsing %v", tc.value)
	}
}

func TestParseEventTime_Malformed(t *testing.T) {
	for _, v := range []any{nil, "", 42, "next tuesday"} {
		_, err := domain.ParseEventTime(v)
		assert.ErrorIs(t, err, domain.ErrMalformedTimestamp, "value %v", v)
	}
}
