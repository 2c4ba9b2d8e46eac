package domain

import (
	"fmt"
	"time"
)

// timestampLayouts accepted in event metadata and query parameters. The
// ingest paths emit bare ISO-8601 timestamps without a zone, Airtable emits
// RFC3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEventTime parses a metadata timestamp value. Returns
// ErrMalformedTimestamp when the value is absent, not a string, or matches no
// known layout.
func ParseEventTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("%w: missing value", ErrMalformedTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// FilterByWindow narrows docs to events overlapping the inclusive
// [start, end] interval. Identity when both bounds are nil. Documents whose
// metadata timestamps do not parse are retained (fail open), never silently
// dropped. Order is preserved and the filter never adds documents, so it is
// idempotent.
func FilterByWindow(docs []Document, start, end *time.Time) []Document {
	if start == nil && end == nil {
		return docs
	}
	filtered := make([]Document, 0, len(docs))
	for _, d := range docs {
		docStart, startErr := ParseEventTime(d.Metadata["start"])
		docEnd, endErr := ParseEventTime(d.Metadata["end"])
		if startErr != nil || endErr != nil {
			filtered = append(filtered, d)
			continue
		}
		if start != nil && docEnd.Before(*start) {
			continue
		}
		if end != nil && docStart.After(*end) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}
