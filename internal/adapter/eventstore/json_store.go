// Package eventstore reads and writes event record files: the JSON corpus
// source produced by the ingest CLI and consumed at server startup when no
// vector index is available.
package eventstore

import (
	"encoding/json"
	"fmt"
	"os"

	"weekend-guide/internal/domain"
)

// LoadEvents reads event records from a JSON file.
func LoadEvents(path string) ([]domain.EventRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	var events []domain.EventRecord
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", path, err)
	}
	return events, nil
}

// SaveEvents writes event records as indented JSON.
func SaveEvents(path string, events []domain.EventRecord) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write events file: %w", err)
	}
	return nil
}

// LoadCorpus loads events from a JSON file and projects them into a document
// corpus in file order.
func LoadCorpus(path string) (domain.Corpus, error) {
	events, err := LoadEvents(path)
	if err != nil {
		return nil, err
	}
	return domain.NewCorpus(events), nil
}
