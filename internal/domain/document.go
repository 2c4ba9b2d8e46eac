package domain

// Accessibility carries the accessibility flags of an event venue.
type Accessibility struct {
	Wheelchair bool `json:"wheelchair"`
}

// EventRecord is a raw event as produced by ingestion, either the synthetic
// generator or the Airtable fetch.
type EventRecord struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	StartISO      string        `json:"start_iso"`
	EndISO        string        `json:"end_iso"`
	Borough       string        `json:"borough"`
	Neighborhood  string        `json:"neighborhood"`
	Address       string        `json:"address"`
	Tags          []string      `json:"tags"`
	KidFriendly   bool          `json:"kid_friendly"`
	Accessibility Accessibility `json:"accessibility"`
	SignupLink    string        `json:"signup_link"`
	LastUpdated   string        `json:"last_updated,omitempty"`
}

// Document is the retrievable unit: display text plus the metadata projection
// served back to clients. Documents are created once at load time and never
// mutated. Identity is the "id" metadata field; the corpus does not enforce
// uniqueness.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Corpus is the ordered, in-memory set of documents. Built once per process
// lifetime and read-only at serving time.
type Corpus []Document

// NewDocument projects an event record into a Document. Empty timestamps
// become nil metadata values.
func NewDocument(e EventRecord) Document {
	return Document{
		Content: e.Title + ": " + e.Description,
		Metadata: map[string]any{
			"id":      e.ID,
			"start":   nilIfEmpty(e.StartISO),
			"end":     nilIfEmpty(e.EndISO),
			"borough": e.Borough,
		},
	}
}

// NewCorpus projects a sequence of event records into a corpus, preserving
// record order.
func NewCorpus(events []EventRecord) Corpus {
	corpus := make(Corpus, len(events))
	for i, e := range events {
		corpus[i] = NewDocument(e)
	}
	return corpus
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
