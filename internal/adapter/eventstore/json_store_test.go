package eventstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"weekend-guide/internal/adapter/eventstore"
	"weekend-guide/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	events := domain.SyntheticEvents(5, 3)

	require.NoError(t, eventstore.SaveEvents(path, events))

	loaded, err := eventstore.LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, loaded, 5)
	assert.Equal(t, events[0].ID, loaded[0].ID)
	assert.Equal(t, events[0].Tags, loaded[0].Tags)
	assert.Equal(t, events[0].Accessibility, loaded[0].Accessibility)
}

func TestLoadCorpus_ProjectsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	events := []domain.EventRecord{
		{ID: "e1", Title: "Rooftop tour", Description: "Architecture walk", Borough: "Manhattan", StartISO: "2025-10-04T09:00:00"},
		{ID: "e2", Title: "Museum day", Description: "Exhibits", Borough: "Brooklyn"},
	}
	require.NoError(t, eventstore.SaveEvents(path, events))

	corpus, err := eventstore.LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, "Rooftop tour: Architecture walk", corpus[0].Content)
	assert.Equal(t, "e1", corpus[0].Metadata["id"])
	assert.Nil(t, corpus[1].Metadata["start"])
}

func TestLoadEvents_MissingFile(t *testing.T) {
	_, err := eventstore.LoadEvents(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadEvents_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := eventstore.LoadEvents(path)
	require.Error(t, err)
}
