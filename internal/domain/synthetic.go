package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Boroughs and EventTags are the value pools used by the synthetic event
// generator.
var (
	Boroughs  = []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"}
	EventTags = []string{"architecture", "history", "family-friendly", "guided", "tour", "exhibit", "outdoor"}
)

// syntheticBase is the weekend the sample events are spread across.
var syntheticBase = time.Date(2025, time.October, 4, 9, 0, 0, 0, time.UTC)

// SyntheticEvents generates n sample event records for local development and
// testing. Events start at random offsets within 48 hours of the base weekend
// morning and last two hours. A fixed seed yields a reproducible corpus.
func SyntheticEvents(n int, seed int64) []EventRecord {
	rng := rand.New(rand.NewSource(seed))
	events := make([]EventRecord, 0, n)
	for i := 0; i < n; i++ {
		start := syntheticBase.Add(time.Duration(rng.Intn(49)) * time.Hour)
		end := start.Add(2 * time.Hour)
		events = append(events, EventRecord{
			ID:           fmt.Sprintf("event_%04d", i),
			Title:        fmt.Sprintf("Event %d at %s", i, Boroughs[rng.Intn(len(Boroughs))]),
			Description:  fmt.Sprintf("Synthetic description for event %d. This is a sample event for testing the weekend guide.", i),
			StartISO:     start.Format("2006-01-02T15:04:05"),
			EndISO:       end.Format("2006-01-02T15:04:05"),
			Borough:      Boroughs[rng.Intn(len(Boroughs))],
			Neighborhood: fmt.Sprintf("Neighborhood %d", 1+rng.Intn(20)),
			Address:      fmt.Sprintf("%d Example St", 1+rng.Intn(500)),
			Tags:         sampleTags(rng, 1+rng.Intn(3)),
			KidFriendly:  rng.Intn(2) == 0,
			Accessibility: Accessibility{
				Wheelchair: rng.Intn(2) == 0,
			},
			SignupLink:  fmt.Sprintf("https://guide.example.com/signup/%d", i),
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return events
}

func sampleTags(rng *rand.Rand, k int) []string {
	perm := rng.Perm(len(EventTags))
	if k > len(EventTags) {
		k = len(EventTags)
	}
	tags := make([]string, k)
	for i := 0; i < k; i++ {
		tags[i] = EventTags[perm[i]]
	}
	return tags
}
