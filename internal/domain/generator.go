package domain

import "context"

// TextGenerator produces a reply from a composed prompt pair. Implementations
// must bound the call with a timeout and make a single attempt; a timeout is
// treated like any other failure.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	Version() string
}

// VectorEncoder generates embeddings for a batch of texts, one vector per
// input, in input order.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
