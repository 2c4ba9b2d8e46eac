package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weekend-guide/internal/domain"
)

const (
	respondTopK        = 5
	fallbackDocCount   = 3
	generatorMaxTokens = 400

	generatorFallbackPreamble = "Here are some events I found:"
	noBackendPreamble         = "Local results (no AI backend active):"
	noMatchesReply            = "I couldn't find any matching events. Try a broader search or remove time filters."
)

// Query carries the per-request identity and message. The session id is used
// only for log attribution; every request is stateless.
type Query struct {
	SessionID string
	Message   string
}

// TimeWindow optionally narrows results to events overlapping [Start, End].
// Zero-value means no narrowing.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// RespondOutput is the reply plus the metadata of the documents it was built
// from, in retrieval order.
type RespondOutput struct {
	Reply   string
	Context []map[string]any
}

// RespondUsecase runs the full pipeline: retrieve, filter, compose, generate.
// Retrieval and generation failures degrade to deterministic replies; only a
// prompt configuration error is returned to the caller.
type RespondUsecase interface {
	Respond(ctx context.Context, query Query, style string, window TimeWindow) (*RespondOutput, error)
}

type respondUsecase struct {
	retriever domain.Retriever
	composer  *PromptComposer
	generator domain.TextGenerator // nil when no generation backend is configured
	logger    *slog.Logger
}

// NewRespondUsecase wires the response pipeline. Pass a nil generator to run
// in deterministic local-results mode.
func NewRespondUsecase(retriever domain.Retriever, composer *PromptComposer, generator domain.TextGenerator, logger *slog.Logger) RespondUsecase {
	return &respondUsecase{
		retriever: retriever,
		composer:  composer,
		generator: generator,
		logger:    logger,
	}
}

func (u *respondUsecase) Respond(ctx context.Context, query Query, style string, window TimeWindow) (*RespondOutput, error) {
	docs, err := u.retriever.Retrieve(ctx, query.Message, respondTopK)
	if err != nil {
		// The fallback decorator absorbs vector failures and the keyword
		// path cannot fail, so this branch only fires on a miswired
		// retriever. Degrade to an empty result rather than a server error.
		u.logger.Warn("retrieval failed", "session_id", query.SessionID, "error", err)
		docs = nil
	}

	docs = domain.FilterByWindow(docs, window.Start, window.End)

	contexts := make([]map[string]any, len(docs))
	for i, d := range docs {
		contexts[i] = d.Metadata
	}

	if u.generator == nil {
		return &RespondOutput{Reply: localReply(docs), Context: contexts}, nil
	}

	snippets := make([]string, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, d.Content)
	}

	systemPrompt, userPrompt, err := u.composer.Compose(style, query.Message, snippets)
	if err != nil {
		return nil, err
	}

	reply, err := u.generator.Generate(ctx, systemPrompt, userPrompt, generatorMaxTokens)
	if err != nil || strings.TrimSpace(reply) == "" {
		u.logger.Warn("generation failed, using templated fallback",
			"session_id", query.SessionID,
			"model", u.generator.Version(),
			"error", err,
		)
		return &RespondOutput{Reply: generatorFallback(docs), Context: contexts}, nil
	}

	return &RespondOutput{Reply: reply, Context: contexts}, nil
}

// localReply is the deterministic reply used when no generation backend is
// configured.
func localReply(docs []domain.Document) string {
	if len(docs) == 0 {
		return noMatchesReply
	}
	return noBackendPreamble + "\n" + numberedList(docs, respondTopK)
}

// generatorFallback is the templated reply used when the generator fails.
func generatorFallback(docs []domain.Document) string {
	return generatorFallbackPreamble + "\n" + numberedList(docs, fallbackDocCount)
}

func numberedList(docs []domain.Document, limit int) string {
	if len(docs) > limit {
		docs = docs[:limit]
	}
	lines := make([]string, len(docs))
	for i, d := range docs {
		lines[i] = fmt.Sprintf("%d. %s", i+1, d.Content)
	}
	return strings.Join(lines, "\n")
}
