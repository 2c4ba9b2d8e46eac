package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"weekend-guide/internal/domain"
	"weekend-guide/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) Version() string { return "mock-model" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func respondCorpus() domain.Corpus {
	return domain.NewCorpus([]domain.EventRecord{
		{ID: "e1", Title: "Museum family day", Description: "Hands-on fun at the museum", StartISO: "2025-10-04T10:00:00", EndISO: "2025-10-04T12:00:00", Borough: "Manhattan"},
		{ID: "e2", Title: "Harbor cruise", Description: "Sunset skyline views", StartISO: "2025-10-04T18:00:00", EndISO: "2025-10-04T20:00:00", Borough: "Brooklyn"},
		{ID: "e3", Title: "Garden walk", Description: "Guided outdoor tour", StartISO: "2025-10-05T09:00:00", EndISO: "2025-10-05T11:00:00", Borough: "Bronx"},
		{ID: "e4", Title: "Rooftop tour", Description: "Architecture highlights", StartISO: "2025-10-05T14:00:00", EndISO: "2025-10-05T16:00:00", Borough: "Queens"},
		{ID: "e5", Title: "History exhibit", Description: "City archive treasures", StartISO: "2025-10-04T11:00:00", EndISO: "2025-10-04T13:00:00", Borough: "Manhattan"},
	})
}

func newComposer(t *testing.T) *usecase.PromptComposer {
	t.Helper()
	paths, _ := writeFragments(t)
	composer, err := usecase.NewPromptComposer(paths)
	require.NoError(t, err)
	return composer
}

func TestRespond_NoGenerator_ListsLocalResults(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	uc := usecase.NewRespondUsecase(retriever, newComposer(t), nil, discardLogger())

	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "family fun at the museum"}, "default", usecase.TimeWindow{})
	require.NoError(t, err)

	assert.Contains(t, out.Reply, "Local results (no AI backend active):")
	assert.Contains(t, out.Reply, "1. Museum family day: Hands-on fun at the museum")
	require.NotEmpty(t, out.Context)
	assert.Equal(t, "e1", out.Context[0]["id"])
}

func TestRespond_NoGenerator_EmptyCorpus(t *testing.T) {
	retriever := domain.NewKeywordRetriever(nil)
	uc := usecase.NewRespondUsecase(retriever, newComposer(t), nil, discardLogger())

	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "anything"}, "default", usecase.TimeWindow{})
	require.NoError(t, err)

	assert.Equal(t, "I couldn't find any matching events. Try a broader search or remove time filters.", out.Reply)
	assert.Empty(t, out.Context)
}

func TestRespond_GeneratorSuccess_ReplyVerbatim(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, 400).
		Return("Try the Museum family day on Saturday morning.", nil)

	uc := usecase.NewRespondUsecase(retriever, newComposer(t), gen, discardLogger())

	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "museum"}, "default", usecase.TimeWindow{})
	require.NoError(t, err)
	assert.Equal(t, "Try the Museum family day on Saturday morning.", out.Reply)
	gen.AssertExpectations(t)
}

func TestRespond_GeneratorFailure_TemplatedTopThree(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, 400).
		Return("", &domain.GenerationError{Err: errors.New("quota exceeded")})

	uc := usecase.NewRespondUsecase(retriever, newComposer(t), gen, discardLogger())

	// Zero-score query: fallback is built from the first five corpus docs,
	// listing the top three.
	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "zzzz"}, "default", usecase.TimeWindow{})
	require.NoError(t, err)

	assert.Equal(t,
		"Here are some events I found:\n"+
			"1. Museum family day: Hands-on fun at the museum\n"+
			"2. Harbor cruise: Sunset skyline views\n"+
			"3. Garden walk: Guided outdoor tour",
		out.Reply,
	)
	assert.Len(t, out.Context, 5)
}

func TestRespond_GeneratorEmptyOutputTreatedAsFailure(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, 400).Return("   ", nil)

	uc := usecase.NewRespondUsecase(retriever, newComposer(t), gen, discardLogger())

	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "museum"}, "default", usecase.TimeWindow{})
	require.NoError(t, err)
	assert.Contains(t, out.Reply, "Here are some events I found:")
}

func TestRespond_UnknownStyleDoesNotError(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, 400).Return("ok", nil)

	uc := usecase.NewRespondUsecase(retriever, newComposer(t), gen, discardLogger())

	out, err := uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "museum"}, "unknownstyle", usecase.TimeWindow{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Reply)
}

func TestRespond_ConfigurationErrorSurfaces(t *testing.T) {
	paths, _ := writeFragments(t)
	paths.Base = paths.Base + ".missing"
	composer, err := usecase.NewPromptComposer(paths)
	require.NoError(t, err)

	retriever := domain.NewKeywordRetriever(respondCorpus())
	gen := new(mockGenerator)
	uc := usecase.NewRespondUsecase(retriever, composer, gen, discardLogger())

	_, err = uc.Respond(context.Background(), usecase.Query{SessionID: "s1", Message: "museum"}, "default", usecase.TimeWindow{})
	var confErr *domain.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_TimeWindowNarrowsContext(t *testing.T) {
	retriever := domain.NewKeywordRetriever(respondCorpus())
	uc := usecase.NewRespondUsecase(retriever, newComposer(t), nil, discardLogger())

	saturday := "2025-10-04"
	start, err := domain.ParseEventTime(saturday + "T00:00:00")
	require.NoError(t, err)
	end, err := domain.ParseEventTime(saturday + "T23:59:59")
	require.NoError(t, err)

	out, err := uc.Respond(
		context.Background(),
		usecase.Query{SessionID: "s1", Message: "zzzz"},
		"default",
		usecase.TimeWindow{Start: &start, End: &end},
	)
	require.NoError(t, err)

	// Sunday events e3 and e4 fall outside the window.
	ids := make([]string, len(out.Context))
	for i, c := range out.Context {
		ids[i] = c["id"].(string)
	}
	assert.Equal(t, []string{"e1", "e2", "e5"}, ids)
}
