package di

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"weekend-guide/internal/adapter/airtable"
	"weekend-guide/internal/adapter/eventstore"
	"weekend-guide/internal/adapter/openai"
	"weekend-guide/internal/adapter/repository"
	"weekend-guide/internal/domain"
	"weekend-guide/internal/infra/config"
	"weekend-guide/internal/infra/httpclient"
	"weekend-guide/internal/usecase"
	"weekend-guide/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// JobRepo is nil when the vector index pipeline is unavailable; the
	// reindex endpoint reports 503 in that case.
	JobRepo domain.EventJobRepository

	RespondUsecase usecase.RespondUsecase
	IndexUsecase   usecase.IndexEventsUsecase

	// Worker is nil when the vector index pipeline is unavailable.
	Worker *worker.IngestWorker
}

// NewApplicationComponents wires all dependencies from config and an optional
// database pool. With a nil pool the service runs keyword-only against the
// JSON corpus file; with no API key it skips generation and embedding.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	var indexRepo domain.EventIndexRepository
	if pool != nil {
		indexRepo = repository.NewEventIndexRepository(pool)
	}

	corpus := loadCorpus(ctx, cfg, indexRepo, log)
	keyword := domain.NewKeywordRetriever(corpus)

	openaiHTTP := httpclient.NewPooledClient(cfg.OpenAI.Timeout)

	var generator domain.TextGenerator
	var encoder domain.VectorEncoder
	if cfg.OpenAI.APIKey != "" {
		generator = openai.NewChatClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, openaiHTTP)
		encoder = openai.NewEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, openaiHTTP)
	} else {
		log.Warn("no OpenAI API key configured, running in local-results mode")
	}

	var retriever domain.Retriever = keyword
	if indexRepo != nil && encoder != nil {
		vector := usecase.NewVectorRetriever(encoder, indexRepo, log)
		retriever = usecase.NewFallbackRetriever(vector, keyword, log)
	}

	composer, err := usecase.NewPromptComposer(promptPaths(cfg.Prompts))
	if err != nil {
		return nil, err
	}

	components := &ApplicationComponents{
		RespondUsecase: usecase.NewRespondUsecase(retriever, composer, generator, log),
	}

	// The ingestion pipeline needs both the index and an embedding backend.
	if indexRepo != nil && encoder != nil {
		txManager := repository.NewPostgresTransactionManager(pool)
		components.JobRepo = repository.NewEventJobRepository(pool)
		components.IndexUsecase = usecase.NewIndexEventsUsecase(indexRepo, encoder, txManager, log)

		var fetcher worker.EventFetcher
		if cfg.Airtable.APIKey != "" && cfg.Airtable.BaseID != "" {
			airtableHTTP := httpclient.NewPooledClient(cfg.OpenAI.Timeout)
			fetcher = airtable.NewClient(cfg.Airtable.BaseURL, cfg.Airtable.APIKey, cfg.Airtable.BaseID, cfg.Airtable.Table, airtableHTTP)
		}
		components.Worker = worker.NewIngestWorker(components.JobRepo, components.IndexUsecase, fetcher, log)
	}

	return components, nil
}

// loadCorpus prefers the persisted index when it has content, otherwise the
// JSON corpus file. An unreadable file degrades to an empty corpus so the
// server still starts.
func loadCorpus(ctx context.Context, cfg *config.Config, indexRepo domain.EventIndexRepository, log *slog.Logger) domain.Corpus {
	if indexRepo != nil {
		count, err := indexRepo.Count(ctx)
		if err != nil {
			log.Warn("failed to count indexed events", "error", err)
		} else if count > 0 {
			docs, err := indexRepo.LoadDocuments(ctx)
			if err != nil {
				log.Warn("failed to load corpus from index", "error", err)
			} else {
				log.Info("corpus loaded from index", "documents", len(docs))
				return docs
			}
		}
	}

	corpus, err := eventstore.LoadCorpus(cfg.EventsPath)
	if err != nil {
		log.Warn("failed to load corpus file, starting with empty corpus",
			"path", cfg.EventsPath, "error", err)
		return nil
	}
	log.Info("corpus loaded from file", "path", cfg.EventsPath, "documents", len(corpus))
	return corpus
}

// promptPaths maps the prompt directory layout onto fragment paths. Style
// personas live in style_<name>.txt files.
func promptPaths(cfg config.PromptConfig) usecase.PromptPaths {
	styles := map[string]string{}
	matches, err := filepath.Glob(filepath.Join(cfg.Dir, "style_*.txt"))
	if err == nil {
		for _, path := range matches {
			name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "style_"), ".txt")
			styles[name] = path
		}
	}
	return usecase.PromptPaths{
		Base:         filepath.Join(cfg.Dir, "base.txt"),
		Fallback:     filepath.Join(cfg.Dir, "fallback.txt"),
		Styles:       styles,
		DefaultStyle: cfg.DefaultStyle,
	}
}
