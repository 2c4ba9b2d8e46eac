// Package main is the ingest CLI: generate or fetch event records and build
// the vector index without going through the HTTP job queue.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"weekend-guide/internal/adapter/airtable"
	"weekend-guide/internal/adapter/eventstore"
	"weekend-guide/internal/adapter/openai"
	"weekend-guide/internal/adapter/repository"
	"weekend-guide/internal/domain"
	"weekend-guide/internal/infra"
	"weekend-guide/internal/infra/config"
	"weekend-guide/internal/infra/httpclient"
	"weekend-guide/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Event corpus ingestion tools",
	Long: `ingest manages the weekend events corpus.

Example usage:
  ingest generate --count 200 --out data/events.json
  ingest fetch --out data/events.json
  ingest index --file data/events.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic event corpus",
	RunE:  runGenerate,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch event records from Airtable",
	RunE:  runFetch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from an events file",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(generateCmd, fetchCmd, indexCmd)

	generateCmd.Flags().Int("count", 200, "number of events to generate")
	generateCmd.Flags().Int64("seed", 42, "random seed")
	generateCmd.Flags().String("out", "data/events.json", "output file")

	fetchCmd.Flags().String("out", "data/events.json", "output file")

	indexCmd.Flags().String("file", "data/events.json", "events file to index")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetInt64("seed")
	out, _ := cmd.Flags().GetString("out")

	events := domain.SyntheticEvents(count, seed)
	if err := eventstore.SaveEvents(out, events); err != nil {
		return err
	}
	fmt.Printf("Wrote %d events to %s\n", len(events), out)
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	cfg := config.Load()

	client := airtable.NewClient(
		cfg.Airtable.BaseURL,
		cfg.Airtable.APIKey,
		cfg.Airtable.BaseID,
		cfg.Airtable.Table,
		httpclient.NewPooledClient(30*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	events, err := client.FetchEvents(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	if err := eventstore.SaveEvents(out, events); err != nil {
		return err
	}
	fmt.Printf("Wrote %d events to %s\n", len(events), out)
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to build the index")
	}

	events, err := eventstore.LoadEvents(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	encoder := openai.NewEmbedder(
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.APIKey,
		cfg.OpenAI.EmbeddingModel,
		httpclient.NewPooledClient(cfg.OpenAI.Timeout),
	)
	indexUsecase := usecase.NewIndexEventsUsecase(
		repository.NewEventIndexRepository(pool),
		encoder,
		repository.NewPostgresTransactionManager(pool),
		log,
	)

	if err := indexUsecase.Index(ctx, events); err != nil {
		return err
	}
	fmt.Printf("Indexed %d events\n", len(events))
	return nil
}
