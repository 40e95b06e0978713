// Command lore is a knowledge-base CLI with hybrid retrieval: it
// answers questions from a persistently indexed document corpus
// fused with live industry feeds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fscorpus "github.com/halcyon-labs/lore-cli/internal/adapters/driven/corpus/fs"
	embeddingopenai "github.com/halcyon-labs/lore-cli/internal/adapters/driven/embedding/openai"
	"github.com/halcyon-labs/lore-cli/internal/adapters/driven/feeds"
	llmopenai "github.com/halcyon-labs/lore-cli/internal/adapters/driven/llm/openai"
	vectorsqlite "github.com/halcyon-labs/lore-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/halcyon-labs/lore-cli/internal/adapters/driving/cli"
	"github.com/halcyon-labs/lore-cli/internal/config"
	"github.com/halcyon-labs/lore-cli/internal/core/services"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if cfg.TracingEnabled() {
		logger.Info("tracing enabled")
	}

	embedder, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
		APIKey: cfg.OpenAIKey,
		Model:  cfg.EmbeddingModel,
	})
	if err != nil {
		return err
	}
	defer embedder.Close()

	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey: cfg.OpenAIKey,
		Model:  cfg.CompletionModel,
	})
	if err != nil {
		return err
	}
	defer llm.Close()

	store, err := vectorsqlite.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	watcher, err := fscorpus.NewWatcher(cfg.CorpusDir, 0)
	if err != nil {
		return err
	}
	defer watcher.Close()

	loader := fscorpus.NewLoader(cfg.CorpusDir)
	pipeline := services.NewIngestPipeline(embedder, store, cfg.Policy)
	indexManager := services.NewIndexManager(loader, pipeline, embedder, store)

	registry := feeds.NewCSVRegistry(cfg.FeedsFile)
	aggregator := services.NewAggregator(registry, feeds.NewRSSFetcher(), cfg.Policy)

	router := services.NewLexicalRouter()
	retriever := services.NewRetriever(router, indexManager, aggregator, embedder, cfg.Policy)
	answerer := services.NewAnswerer(router, retriever, llm, cfg.Policy)

	cli.SetVersion(version)
	cli.SetWiring(cli.Wiring{
		Answer:     answerer,
		Index:      indexManager,
		Aggregator: aggregator,
		Registry:   registry,
		Watcher:    watcher,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ForceRebuild {
		logger.Info("startup: forced rebuild requested")
		if _, err := indexManager.EnsureReady(ctx, true); err != nil {
			return err
		}
	}

	return cli.ExecuteContext(ctx)
}
