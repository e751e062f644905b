// Command corpus is a local content ingestion and question answering
// tool. It extracts text from files, indexes it and answers queries
// grounded in the indexed content.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/media/ffmpeg"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/corpus-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpus-cli/internal/chunker"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
	"github.com/custodia-labs/corpus-cli/internal/detector"
	"github.com/custodia-labs/corpus-cli/internal/extractors"
	"github.com/custodia-labs/corpus-cli/internal/extractors/audio"
	"github.com/custodia-labs/corpus-cli/internal/extractors/markup"
	"github.com/custodia-labs/corpus-cli/internal/extractors/text"
	"github.com/custodia-labs/corpus-cli/internal/extractors/video"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	docStore := store.DocumentStore()
	embStore := store.EmbeddingStore()

	embedder, err := ai.CreateEmbeddingService(settings.Embedding, settings.EmbedRequestsPerSecond)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	llm, err := ai.CreateLLMService(settings.LLM)
	if err != nil {
		return fmt.Errorf("creating LLM service: %w", err)
	}
	transcriber, err := ai.CreateTranscriber(settings.Transcription)
	if err != nil {
		return fmt.Errorf("creating transcriber: %w", err)
	}

	// The index lives in memory and is rebuilt from the durable
	// embedding records at startup
	var index driven.VectorIndex
	if embedder != nil {
		memIndex := vectormem.NewIndex(
			embedder.Dimensions(), embedder.ModelName(), settings.Retrieval.Metric)
		records, err := embStore.ListEmbeddings(context.Background())
		if err != nil {
			return fmt.Errorf("loading embeddings: %w", err)
		}
		if err := memIndex.Load(records); err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		logger.Debug("Index rebuilt with %d records", memIndex.Len())
		index = memIndex
		defer index.Close()
	}

	registry := extractors.NewRegistry()
	registry.Register(text.New())
	registry.Register(markup.New())
	if transcriber != nil {
		media := ffmpeg.New(settings.Extraction.FFmpegPath)
		audioExtractor := audio.New(media, transcriber,
			settings.Extraction.Timeout, settings.Extraction.Language)
		registry.Register(audioExtractor)
		registry.Register(video.New(media, audioExtractor, settings.Extraction.Timeout))
	}

	pool := services.NewWorkerPool(settings.Extraction.Workers, settings.Extraction.QueueDepth)

	ingest := services.NewIngestOrchestrator(
		detector.New(),
		registry,
		chunker.FromSettings(settings.Chunker),
		docStore,
		embStore,
		embedder,
		index,
		pool,
	)
	retrieval := services.NewRetrievalOrchestrator(embedder, index, docStore, settings.Retrieval)
	answer := services.NewAnswerOrchestrator(llm, docStore, settings.Generation)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:    ingest,
		Retrieval: retrieval,
		Answer:    answer,
		Documents: docStore,
	})

	return cli.Execute()
}
