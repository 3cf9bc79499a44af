package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mattear-com/deepshelf/internal/adapter/ai"
	"github.com/mattear-com/deepshelf/internal/adapter/store"
	"github.com/mattear-com/deepshelf/internal/ingest"
	"github.com/mattear-com/deepshelf/pkg/config"
)

// Vectorizes a raw book dump into the catalog file the server loads:
// reads raw JSONL records, embeds each book's combined text in batches,
// and writes books with embeddings inline.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	in := flag.String("in", "", "raw books JSONL to ingest (required)")
	out := flag.String("out", cfg.CatalogPath, "catalog JSONL to write")
	batch := flag.Int("batch", ingest.DefaultBatchSize, "embedding batch size")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	books, err := ingest.ReadRaw(*in)
	if err != nil {
		slog.Error("failed to read raw catalog", "error", err)
		os.Exit(1)
	}
	if len(books) == 0 {
		slog.Error("no usable records in raw catalog", "path", *in)
		os.Exit(1)
	}

	provider := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		},
	)

	slog.Info("ingesting catalog",
		"books", len(books),
		"embed_model", cfg.OllamaEmbedModel,
		"batch", *batch,
	)

	vectors, err := ingest.EmbedCatalog(context.Background(), provider, books, *batch)
	if err != nil {
		slog.Error("failed to embed catalog", "error", err)
		os.Exit(1)
	}
	if len(vectors[0]) != cfg.EmbeddingDimension {
		slog.Error("embedding backend returned an unexpected dimension",
			"got", len(vectors[0]),
			"configured", cfg.EmbeddingDimension,
		)
		os.Exit(1)
	}

	if err := store.WriteCatalog(*out, books, vectors); err != nil {
		slog.Error("failed to write catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog written", "path", *out, "books", len(books), "dim", len(vectors[0]))
}
