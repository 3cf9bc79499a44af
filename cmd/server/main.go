package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/mattear-com/deepshelf/internal/adapter/ai"
	"github.com/mattear-com/deepshelf/internal/adapter/personalizer"
	"github.com/mattear-com/deepshelf/internal/adapter/store"
	"github.com/mattear-com/deepshelf/internal/clustering"
	"github.com/mattear-com/deepshelf/internal/explain"
	"github.com/mattear-com/deepshelf/internal/feedback"
	"github.com/mattear-com/deepshelf/internal/handler"
	"github.com/mattear-com/deepshelf/internal/port"
	"github.com/mattear-com/deepshelf/internal/recommender"
	"github.com/mattear-com/deepshelf/internal/service"
	"github.com/mattear-com/deepshelf/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("starting DeepShelf",
		"port", cfg.Port,
		"catalog", catalogLabel(cfg),
		"clusters", cfg.NumClusters,
	)

	// ── Catalog ──────────────────────────────────────────────────────────
	var catalog port.CatalogSource
	if cfg.CatalogDSN != "" {
		pgCatalog, err := store.NewPostgresCatalog(cfg.CatalogDSN)
		if err != nil {
			slog.Error("failed to connect to catalog database", "error", err)
			os.Exit(1)
		}
		defer pgCatalog.Close()
		catalog = pgCatalog
	} else {
		catalog = store.NewFileCatalog(cfg.CatalogPath)
	}

	books, vectors, err := catalog.Load(context.Background())
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// ── Index & clusters (built before serving, immutable afterwards) ───
	index, err := recommender.Build(books, vectors)
	if err != nil {
		slog.Error("failed to build similarity index", "error", err)
		os.Exit(1)
	}
	if err := index.AssertDimension(cfg.EmbeddingDimension); err != nil {
		slog.Error("catalog embeddings do not match the configured dimension", "error", err)
		os.Exit(1)
	}

	clusters, err := clustering.NewService(books, vectors, cfg.NumClusters, cfg.ClusterSeed, cfg.ClusterCachePath)
	if err != nil {
		slog.Error("failed to cluster catalog", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(
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

	// Generative summaries are attempted only with a configured credential;
	// otherwise the explanation engine goes straight to the template.
	var summaryAI port.AIProvider
	if ollamaAI.HasCredential() {
		summaryAI = ollamaAI
		slog.Info("generative summaries enabled", "model", ollamaAI.ModelName())
	} else {
		slog.Info("generative summaries disabled, using template explanations")
	}
	explainer := explain.NewEngine(summaryAI, time.Duration(cfg.SummaryTimeoutSeconds)*time.Second)

	ledger, err := feedback.NewLedger(cfg.FeedbackPath)
	if err != nil {
		slog.Error("failed to open feedback ledger", "error", err)
		os.Exit(1)
	}

	personalizerClient := personalizer.NewClient(cfg.PersonalizerURL, time.Duration(cfg.PersonalizerTimeoutSeconds)*time.Second)

	// ── Services ─────────────────────────────────────────────────────────
	recommendService := service.NewRecommendService(index, ollamaAI, explainer, ledger, personalizerClient)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"books":   index.Len(),
			"version": "1.0.0",
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	recommendHandler := handler.NewRecommendHandler(recommendService, cfg.DefaultTopK, cfg.MinSimilarity)
	recommendHandler.Register(api)

	catalogHandler := handler.NewCatalogHandler(index, clusters)
	catalogHandler.Register(api)

	feedbackHandler := handler.NewFeedbackHandler(recommendService)
	feedbackHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func catalogLabel(cfg *config.Config) string {
	if cfg.CatalogDSN != "" {
		return "postgres"
	}
	return cfg.CatalogPath
}
