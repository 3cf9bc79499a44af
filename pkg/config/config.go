package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// Catalog
	CatalogPath string
	CatalogDSN  string // set => load the catalog from Postgres instead of the file

	// Recommendation engine
	EmbeddingDimension int
	DefaultTopK        int
	MinSimilarity      float64

	// Clustering
	NumClusters      int
	ClusterSeed      int64
	ClusterCachePath string

	// Ollama — Embed endpoint
	OllamaEmbedURL   string
	OllamaEmbedModel string
	OllamaEmbedToken string

	// Ollama — Chat/Summary endpoint
	OllamaChatURL   string
	OllamaChatModel string
	OllamaChatToken string // required for generative summaries; empty = template only

	SummaryTimeoutSeconds int

	// Personalization service
	PersonalizerURL            string
	PersonalizerTimeoutSeconds int

	// Feedback
	FeedbackPath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "8000"),
		AppName: envOrDefault("APP_NAME", "DeepShelf"),

		CatalogPath: envOrDefault("CATALOG_PATH", "data/processed/books.jsonl"),
		CatalogDSN:  os.Getenv("CATALOG_DSN"),

		EmbeddingDimension: envOrDefaultInt("EMBEDDING_DIMENSION", 384),
		DefaultTopK:        envOrDefaultInt("DEFAULT_TOP_K", 10),
		MinSimilarity:      envOrDefaultFloat("MIN_SIMILARITY", 0.3),

		NumClusters:      envOrDefaultInt("NUM_CLUSTERS", 20),
		ClusterSeed:      int64(envOrDefaultInt("CLUSTER_SEED", 42)),
		ClusterCachePath: envOrDefault("CLUSTER_CACHE_PATH", "data/processed/cluster_cache.json"),

		OllamaEmbedURL:   envOrDefault("OLLAMA_EMBED_URL", envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434")),
		OllamaEmbedModel: envOrDefault("OLLAMA_EMBED_MODEL", "all-minilm"),
		OllamaEmbedToken: os.Getenv("OLLAMA_EMBED_TOKEN"),

		OllamaChatURL:   envOrDefault("OLLAMA_CHAT_URL", envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434")),
		OllamaChatModel: envOrDefault("OLLAMA_CHAT_MODEL", "qwen3"),
		OllamaChatToken: os.Getenv("OLLAMA_CHAT_TOKEN"),

		SummaryTimeoutSeconds: envOrDefaultInt("SUMMARY_TIMEOUT_SECONDS", 10),

		PersonalizerURL:            envOrDefault("PERSONALIZER_URL", "http://localhost:8001"),
		PersonalizerTimeoutSeconds: envOrDefaultInt("PERSONALIZER_TIMEOUT_SECONDS", 60),

		FeedbackPath: envOrDefault("FEEDBACK_PATH", "data/feedback/user_feedback.jsonl"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
