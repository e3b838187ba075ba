// Package config reads process configuration once at startup. The
// resulting Config is passed to components explicitly; nothing reads the
// environment after this point.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

type Config struct {
	DatabaseURL string

	EmbedderProvider    string
	OpenAIAPIKey        string
	GoogleAPIKey        string
	EmbeddingModel      string
	EmbeddingDimensions int

	Agent string

	InjectDefaultTier     string
	InjectMaxCharsPerItem int
	InjectMaxLinesPerItem int

	CleanupMaxLen        int
	CleanupTier          string
	CleanupMaxImportance int

	DedupDryRun bool
}

// FromEnv loads an optional .env file (BRAINX_ENV overrides the path)
// and builds the configuration. DATABASE_URL is required up front; the
// embedder API key is checked only when an embedder is built, since the
// batch commands never call a provider.
func FromEnv() (Config, error) {
	path := os.Getenv("BRAINX_ENV")
	if len(path) == 0 {
		path = ".env"
	}
	// A missing .env file is fine; the environment may be complete already.
	_ = godotenv.Load(path)

	cfg := Config{
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		EmbedderProvider:      envString("BRAINX_EMBEDDER", ProviderOpenAI),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		EmbeddingModel:        envString("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions:   envInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
		Agent:                 os.Getenv("BRAINX_AGENT"),
		InjectDefaultTier:     envString("BRAINX_INJECT_DEFAULT_TIER", "warm_or_hot"),
		InjectMaxCharsPerItem: envInt("BRAINX_INJECT_MAX_CHARS_PER_ITEM", 2000),
		InjectMaxLinesPerItem: envInt("BRAINX_INJECT_MAX_LINES_PER_ITEM", 80),
		CleanupMaxLen:         envInt("CLEANUP_MAX_LEN", 12),
		CleanupTier:           envString("CLEANUP_TIER", "cold"),
		CleanupMaxImportance:  envInt("CLEANUP_MAX_IMPORTANCE", 2),
		DedupDryRun:           os.Getenv("DEDUP_DRY_RUN") == "true",
	}

	if len(cfg.DatabaseURL) == 0 {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

// EmbedderAPIKey returns the key for the configured provider or an error
// naming the missing variable.
func (c Config) EmbedderAPIKey() (string, error) {
	switch c.EmbedderProvider {
	case ProviderGoogle:
		if len(c.GoogleAPIKey) == 0 {
			return "", errors.New("GOOGLE_API_KEY is required")
		}
		return c.GoogleAPIKey, nil
	default:
		if len(c.OpenAIAPIKey) == 0 {
			return "", errors.New("OPENAI_API_KEY is required")
		}
		return c.OpenAIAPIKey, nil
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); len(v) > 0 {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if len(v) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
