// ABOUTME: Centralized configuration for the voicenotes services
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Vector index backends
const (
	BackendSQLite = "sqlite"
	BackendChroma = "chroma"
)

// Config holds all configuration for the voicenotes system
type Config struct {
	// Storage settings
	DBPath           string
	VectorBackend    string
	ChromaURL        string
	ChromaCollection string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Ask settings
	SimilarityThreshold float64
	TopK                int
	AskTemperature      float32
	AskTimeout          time.Duration

	// Smartify and backfill settings
	SmartifyTimeout time.Duration
	BackfillDelay   time.Duration
	IndexWorkers    int

	// Transport settings
	ListenAddr    string
	DefaultUserID string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:              getEnv("VOICENOTES_DB", DefaultDBPath()),
		VectorBackend:       getEnv("VECTOR_BACKEND", BackendSQLite),
		ChromaURL:           getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection:    getEnv("CHROMA_COLLECTION", "voicenotes"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("VOICENOTES_OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("VOICENOTES_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		SimilarityThreshold: getEnvFloat("ASK_SIMILARITY_THRESHOLD", 0.5),
		TopK:                getEnvInt("ASK_TOP_K", 5),
		AskTemperature:      float32(getEnvFloat("ASK_TEMPERATURE", 0.5)),
		AskTimeout:          getEnvDuration("ASK_TIMEOUT", time.Minute),
		SmartifyTimeout:     getEnvDuration("SMARTIFY_TIMEOUT", 5*time.Minute),
		BackfillDelay:       getEnvDuration("BACKFILL_DELAY", 100*time.Millisecond),
		IndexWorkers:        getEnvInt("INDEX_WORKERS", 2),
		ListenAddr:          getEnv("VOICENOTES_ADDR", ":8080"),
		DefaultUserID:       os.Getenv("VOICENOTES_USER_ID"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("ASK_SIMILARITY_THRESHOLD must be 0-1, got %f", c.SimilarityThreshold)
	}
	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("ASK_TOP_K must be 1-50, got %d", c.TopK)
	}
	if c.AskTemperature < 0 || c.AskTemperature > 2 {
		return fmt.Errorf("ASK_TEMPERATURE must be 0-2, got %f", c.AskTemperature)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.BackfillDelay < 0 {
		return fmt.Errorf("BACKFILL_DELAY must not be negative, got %v", c.BackfillDelay)
	}
	if c.IndexWorkers < 1 {
		return fmt.Errorf("INDEX_WORKERS must be positive, got %d", c.IndexWorkers)
	}
	switch c.VectorBackend {
	case BackendSQLite, BackendChroma:
	default:
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendSQLite, BackendChroma, c.VectorBackend)
	}
	return nil
}

// DefaultDataDir returns the data directory following XDG base directory conventions
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "voicenotes")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "voicenotes")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "voicenotes.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
