// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		VectorBackend:       BackendSQLite,
		MaxRetries:          3,
		SimilarityThreshold: 0.5,
		TopK:                5,
		AskTemperature:      0.5,
		BackfillDelay:       100 * time.Millisecond,
		IndexWorkers:        1,
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()
	os.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DBPath != filepath.Join("/tmp/xdg", "voicenotes", "voicenotes.db") {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.VectorBackend != BackendSQLite {
		t.Errorf("VectorBackend = %s, want sqlite", cfg.VectorBackend)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.SimilarityThreshold != 0.5 {
		t.Errorf("SimilarityThreshold = %f, want 0.5", cfg.SimilarityThreshold)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.AskTemperature != 0.5 {
		t.Errorf("AskTemperature = %f, want 0.5", cfg.AskTemperature)
	}
	if cfg.AskTimeout != time.Minute {
		t.Errorf("AskTimeout = %v, want 1m", cfg.AskTimeout)
	}
	if cfg.SmartifyTimeout != 5*time.Minute {
		t.Errorf("SmartifyTimeout = %v, want 5m", cfg.SmartifyTimeout)
	}
	if cfg.BackfillDelay != 100*time.Millisecond {
		t.Errorf("BackfillDelay = %v, want 100ms", cfg.BackfillDelay)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %s, want :8080", cfg.ListenAddr)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("VOICENOTES_DB", "/tmp/notes.db")
	os.Setenv("VECTOR_BACKEND", "chroma")
	os.Setenv("CHROMA_URL", "http://chroma:8000")
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("VOICENOTES_OPENAI_MODEL", "gpt-4o")
	os.Setenv("OPENAI_MAX_RETRIES", "5")
	os.Setenv("ASK_SIMILARITY_THRESHOLD", "0.7")
	os.Setenv("ASK_TOP_K", "8")
	os.Setenv("BACKFILL_DELAY", "250ms")
	os.Setenv("VOICENOTES_USER_ID", "user-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DBPath != "/tmp/notes.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.VectorBackend != BackendChroma {
		t.Errorf("VectorBackend = %s, want chroma", cfg.VectorBackend)
	}
	if cfg.ChromaURL != "http://chroma:8000" {
		t.Errorf("ChromaURL = %s", cfg.ChromaURL)
	}
	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %s, want gpt-4o", cfg.ChatModel)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.SimilarityThreshold != 0.7 {
		t.Errorf("SimilarityThreshold = %f, want 0.7", cfg.SimilarityThreshold)
	}
	if cfg.TopK != 8 {
		t.Errorf("TopK = %d, want 8", cfg.TopK)
	}
	if cfg.BackfillDelay != 250*time.Millisecond {
		t.Errorf("BackfillDelay = %v, want 250ms", cfg.BackfillDelay)
	}
	if cfg.DefaultUserID != "user-1" {
		t.Errorf("DefaultUserID = %s, want user-1", cfg.DefaultUserID)
	}
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("ASK_TOP_K", "many")
	os.Setenv("BACKFILL_DELAY", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want default 5", cfg.TopK)
	}
	if cfg.BackfillDelay != 100*time.Millisecond {
		t.Errorf("BackfillDelay = %v, want default", cfg.BackfillDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"threshold above 1", func(c *Config) { c.SimilarityThreshold = 1.5 }, true},
		{"threshold below 0", func(c *Config) { c.SimilarityThreshold = -0.1 }, true},
		{"top k zero", func(c *Config) { c.TopK = 0 }, true},
		{"top k too large", func(c *Config) { c.TopK = 51 }, true},
		{"retries too many", func(c *Config) { c.MaxRetries = 15 }, true},
		{"retries negative", func(c *Config) { c.MaxRetries = -1 }, true},
		{"negative delay", func(c *Config) { c.BackfillDelay = -time.Second }, true},
		{"no workers", func(c *Config) { c.IndexWorkers = 0 }, true},
		{"unknown backend", func(c *Config) { c.VectorBackend = "pinecone" }, true},
		{"chroma backend", func(c *Config) { c.VectorBackend = BackendChroma }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
