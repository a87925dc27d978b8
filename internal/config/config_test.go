package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// setBaseEnv pins every variable Load reads so ambient environment and .env
// files cannot leak into the test.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("QDRANT_URL", "")
	t.Setenv("QDRANT_COLLECTION", "")
	t.Setenv("QDRANT_VECTOR_SIZE", "1536")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("API_PORT", "")
	t.Setenv("ASK_MODE", "")
	t.Setenv("ASK_TOP_K", "")
	t.Setenv("ASK_SIMILARITY_THRESHOLD", "")
	t.Setenv("ASK_CONTEXT_BUDGET", "")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "")
	t.Setenv("EMBED_TIMEOUT_SECONDS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
	if cfg.QdrantURL != "http://localhost:6333" {
		t.Errorf("QdrantURL = %q", cfg.QdrantURL)
	}
	if cfg.QdrantCollection != "note_chunks" {
		t.Errorf("QdrantCollection = %q", cfg.QdrantCollection)
	}
	if cfg.QdrantVectorSize != 1536 {
		t.Errorf("QdrantVectorSize = %d", cfg.QdrantVectorSize)
	}
	if cfg.APIPort != "9000" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.AskMode != "rag" {
		t.Errorf("AskMode = %q", cfg.AskMode)
	}
	if cfg.AskTopK != 8 {
		t.Errorf("AskTopK = %d", cfg.AskTopK)
	}
	if cfg.AskSimilarityThreshold != 0.25 {
		t.Errorf("AskSimilarityThreshold = %v", cfg.AskSimilarityThreshold)
	}
	if cfg.AskContextBudget != 12000 {
		t.Errorf("AskContextBudget = %d", cfg.AskContextBudget)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Errorf("GenerateTimeout = %v", cfg.GenerateTimeout)
	}
	if cfg.EmbedTimeout != 15*time.Second {
		t.Errorf("EmbedTimeout = %v", cfg.EmbedTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q", cfg.LogFormat)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error without OPENAI_API_KEY")
	}
}

func TestLoad_VectorSizeRequiredInRAGMode(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QDRANT_VECTOR_SIZE", "")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error without QDRANT_VECTOR_SIZE in rag mode")
	}
}

func TestLoad_SimpleModeSkipsVectorSize(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ASK_MODE", "simple")
	t.Setenv("QDRANT_VECTOR_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AskMode != "simple" {
		t.Errorf("AskMode = %q", cfg.AskMode)
	}
	if cfg.QdrantVectorSize != 0 {
		t.Errorf("QdrantVectorSize = %d, want 0 in simple mode", cfg.QdrantVectorSize)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad ask mode", key: "ASK_MODE", value: "hybrid"},
		{name: "non-numeric vector size", key: "QDRANT_VECTOR_SIZE", value: "large"},
		{name: "zero vector size", key: "QDRANT_VECTOR_SIZE", value: "0"},
		{name: "top_k zero", key: "ASK_TOP_K", value: "0"},
		{name: "top_k above bound", key: "ASK_TOP_K", value: "50"},
		{name: "top_k non-numeric", key: "ASK_TOP_K", value: "many"},
		{name: "threshold out of range", key: "ASK_SIMILARITY_THRESHOLD", value: "1.5"},
		{name: "threshold non-numeric", key: "ASK_SIMILARITY_THRESHOLD", value: "high"},
		{name: "context budget zero", key: "ASK_CONTEXT_BUDGET", value: "0"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad log format", key: "LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("ASK_TOP_K", "12")
	t.Setenv("ASK_SIMILARITY_THRESHOLD", "0.4")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "60")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMModel != "gpt-4o" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.AskTopK != 12 {
		t.Errorf("AskTopK = %d", cfg.AskTopK)
	}
	if cfg.AskSimilarityThreshold != 0.4 {
		t.Errorf("AskSimilarityThreshold = %v", cfg.AskSimilarityThreshold)
	}
	if cfg.GenerateTimeout != 60*time.Second {
		t.Errorf("GenerateTimeout = %v", cfg.GenerateTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q", cfg.LogFormat)
	}
}
