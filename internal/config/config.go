package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	EmbeddingModel string

	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	DBPath  string
	APIPort string

	// AskMode selects the retrieval variant: "rag" (chunk retrieval with
	// citations) or "simple" (all in-scope note text into the prompt).
	AskMode string
	// AskTopK is the default retrieved chunk count in rag mode.
	AskTopK int
	// AskSimilarityThreshold is the default minimum cosine similarity in rag mode.
	AskSimilarityThreshold float64
	// AskContextBudget bounds the assembled context in characters.
	AskContextBudget int

	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for a .env up the tree
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "note_chunks"),
		DBPath:           getEnv("DB_PATH", "./data/booknotes.db"),
		APIPort:          getEnv("API_PORT", "9000"),
		AskMode:          getEnv("ASK_MODE", "rag"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.AskMode != "rag" && cfg.AskMode != "simple" {
		return nil, fmt.Errorf("ASK_MODE must be \"rag\" or \"simple\", got %q", cfg.AskMode)
	}

	// The vector size must match the output dimension of the embedding
	// model (1536 for text-embedding-3-small). If it changes, the qdrant
	// collection must be recreated.
	if cfg.AskMode == "rag" {
		vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
		if vectorSizeStr == "" {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required in rag mode")
		}
		vectorSize, err := strconv.Atoi(vectorSizeStr)
		if err != nil {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
		}
		if vectorSize <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
		}
		cfg.QdrantVectorSize = vectorSize
	}

	cfg.AskTopK, err = getEnvInt("ASK_TOP_K", 8)
	if err != nil {
		return nil, err
	}
	if cfg.AskTopK <= 0 || cfg.AskTopK > 20 {
		return nil, fmt.Errorf("ASK_TOP_K must be in 1..20")
	}

	cfg.AskSimilarityThreshold, err = getEnvFloat("ASK_SIMILARITY_THRESHOLD", 0.25)
	if err != nil {
		return nil, err
	}
	if cfg.AskSimilarityThreshold < -1 || cfg.AskSimilarityThreshold > 1 {
		return nil, fmt.Errorf("ASK_SIMILARITY_THRESHOLD must be a cosine similarity in [-1, 1]")
	}

	cfg.AskContextBudget, err = getEnvInt("ASK_CONTEXT_BUDGET", 12000)
	if err != nil {
		return nil, err
	}
	if cfg.AskContextBudget <= 0 {
		return nil, fmt.Errorf("ASK_CONTEXT_BUDGET must be greater than 0")
	}

	generateTimeout, err := getEnvInt("GENERATE_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.GenerateTimeout = time.Duration(generateTimeout) * time.Second

	embedTimeout, err := getEnvInt("EMBED_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	cfg.EmbedTimeout = time.Duration(embedTimeout) * time.Second

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	// Create the data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return parsed, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch value {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", value)
	}
}
