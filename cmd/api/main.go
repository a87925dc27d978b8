package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"booknotes/internal/ask"
	"booknotes/internal/config"
	"booknotes/internal/http"
	"booknotes/internal/indexer"
	"booknotes/internal/llm"
	"booknotes/internal/storage"
	"booknotes/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	libraryRepo := storage.NewLibraryRepo(db)
	noteRepo := storage.NewNoteRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	searchLogRepo := storage.NewSearchLogRepo(db)

	ctx := context.Background()

	// Create LLM clients (external service layer)
	api := llm.NewAPIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	generator := llm.NewClient(api, cfg.LLMModel, cfg.GenerateTimeout)

	assembler := ask.NewContextAssembler(cfg.AskContextBudget)
	resolver := ask.NewScopeResolver(libraryRepo)

	var (
		ranker          *ask.SimilarityRanker
		indexerPipeline *indexer.Pipeline
		vectorStore     *vectorstore.QdrantStore
	)

	if cfg.AskMode == ask.ModeRAG {
		// Initialize Qdrant vector store
		vectorStore, err = vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}

		// Ensure collection exists with correct vector size
		if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		embedder := llm.NewEmbeddingsClient(api, cfg.EmbeddingModel, cfg.QdrantVectorSize, cfg.EmbedTimeout)

		// Create indexing pipeline
		indexerPipeline = indexer.NewPipeline(
			noteRepo,
			chunkRepo,
			embedder,
			vectorStore,
			cfg.QdrantCollection,
		)

		ranker = ask.NewSimilarityRanker(embedder, vectorStore, cfg.QdrantCollection, chunkRepo)
	}

	// Create ask engine
	engine := ask.NewEngine(
		resolver,
		assembler,
		ranker,
		generator,
		searchLogRepo,
		ask.Options{
			Mode:             cfg.AskMode,
			DefaultTopK:      cfg.AskTopK,
			DefaultThreshold: float32(cfg.AskSimilarityThreshold),
		},
	)
	slog.Info("Ask engine initialized", "mode", cfg.AskMode, "model", cfg.LLMModel)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:          engine,
		IndexerPipeline: indexerPipeline,
		DB:              db,
		CollectionName:  cfg.QdrantCollection,
	}
	if vectorStore != nil {
		deps.VectorStore = vectorStore
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
