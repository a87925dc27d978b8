package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booknotes/internal/contextutil"
	"booknotes/internal/llm"
	"booknotes/internal/storage"
)

// Retrieval modes.
const (
	// ModeRAG retrieves only the most similar note chunks via the vector
	// store and attaches citations.
	ModeRAG = "rag"
	// ModeSimple loads the full text of every in-scope note into the prompt.
	ModeSimple = "simple"
)

const (
	maxQuestionLen = 500
	maxTopK        = 20
	searchLogTTL   = 5 * time.Second
)

// Generator produces a grounded answer from a question and assembled note
// context. Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (llm.Generation, error)
	Model() string
}

// Engine answers questions about a user's reading notes.
type Engine interface {
	// Ask runs the full pipeline for one query: validate, resolve scope,
	// assemble context, gate on confidence, generate, and respond.
	Ask(ctx context.Context, ownerID string, query Query) (Answer, error)
}

// Options tunes the engine pipeline.
type Options struct {
	// Mode selects ModeRAG or ModeSimple.
	Mode string
	// DefaultTopK is the chunk count used when a query does not specify one.
	DefaultTopK int
	// DefaultThreshold is the minimum cosine similarity used when a query
	// does not specify one.
	DefaultThreshold float32
}

type engine struct {
	resolver   *ScopeResolver
	assembler  *ContextAssembler
	ranker     *SimilarityRanker
	generator  Generator
	searchLogs storage.SearchLogStore
	opts       Options
}

// NewEngine creates the query orchestrator. The ranker may be nil when
// opts.Mode is ModeSimple.
func NewEngine(
	resolver *ScopeResolver,
	assembler *ContextAssembler,
	ranker *SimilarityRanker,
	generator Generator,
	searchLogs storage.SearchLogStore,
	opts Options,
) Engine {
	return &engine{
		resolver:   resolver,
		assembler:  assembler,
		ranker:     ranker,
		generator:  generator,
		searchLogs: searchLogs,
		opts:       opts,
	}
}

// Ask answers one question scoped to a book or series.
func (e *engine) Ask(ctx context.Context, ownerID string, query Query) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(query.Question)
	if question == "" {
		return Answer{}, &ValidationError{Field: "query_text", Message: "question is required"}
	}
	if len(question) > maxQuestionLen {
		return Answer{}, &ValidationError{Field: "query_text", Message: fmt.Sprintf("question exceeds %d characters", maxQuestionLen)}
	}
	if ownerID == "" {
		return Answer{}, &ValidationError{Field: "owner", Message: "owner is required"}
	}

	notes, err := e.resolver.Resolve(ctx, ownerID, query.Scope)
	if err != nil {
		return Answer{}, err
	}

	// Analytics side effect, detached from the critical path. A failed log
	// write never fails the request.
	e.logQuery(ctx, ownerID, question)

	logger.InfoContext(ctx, "ask query started",
		"mode", e.opts.Mode, "book_id", query.Scope.BookID, "series_id", query.Scope.SeriesID,
		"resolved_notes", len(notes))

	if !shouldAnswer(len(notes)) {
		logger.InfoContext(ctx, "scope resolved to zero notes, returning fallback")
		return fallbackAnswer(e.generator.Model()), nil
	}

	var (
		contextText string
		citations   []Citation
		retrieved   int
	)

	if e.opts.Mode == ModeRAG {
		topK := clampTopK(query.TopK, e.opts.DefaultTopK)
		threshold := query.SimilarityThreshold
		if threshold == 0 {
			threshold = e.opts.DefaultThreshold
		}

		chunks, err := e.ranker.Rank(ctx, ownerID, question, query.Scope, threshold, topK)
		if err != nil {
			return Answer{}, err
		}
		if !shouldAnswer(len(chunks)) {
			logger.InfoContext(ctx, "no chunks cleared the similarity threshold, returning fallback",
				"threshold", threshold)
			return fallbackAnswer(e.generator.Model()), nil
		}

		var included int
		contextText, included = e.assembler.AssembleChunks(ctx, chunks)
		chunks = chunks[:included]
		retrieved = len(chunks)

		citations = make([]Citation, 0, len(chunks))
		for _, chunk := range chunks {
			citations = append(citations, Citation{
				ChunkID:      chunk.ChunkID,
				ChunkContent: chunk.Content,
				Similarity:   chunk.Score,
				BookID:       chunk.BookID,
				ChapterID:    chunk.ChapterID,
				BookTitle:    chunk.BookTitle,
				ChapterTitle: chunk.ChapterTitle,
			})
		}
	} else {
		var included int
		contextText, included = e.assembler.AssembleNotes(ctx, notes)
		if !shouldAnswer(included) {
			return fallbackAnswer(e.generator.Model()), nil
		}
	}

	gen, err := e.generator.Generate(ctx, question, contextText)
	if err != nil {
		return Answer{}, fmt.Errorf("answer generation failed: %w", err)
	}

	logger.InfoContext(ctx, "ask query completed",
		"low_confidence", gen.LowConfidence, "latency_ms", gen.LatencyMS, "retrieved_chunks", retrieved)

	return Answer{
		Text:          gen.Text,
		LowConfidence: gen.LowConfidence,
		Citations:     citations,
		Usage: Usage{
			Model:           gen.Model,
			LatencyMS:       gen.LatencyMS,
			RetrievedChunks: retrieved,
		},
	}, nil
}

// logQuery writes the search log record in a detached goroutine. The write
// outlives request cancellation but is bounded by its own timeout.
func (e *engine) logQuery(ctx context.Context, ownerID, question string) {
	logger := contextutil.LoggerFromContext(ctx)
	go func() {
		logCtx, cancel := context.WithTimeout(context.Background(), searchLogTTL)
		defer cancel()
		if err := e.searchLogs.Insert(logCtx, &storage.SearchLog{OwnerID: ownerID, Query: question}); err != nil {
			logger.Warn("failed to write search log", "error", err)
		}
	}()
}

// clampTopK applies the default and the server-side bound for the chunk count.
func clampTopK(k, fallback int) int {
	if k <= 0 {
		k = fallback
	}
	if k > maxTopK {
		k = maxTopK
	}
	if k <= 0 {
		k = 1
	}
	return k
}
