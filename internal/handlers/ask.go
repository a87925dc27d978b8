package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"booknotes/internal/ask"
	"booknotes/internal/contextutil"
	"booknotes/internal/llm"
)

// AskHandler handles HTTP requests for ask queries.
type AskHandler struct {
	engine ask.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine ask.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest is the HTTP request payload for ask queries.
// This mirrors ask.Query but is defined here for HTTP layer separation.
type AskRequest struct {
	QueryText string       `json:"query_text"`
	Scope     ScopePayload `json:"scope"`
	// TopK optionally tunes the retrieved chunk count (RAG mode).
	TopK int `json:"top_k,omitempty"`
	// SimilarityThreshold optionally tunes the minimum cosine similarity (RAG mode).
	SimilarityThreshold float32 `json:"similarity_threshold,omitempty"`
}

// ScopePayload selects the retrieval boundary. Exactly one field must be non-null.
type ScopePayload struct {
	BookID   *string `json:"book_id"`
	SeriesID *string `json:"series_id"`
}

// AskResponse is the HTTP response payload for ask queries.
type AskResponse struct {
	Answer    AnswerPayload     `json:"answer"`
	Citations []CitationPayload `json:"citations,omitempty"`
	Usage     UsagePayload      `json:"usage"`
}

// AnswerPayload carries the answer text and the low-confidence flag.
// Low confidence is not an error; it is a normal 200 response with the
// fixed guidance text.
type AnswerPayload struct {
	Text          string `json:"text"`
	LowConfidence bool   `json:"low_confidence"`
}

// CitationPayload references a note chunk that supported the answer.
type CitationPayload struct {
	NoteEmbeddingID string  `json:"note_embedding_id"`
	ChunkContent    string  `json:"chunk_content"`
	Similarity      float32 `json:"similarity"`
	BookID          string  `json:"book_id"`
	ChapterID       string  `json:"chapter_id"`
	BookTitle       string  `json:"book_title"`
	ChapterTitle    string  `json:"chapter_title"`
}

// UsagePayload carries generation metadata.
type UsagePayload struct {
	Model           string `json:"model"`
	LatencyMS       int64  `json:"latency_ms"`
	RetrievedChunks int    `json:"retrieved_chunks,omitempty"`
}

// ServeHTTP handles POST /api/v1/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ownerID := contextutil.OwnerFromContext(ctx)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "X-Owner-ID header is required")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	query := ask.Query{
		Question:            req.QueryText,
		TopK:                req.TopK,
		SimilarityThreshold: req.SimilarityThreshold,
	}
	if req.Scope.BookID != nil {
		query.Scope.BookID = *req.Scope.BookID
	}
	if req.Scope.SeriesID != nil {
		query.Scope.SeriesID = *req.Scope.SeriesID
	}

	answer, err := h.engine.Ask(ctx, ownerID, query)
	if err != nil {
		handleAskError(w, r, err)
		return
	}

	resp := AskResponse{
		Answer: AnswerPayload{
			Text:          answer.Text,
			LowConfidence: answer.LowConfidence,
		},
		Usage: UsagePayload{
			Model:           answer.Usage.Model,
			LatencyMS:       answer.Usage.LatencyMS,
			RetrievedChunks: answer.Usage.RetrievedChunks,
		},
	}
	for _, citation := range answer.Citations {
		resp.Citations = append(resp.Citations, CitationPayload{
			NoteEmbeddingID: citation.ChunkID,
			ChunkContent:    citation.ChunkContent,
			Similarity:      citation.Similarity,
			BookID:          citation.BookID,
			ChapterID:       citation.ChapterID,
			BookTitle:       citation.BookTitle,
			ChapterTitle:    citation.ChapterTitle,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleAskError maps pipeline errors to the uniform error envelope.
func handleAskError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *ask.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "ask validation failed", "field", validationErr.Field, "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, validationErr.Message)
	case errors.Is(err, ask.ErrInvalidInput):
		logger.WarnContext(ctx, "ask validation failed", "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request")
	case errors.Is(err, ask.ErrNotFound):
		logger.WarnContext(ctx, "ask scope target not found", "error", err)
		writeError(w, http.StatusNotFound, codeNotFound, "Book or series not found")
	case errors.Is(err, llm.ErrRateLimited):
		logger.WarnContext(ctx, "provider rate limited", "error", err)
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "Provider is throttling requests, retry later")
	default:
		// Provider outages and malformed model output are logged with full
		// context server-side; the caller gets a generic message.
		logger.ErrorContext(ctx, "ask query failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to answer question")
	}
}
