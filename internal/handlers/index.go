package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"booknotes/internal/contextutil"
	"booknotes/internal/indexer"
	"booknotes/internal/llm"
	"booknotes/internal/storage"
)

// IndexHandler handles HTTP requests for (re)indexing a note's embeddings.
// The CRUD layer calls this after a note save, since an edit invalidates
// the note's previous embedding.
type IndexHandler struct {
	pipeline *indexer.Pipeline
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline *indexer.Pipeline) *IndexHandler {
	return &IndexHandler{pipeline: pipeline}
}

// IndexResponse reports the outcome of an indexing run.
type IndexResponse struct {
	NoteID        string `json:"note_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Status        string `json:"status"`
}

// ServeHTTP handles POST /api/v1/notes/{noteID}/index.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ownerID := contextutil.OwnerFromContext(ctx)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "X-Owner-ID header is required")
		return
	}

	noteID := chi.URLParam(r, "noteID")
	if noteID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "note ID is required")
		return
	}

	count, err := h.pipeline.IndexNote(ctx, ownerID, noteID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, codeNotFound, "Note not found")
		case errors.Is(err, llm.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "Provider is throttling requests, retry later")
		default:
			logger.ErrorContext(ctx, "failed to index note", "note_id", noteID, "error", err)
			writeError(w, http.StatusInternalServerError, codeInternal, "Failed to index note")
		}
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{
		NoteID:        noteID,
		ChunksIndexed: count,
		Status:        storage.EmbeddingCompleted,
	})
}
