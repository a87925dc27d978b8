package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"booknotes/internal/contextutil"
	"booknotes/internal/storage"
	"booknotes/internal/vectorstore"
)

// Embedder turns chunk texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline (re)indexes one note at a time: chunk the content, embed the
// chunks, and replace the note's rows and vector points. It drives the
// note's embedding status through processing to completed or failed.
//
// The CRUD layer invokes it when a note is saved; an edit invalidates the
// previous embedding by replacing all of the note's chunks.
type Pipeline struct {
	notes      storage.NoteStore
	chunks     storage.ChunkStore
	chunker    *NoteChunker
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	notes storage.NoteStore,
	chunks storage.ChunkStore,
	embedder Embedder,
	vectors vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		notes:      notes,
		chunks:     chunks,
		chunker:    NewNoteChunker(),
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
	}
}

// IndexNote chunks, embeds and stores one note for the given owner.
// Returns the number of chunks indexed. Returns storage.ErrNotFound if the
// note does not exist for the owner.
func (p *Pipeline) IndexNote(ctx context.Context, ownerID, noteID string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	note, err := p.notes.Get(ctx, ownerID, noteID)
	if err != nil {
		return 0, err
	}

	if err := p.notes.SetEmbeddingStatus(ctx, noteID, storage.EmbeddingProcessing); err != nil {
		return 0, fmt.Errorf("failed to mark note as processing: %w", err)
	}

	count, err := p.reindex(ctx, ownerID, note)
	if err != nil {
		if statusErr := p.notes.SetEmbeddingStatus(ctx, noteID, storage.EmbeddingFailed); statusErr != nil {
			logger.ErrorContext(ctx, "failed to mark note as failed", "note_id", noteID, "error", statusErr)
		}
		return 0, err
	}

	if err := p.notes.SetEmbeddingStatus(ctx, noteID, storage.EmbeddingCompleted); err != nil {
		return 0, fmt.Errorf("failed to mark note as completed: %w", err)
	}

	logger.InfoContext(ctx, "note indexed", "note_id", noteID, "chunks", count)
	return count, nil
}

// reindex replaces all chunk rows and vector points of a note.
func (p *Pipeline) reindex(ctx context.Context, ownerID string, note *storage.ScopedNote) (int, error) {
	// Remove the previous index generation first; points and rows share IDs.
	oldIDs, err := p.chunks.ListIDsByNote(ctx, note.NoteID)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing chunks: %w", err)
	}
	if len(oldIDs) > 0 {
		if err := p.vectors.Delete(ctx, p.collection, oldIDs); err != nil {
			return 0, fmt.Errorf("failed to delete stale vector points: %w", err)
		}
	}
	if err := p.chunks.DeleteByNote(ctx, note.NoteID); err != nil {
		return 0, fmt.Errorf("failed to delete stale chunks: %w", err)
	}

	chunks := p.chunker.ChunkNote(note.Content)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, 0, len(chunks))
	for i, chunk := range chunks {
		record := storage.ChunkRecord{
			ID:         uuid.New().String(),
			NoteID:     note.NoteID,
			ChunkIndex: chunk.Index,
			Content:    chunk.Text,
		}
		if err := p.chunks.Insert(ctx, &record); err != nil {
			return 0, fmt.Errorf("failed to insert chunk: %w", err)
		}

		points = append(points, vectorstore.Point{
			ID:  record.ID,
			Vec: vectors[i],
			Meta: map[string]any{
				"owner_id":      ownerID,
				"note_id":       note.NoteID,
				"chunk_index":   chunk.Index,
				"chapter_id":    note.ChapterID,
				"chapter_title": note.ChapterTitle,
				"book_id":       note.BookID,
				"book_title":    note.BookTitle,
				"series_id":     note.SeriesID,
			},
		})
	}

	if err := p.vectors.Upsert(ctx, p.collection, points); err != nil {
		return 0, fmt.Errorf("failed to upsert vector points: %w", err)
	}

	return len(points), nil
}
