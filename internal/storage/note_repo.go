package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks booknotes/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"fmt"
)

// NoteStore defines the interface for single-note operations used by the
// indexing pipeline.
type NoteStore interface {
	// Get gets a note with its provenance for the given owner.
	// Returns ErrNotFound if the note does not exist or belongs to a
	// different owner.
	Get(ctx context.Context, ownerID, noteID string) (*ScopedNote, error)
	// SetEmbeddingStatus updates the embedding lifecycle status of a note.
	SetEmbeddingStatus(ctx context.Context, noteID, status string) error
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Get gets a note with its provenance for the given owner.
func (r *NoteRepo) Get(ctx context.Context, ownerID, noteID string) (*ScopedNote, error) {
	var note ScopedNote
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT n.id, c.id, c.title, b.id, b.title, COALESCE(b.series_id, ''), n.content, n.embedding_status, n.updated_at
		 FROM notes n
		 JOIN chapters c ON c.id = n.chapter_id
		 JOIN books b ON b.id = c.book_id
		 WHERE n.id = ? AND b.owner_id = ?`,
		noteID, ownerID,
	).Scan(&note.NoteID, &note.ChapterID, &note.ChapterTitle,
		&note.BookID, &note.BookTitle, &note.SeriesID,
		&note.Content, &note.EmbeddingStatus, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	note.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// SetEmbeddingStatus updates the embedding lifecycle status of a note.
func (r *NoteRepo) SetEmbeddingStatus(ctx context.Context, noteID, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET embedding_status = ? WHERE id = ?",
		status, noteID,
	)
	if err != nil {
		return fmt.Errorf("failed to update embedding status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
