package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library_store.go -package=mocks booknotes/internal/storage LibraryStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// LibraryStore defines owner-scoped read access to series, books and notes.
// Every lookup filters by owner ID; a record belonging to another owner is
// indistinguishable from a missing one.
type LibraryStore interface {
	// GetBook gets a book by ID for the given owner. Returns ErrNotFound if
	// the book does not exist or belongs to a different owner.
	GetBook(ctx context.Context, ownerID, bookID string) (*Book, error)
	// GetSeries gets a series by ID for the given owner. Returns ErrNotFound
	// if the series does not exist or belongs to a different owner.
	GetSeries(ctx context.Context, ownerID, seriesID string) (*Series, error)
	// ListNotesByBook returns all notes belonging to chapters of the book,
	// with chapter and book provenance, ordered by chapter position then
	// note creation time. An empty slice is a valid result.
	ListNotesByBook(ctx context.Context, ownerID, bookID string) ([]ScopedNote, error)
	// ListNotesBySeries returns all notes across all books of the series,
	// ordered by series order, chapter position, then note creation time.
	// An empty slice is a valid result.
	ListNotesBySeries(ctx context.Context, ownerID, seriesID string) ([]ScopedNote, error)
}

// LibraryRepo provides owner-scoped read access to the reading library.
// It implements the LibraryStore interface.
type LibraryRepo struct {
	db *sql.DB
}

// NewLibraryRepo creates a new LibraryRepo.
func NewLibraryRepo(db *sql.DB) *LibraryRepo {
	return &LibraryRepo{db: db}
}

// GetBook gets a book by ID for the given owner.
func (r *LibraryRepo) GetBook(ctx context.Context, ownerID, bookID string) (*Book, error) {
	var book Book
	var seriesID sql.NullString
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, series_id, series_order, title, current_page, total_pages, status, created_at
		 FROM books WHERE id = ? AND owner_id = ?`,
		bookID, ownerID,
	).Scan(&book.ID, &book.OwnerID, &seriesID, &book.SeriesOrder, &book.Title,
		&book.CurrentPage, &book.TotalPages, &book.Status, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	book.SeriesID = seriesID.String
	book.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// GetSeries gets a series by ID for the given owner.
func (r *LibraryRepo) GetSeries(ctx context.Context, ownerID, seriesID string) (*Series, error) {
	var series Series
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, created_at FROM series WHERE id = ? AND owner_id = ?",
		seriesID, ownerID,
	).Scan(&series.ID, &series.OwnerID, &series.Name, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}

	series.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &series, nil
}

// ListNotesByBook returns all notes belonging to chapters of the book.
func (r *LibraryRepo) ListNotesByBook(ctx context.Context, ownerID, bookID string) ([]ScopedNote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, c.id, c.title, b.id, b.title, COALESCE(b.series_id, ''), n.content, n.embedding_status, n.updated_at
		 FROM notes n
		 JOIN chapters c ON c.id = n.chapter_id
		 JOIN books b ON b.id = c.book_id
		 WHERE b.id = ? AND b.owner_id = ?
		 ORDER BY c.position, n.created_at, n.id`,
		bookID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes by book: %w", err)
	}
	return scanScopedNotes(rows)
}

// ListNotesBySeries returns all notes across all books of the series.
func (r *LibraryRepo) ListNotesBySeries(ctx context.Context, ownerID, seriesID string) ([]ScopedNote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, c.id, c.title, b.id, b.title, COALESCE(b.series_id, ''), n.content, n.embedding_status, n.updated_at
		 FROM notes n
		 JOIN chapters c ON c.id = n.chapter_id
		 JOIN books b ON b.id = c.book_id
		 WHERE b.series_id = ? AND b.owner_id = ?
		 ORDER BY b.series_order, c.position, n.created_at, n.id`,
		seriesID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes by series: %w", err)
	}
	return scanScopedNotes(rows)
}

func scanScopedNotes(rows *sql.Rows) ([]ScopedNote, error) {
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]ScopedNote, 0)
	for rows.Next() {
		var note ScopedNote
		var updatedAtStr string
		if err := rows.Scan(&note.NoteID, &note.ChapterID, &note.ChapterTitle,
			&note.BookID, &note.BookTitle, &note.SeriesID,
			&note.Content, &note.EmbeddingStatus, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		var err error
		note.UpdatedAt, err = parseTimestamp(updatedAtStr)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return notes, nil
}

// parseTimestamp parses a SQLite DATETIME column value.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// SQLite might use a different format depending on how the value was written
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}
