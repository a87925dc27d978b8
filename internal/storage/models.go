package storage

import "time"

// Embedding lifecycle states for a note. A note starts as pending when
// created or edited, moves through processing while the indexer runs, and
// ends as completed or failed.
const (
	EmbeddingPending    = "pending"
	EmbeddingProcessing = "processing"
	EmbeddingCompleted  = "completed"
	EmbeddingFailed     = "failed"
)

// Series groups books belonging to one owner.
type Series struct {
	ID        string // UUID
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

// Book groups chapters. A book optionally belongs to a series, in which
// case SeriesOrder gives its position within the series.
type Book struct {
	ID          string // UUID
	OwnerID     string
	SeriesID    string // Empty if the book is not part of a series
	SeriesOrder int
	Title       string
	CurrentPage int
	TotalPages  int
	Status      string // Reading progress status, owned by the CRUD layer
	CreatedAt   time.Time
}

// Chapter groups notes within a book.
type Chapter struct {
	ID       string // UUID
	BookID   string
	Title    string
	Position int
}

// Note is the atomic unit of retrievable content.
type Note struct {
	ID              string // UUID
	ChapterID       string
	Content         string // Free text, at most 10000 characters
	EmbeddingStatus string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScopedNote is a note joined with its chapter, book and series provenance,
// as returned by owner-scoped retrieval queries.
type ScopedNote struct {
	NoteID          string
	ChapterID       string
	ChapterTitle    string
	BookID          string
	BookTitle       string
	SeriesID        string // Empty if the book is not part of a series
	Content         string
	EmbeddingStatus string
	UpdatedAt       time.Time
}

// ChunkRecord is one embedded chunk of a note. The ID doubles as the
// vector store point ID.
type ChunkRecord struct {
	ID         string // UUID (same as the vector store point ID)
	NoteID     string // UUID (foreign key to notes.id)
	ChunkIndex int    // Index within the note (starts at 0)
	Content    string // Chunk text content
}

// SearchLog records one ask question for product analytics.
type SearchLog struct {
	ID        string // UUID
	OwnerID   string
	Query     string
	CreatedAt time.Time
}
