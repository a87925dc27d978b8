package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_log_store.go -package=mocks booknotes/internal/storage SearchLogStore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SearchLogStore defines the append-only sink for ask query analytics.
type SearchLogStore interface {
	// Insert appends a search log record. If the record ID is empty a new
	// UUID is generated.
	Insert(ctx context.Context, log *SearchLog) error
}

// SearchLogRepo provides methods for search log operations.
// It implements the SearchLogStore interface.
type SearchLogRepo struct {
	db *sql.DB
}

// NewSearchLogRepo creates a new SearchLogRepo.
func NewSearchLogRepo(db *sql.DB) *SearchLogRepo {
	return &SearchLogRepo{db: db}
}

// Insert appends a search log record.
func (r *SearchLogRepo) Insert(ctx context.Context, log *SearchLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO search_logs (id, owner_id, query) VALUES (?, ?, ?)",
		log.ID, log.OwnerID, log.Query,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}
	return nil
}
