package ask

import (
	"context"
	"errors"
	"fmt"

	"booknotes/internal/storage"
)

// ScopeResolver translates a query scope into the set of eligible notes for
// one owner. Read-only; resolving the same scope twice with no intervening
// writes returns the same note set.
type ScopeResolver struct {
	library storage.LibraryStore
}

// NewScopeResolver creates a new ScopeResolver.
func NewScopeResolver(library storage.LibraryStore) *ScopeResolver {
	return &ScopeResolver{library: library}
}

// Validate checks scope exclusivity: exactly one of book ID and series ID
// must be set. Called before any repository access.
func (s Scope) Validate() error {
	if s.BookID != "" && s.SeriesID != "" {
		return &ValidationError{Field: "scope", Message: "book_id and series_id are mutually exclusive"}
	}
	if s.BookID == "" && s.SeriesID == "" {
		return &ValidationError{Field: "scope", Message: "one of book_id or series_id is required"}
	}
	return nil
}

// Resolve returns all notes eligible under the scope for the given owner,
// with chapter and book provenance. The scope target must exist for the
// owner or ErrNotFound is returned; a scope that resolves to zero notes is
// a valid, empty result.
func (r *ScopeResolver) Resolve(ctx context.Context, ownerID string, scope Scope) ([]storage.ScopedNote, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if scope.BookID != "" {
		if _, err := r.library.GetBook(ctx, ownerID, scope.BookID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("book %s: %w", scope.BookID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load book: %w", err)
		}
		notes, err := r.library.ListNotesByBook(ctx, ownerID, scope.BookID)
		if err != nil {
			return nil, fmt.Errorf("failed to list notes for book: %w", err)
		}
		return notes, nil
	}

	if _, err := r.library.GetSeries(ctx, ownerID, scope.SeriesID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("series %s: %w", scope.SeriesID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	notes, err := r.library.ListNotesBySeries(ctx, ownerID, scope.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for series: %w", err)
	}
	return notes, nil
}
