package ask

import (
	"context"
	"fmt"
	"strings"

	"booknotes/internal/contextutil"
	"booknotes/internal/storage"
)

const (
	contextHeader = "--- Context from reading notes ---\n\n"
	contextFooter = "--- End Context ---"
)

// ContextAssembler builds the bounded prompt context from resolved notes or
// ranked chunks. The note content in the assembled context never exceeds
// the configured character budget (the fixed delimiter lines are not
// counted against it).
type ContextAssembler struct {
	budget int
}

// NewContextAssembler creates a ContextAssembler with the given character budget.
func NewContextAssembler(budget int) *ContextAssembler {
	return &ContextAssembler{budget: budget}
}

// AssembleNotes concatenates full note contents annotated with their book
// and chapter titles, in reading order.
//
// When the total exceeds the budget, whole notes are dropped oldest-first
// (by updated_at, then note ID, so the result is deterministic) until the
// remainder fits; the drop is logged. If a single remaining note still
// exceeds the budget its content is cut at the budget boundary.
func (a *ContextAssembler) AssembleNotes(ctx context.Context, notes []storage.ScopedNote) (string, int) {
	logger := contextutil.LoggerFromContext(ctx)

	sections := make([]string, len(notes))
	total := 0
	for i, note := range notes {
		sections[i] = noteSection(note)
		total += len(sections[i])
	}

	included := make([]bool, len(notes))
	for i := range included {
		included[i] = true
	}

	remaining := len(notes)
	dropped := 0
	for total > a.budget && remaining > 1 {
		oldest := -1
		for i, note := range notes {
			if !included[i] {
				continue
			}
			if oldest == -1 || olderThan(note, notes[oldest]) {
				oldest = i
			}
		}
		included[oldest] = false
		total -= len(sections[oldest])
		remaining--
		dropped++
	}

	if dropped > 0 {
		logger.InfoContext(ctx, "context budget exceeded, dropped oldest notes",
			"dropped", dropped, "included", remaining, "budget", a.budget)
	}

	var builder strings.Builder
	builder.WriteString(contextHeader)
	written := 0
	for i, section := range sections {
		if !included[i] {
			continue
		}
		if written+len(section) > a.budget {
			section = section[:a.budget-written]
		}
		builder.WriteString(section)
		written += len(section)
	}
	builder.WriteString(contextFooter)

	return builder.String(), remaining
}

// AssembleChunks concatenates ranked chunks with their provenance, in rank
// order. Chunks past the budget boundary are dropped lowest-ranked first.
func (a *ContextAssembler) AssembleChunks(ctx context.Context, chunks []RankedChunk) (string, int) {
	logger := contextutil.LoggerFromContext(ctx)

	var builder strings.Builder
	builder.WriteString(contextHeader)

	written := 0
	included := 0
	for _, chunk := range chunks {
		section := chunkSection(chunk)
		if written+len(section) > a.budget {
			break
		}
		builder.WriteString(section)
		written += len(section)
		included++
	}
	builder.WriteString(contextFooter)

	if included < len(chunks) {
		logger.InfoContext(ctx, "context budget exceeded, dropped lowest-ranked chunks",
			"dropped", len(chunks)-included, "included", included, "budget", a.budget)
	}

	return builder.String(), included
}

func noteSection(note storage.ScopedNote) string {
	return fmt.Sprintf("[Book: %s] Chapter: %s\nNote: %s\n\n", note.BookTitle, note.ChapterTitle, note.Content)
}

func chunkSection(chunk RankedChunk) string {
	return fmt.Sprintf("[Book: %s] Chapter: %s\nExcerpt: %s\n\n", chunk.BookTitle, chunk.ChapterTitle, chunk.Content)
}

// olderThan orders notes by updated_at, breaking ties by note ID.
func olderThan(a, b storage.ScopedNote) bool {
	if a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.NoteID < b.NoteID
	}
	return a.UpdatedAt.Before(b.UpdatedAt)
}
