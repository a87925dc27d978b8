package ask

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"booknotes/internal/llm"
	"booknotes/internal/storage"
	storage_mocks "booknotes/internal/storage/mocks"
	"booknotes/internal/vectorstore"
	vectorstore_mocks "booknotes/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

type stubGenerator struct {
	mu          sync.Mutex
	gen         llm.Generation
	err         error
	calls       int
	lastContext string
}

func (s *stubGenerator) Generate(ctx context.Context, question, contextText string) (llm.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastContext = contextText
	if s.err != nil {
		return llm.Generation{}, s.err
	}
	return s.gen, nil
}

func (s *stubGenerator) Model() string { return "test-model" }

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubSearchLog is safe for the detached log goroutine.
type stubSearchLog struct {
	mu      sync.Mutex
	err     error
	entries []storage.SearchLog
	logged  chan struct{}
}

func newStubSearchLog() *stubSearchLog {
	return &stubSearchLog{logged: make(chan struct{}, 8)}
}

func (s *stubSearchLog) Insert(ctx context.Context, log *storage.SearchLog) error {
	s.mu.Lock()
	s.entries = append(s.entries, *log)
	err := s.err
	s.mu.Unlock()
	s.logged <- struct{}{}
	return err
}

func (s *stubSearchLog) waitForEntry(t *testing.T) storage.SearchLog {
	t.Helper()
	select {
	case <-s.logged:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search log entry")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[len(s.entries)-1]
}

func simpleEngine(t *testing.T, library storage.LibraryStore, generator Generator, logs storage.SearchLogStore) Engine {
	t.Helper()
	return NewEngine(
		NewScopeResolver(library),
		NewContextAssembler(10000),
		nil,
		generator,
		logs,
		Options{Mode: ModeSimple, DefaultTopK: 8, DefaultThreshold: 0.25},
	)
}

func TestEngine_Ask_ValidatesBeforeRepoAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No EXPECT calls: validation failures must never reach the repository.
	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())

	tests := []struct {
		name    string
		ownerID string
		query   Query
	}{
		{
			name:    "empty question",
			ownerID: "owner-1",
			query:   Query{Question: "   ", Scope: Scope{BookID: "book-1"}},
		},
		{
			name:    "question too long",
			ownerID: "owner-1",
			query:   Query{Question: strings.Repeat("q", 501), Scope: Scope{BookID: "book-1"}},
		},
		{
			name:    "missing owner",
			ownerID: "",
			query:   Query{Question: "valid question", Scope: Scope{BookID: "book-1"}},
		},
		{
			name:    "both scope fields",
			ownerID: "owner-1",
			query:   Query{Question: "valid question", Scope: Scope{BookID: "b", SeriesID: "s"}},
		},
		{
			name:    "no scope fields",
			ownerID: "owner-1",
			query:   Query{Question: "valid question"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Ask(context.Background(), tt.ownerID, tt.query)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Ask() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if generator.callCount() != 0 {
		t.Errorf("generator called %d times on invalid input, want 0", generator.callCount())
	}
}

func TestEngine_Ask_FallbackWhenScopeHasNoNotes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())
	ctx := context.Background()

	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return([]storage.ScopedNote{}, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "anything?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != FallbackText {
		t.Errorf("Ask() text = %q, want the fixed fallback text", answer.Text)
	}
	if !answer.LowConfidence {
		t.Error("Ask() fallback must be low confidence")
	}
	if generator.callCount() != 0 {
		t.Errorf("generator called %d times with empty context, want 0", generator.callCount())
	}
}

func TestEngine_Ask_SimpleModeAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{gen: llm.Generation{
		Text: "The mentor teaches patience.", LowConfidence: false, Model: "gpt-test", LatencyMS: 42,
	}}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "Fear is the mind-killer.", UpdatedAt: time.Now()},
		{NoteID: "note-2", BookTitle: "Dune", ChapterTitle: "Two", Content: "The spice must flow.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "what does the mentor teach?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "The mentor teaches patience." {
		t.Errorf("Ask() text = %q", answer.Text)
	}
	if answer.LowConfidence {
		t.Error("Ask() should not be low confidence")
	}
	if answer.Usage.Model != "gpt-test" || answer.Usage.LatencyMS != 42 {
		t.Errorf("Ask() usage = %+v", answer.Usage)
	}
	for _, want := range []string{"Fear is the mind-killer.", "The spice must flow."} {
		if !strings.Contains(generator.lastContext, want) {
			t.Errorf("generator context missing %q", want)
		}
	}
}

func TestEngine_Ask_LowConfidencePassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{gen: llm.Generation{
		Text: "Your notes don't say.", LowConfidence: true, Model: "gpt-test",
	}}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "Unrelated note.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "who wrote it?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	// The model's own uncertainty signal flows through unchanged, with the
	// model's text rather than the fixed fallback.
	if !answer.LowConfidence {
		t.Error("Ask() must pass through the model's low-confidence flag")
	}
	if answer.Text != "Your notes don't say." {
		t.Errorf("Ask() text = %q", answer.Text)
	}
}

func TestEngine_Ask_GeneratorErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{err: llm.ErrRateLimited}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "A note.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	_, err := engine.Ask(ctx, "owner-1", Query{Question: "anything?", Scope: Scope{BookID: "book-1"}})
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Errorf("Ask() error = %v, want ErrRateLimited", err)
	}
}

func TestEngine_Ask_ScopeNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	generator := &stubGenerator{}
	engine := simpleEngine(t, mockLibrary, generator, newStubSearchLog())
	ctx := context.Background()

	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "missing").Return(nil, storage.ErrNotFound)

	_, err := engine.Ask(ctx, "owner-1", Query{Question: "anything?", Scope: Scope{BookID: "missing"}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Ask() error = %v, want ErrNotFound", err)
	}
	if generator.callCount() != 0 {
		t.Error("generator must not be called for a missing scope target")
	}
}

func TestEngine_Ask_LogsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	logs := newStubSearchLog()
	generator := &stubGenerator{gen: llm.Generation{Text: "ok", Model: "gpt-test"}}
	engine := simpleEngine(t, mockLibrary, generator, logs)
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "A note.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	if _, err := engine.Ask(ctx, "owner-1", Query{Question: "what happened?", Scope: Scope{BookID: "book-1"}}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	entry := logs.waitForEntry(t)
	if entry.OwnerID != "owner-1" || entry.Query != "what happened?" {
		t.Errorf("search log entry = %+v", entry)
	}
}

func TestEngine_Ask_FailedSearchLogDoesNotFailRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	logs := newStubSearchLog()
	logs.err = errors.New("analytics db down")
	generator := &stubGenerator{gen: llm.Generation{Text: "ok", Model: "gpt-test"}}
	engine := simpleEngine(t, mockLibrary, generator, logs)
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "A note.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "what happened?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v, log failures must not fail the request", err)
	}
	if answer.Text != "ok" {
		t.Errorf("Ask() text = %q", answer.Text)
	}
	logs.waitForEntry(t)
}

func TestEngine_Ask_RAGModeWithCitations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	generator := &stubGenerator{gen: llm.Generation{Text: "Spice extends life.", Model: "gpt-test", LatencyMS: 10}}
	embedder := &stubEmbedder{vectors: [][]float32{{0.1, 0.2}}}

	engine := NewEngine(
		NewScopeResolver(mockLibrary),
		NewContextAssembler(10000),
		NewSimilarityRanker(embedder, mockVectors, "test-collection", mockChunks),
		generator,
		newStubSearchLog(),
		Options{Mode: ModeRAG, DefaultTopK: 8, DefaultThreshold: 0.25},
	)
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "About spice.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)

	wantFilters := map[string]string{"owner_id": "owner-1", "book_id": "book-1"}
	mockVectors.EXPECT().
		Search(ctx, "test-collection", []float32{0.1, 0.2}, 8, float32(0.25), wantFilters).
		Return([]vectorstore.SearchResult{
			{PointID: "chunk-1", Score: 0.82, Meta: map[string]any{
				"book_id": "book-1", "book_title": "Dune", "chapter_id": "ch-1", "chapter_title": "One",
			}},
		}, nil)
	mockChunks.EXPECT().GetByID(ctx, "chunk-1").
		Return(&storage.ChunkRecord{ID: "chunk-1", NoteID: "note-1", Content: "The spice extends life."}, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "what does spice do?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "Spice extends life." {
		t.Errorf("Ask() text = %q", answer.Text)
	}
	if len(answer.Citations) != 1 {
		t.Fatalf("Ask() citations = %d, want 1", len(answer.Citations))
	}
	citation := answer.Citations[0]
	if citation.ChunkID != "chunk-1" || citation.Similarity != 0.82 || citation.BookTitle != "Dune" {
		t.Errorf("Ask() citation = %+v", citation)
	}
	if answer.Usage.RetrievedChunks != 1 {
		t.Errorf("Ask() retrieved chunks = %d, want 1", answer.Usage.RetrievedChunks)
	}
	if !strings.Contains(generator.lastContext, "The spice extends life.") {
		t.Error("generator context missing the retrieved chunk")
	}
}

func TestEngine_Ask_RAGFallbackWhenNoChunksClearThreshold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLibrary := storage_mocks.NewMockLibraryStore(ctrl)
	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	generator := &stubGenerator{}
	embedder := &stubEmbedder{vectors: [][]float32{{0.1}}}

	engine := NewEngine(
		NewScopeResolver(mockLibrary),
		NewContextAssembler(10000),
		NewSimilarityRanker(embedder, mockVectors, "test-collection", mockChunks),
		generator,
		newStubSearchLog(),
		Options{Mode: ModeRAG, DefaultTopK: 8, DefaultThreshold: 0.25},
	)
	ctx := context.Background()

	notes := []storage.ScopedNote{
		{NoteID: "note-1", BookTitle: "Dune", ChapterTitle: "One", Content: "About spice.", UpdatedAt: time.Now()},
	}
	mockLibrary.EXPECT().GetBook(ctx, "owner-1", "book-1").Return(&storage.Book{ID: "book-1"}, nil)
	mockLibrary.EXPECT().ListNotesByBook(ctx, "owner-1", "book-1").Return(notes, nil)
	mockVectors.EXPECT().
		Search(ctx, "test-collection", gomock.Any(), 8, float32(0.25), gomock.Any()).
		Return([]vectorstore.SearchResult{}, nil)

	answer, err := engine.Ask(ctx, "owner-1", Query{Question: "unrelated question?", Scope: Scope{BookID: "book-1"}})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != FallbackText || !answer.LowConfidence {
		t.Errorf("Ask() = %+v, want fallback answer", answer)
	}
	if generator.callCount() != 0 {
		t.Error("generator must not be called when retrieval is empty")
	}
}

func TestClampTopK(t *testing.T) {
	tests := []struct {
		name     string
		k        int
		fallback int
		want     int
	}{
		{name: "zero uses fallback", k: 0, fallback: 8, want: 8},
		{name: "negative uses fallback", k: -3, fallback: 8, want: 8},
		{name: "explicit value kept", k: 5, fallback: 8, want: 5},
		{name: "capped at maximum", k: 100, fallback: 8, want: maxTopK},
		{name: "degenerate fallback floors at one", k: 0, fallback: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampTopK(tt.k, tt.fallback); got != tt.want {
				t.Errorf("clampTopK(%d, %d) = %d, want %d", tt.k, tt.fallback, got, tt.want)
			}
		})
	}
}
