package ask

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"booknotes/internal/contextutil"
	"booknotes/internal/storage"
	"booknotes/internal/vectorstore"
)

// Embedder turns query text into an embedding vector using the same model
// that indexed the note chunks.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SimilarityRanker retrieves the note chunks most similar to a question
// within a scope. Scores are cosine similarities in [-1, 1].
type SimilarityRanker struct {
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
	chunks     storage.ChunkStore
}

// NewSimilarityRanker creates a new SimilarityRanker.
func NewSimilarityRanker(embedder Embedder, vectors vectorstore.VectorStore, collection string, chunks storage.ChunkStore) *SimilarityRanker {
	return &SimilarityRanker{
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		chunks:     chunks,
	}
}

// Rank embeds the question and returns the top chunks within the scope with
// similarity of at least threshold, at most topK of them, ordered by
// descending score. An empty result is not an error; it is the primary
// trigger for the low-confidence path.
func (r *SimilarityRanker) Rank(ctx context.Context, ownerID, question string, scope Scope, threshold float32, topK int) ([]RankedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for question")
	}
	queryVector := embeddings[0]

	filters := map[string]string{"owner_id": ownerID}
	if scope.BookID != "" {
		filters["book_id"] = scope.BookID
	} else {
		filters["series_id"] = scope.SeriesID
	}

	results, err := r.vectors.Search(ctx, r.collection, queryVector, topK, threshold, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	chunks := make([]RankedChunk, 0, len(results))
	for _, result := range results {
		record, err := r.chunks.GetByID(ctx, result.PointID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Point exists in the vector store but its chunk row is gone,
				// e.g. the note was deleted between indexing and this query.
				logger.WarnContext(ctx, "skipping stale vector point", "chunk_id", result.PointID)
				continue
			}
			return nil, fmt.Errorf("failed to fetch chunk %s: %w", result.PointID, err)
		}

		chapterID, _ := result.Meta["chapter_id"].(string)
		chapterTitle, _ := result.Meta["chapter_title"].(string)
		bookID, _ := result.Meta["book_id"].(string)
		bookTitle, _ := result.Meta["book_title"].(string)

		chunks = append(chunks, RankedChunk{
			ChunkID:      record.ID,
			NoteID:       record.NoteID,
			ChapterID:    chapterID,
			ChapterTitle: chapterTitle,
			BookID:       bookID,
			BookTitle:    bookTitle,
			Content:      record.Content,
			Score:        result.Score,
		})
	}

	ranked := rankChunks(chunks, threshold, topK)

	logger.InfoContext(ctx, "similarity ranking completed",
		"candidates", len(results), "ranked", len(ranked), "threshold", threshold, "top_k", topK)
	return ranked, nil
}

// rankChunks sorts chunks by descending score, drops entries below
// threshold, and truncates to topK. The sort is stable so equal scores keep
// their insertion order and repeated calls produce identical results.
func rankChunks(chunks []RankedChunk, threshold float32, topK int) []RankedChunk {
	kept := make([]RankedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Score < threshold {
			continue
		}
		kept = append(kept, chunk)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if topK > 0 && len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}
