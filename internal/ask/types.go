package ask

// Scope bounds which notes are eligible for retrieval: a single book or an
// entire series. Exactly one field must be set.
type Scope struct {
	BookID   string
	SeriesID string
}

// Query is one ask request after HTTP decoding.
type Query struct {
	// Question is the user's free-text question.
	Question string
	// Scope bounds retrieval to a book or a series.
	Scope Scope
	// TopK optionally overrides the configured chunk count (RAG mode).
	// Zero means "use the default".
	TopK int
	// SimilarityThreshold optionally overrides the configured minimum
	// cosine similarity (RAG mode). Zero means "use the default".
	SimilarityThreshold float32
}

// Citation references a note chunk that supported the answer, with its
// book and chapter provenance.
type Citation struct {
	ChunkID      string
	ChunkContent string
	Similarity   float32
	BookID       string
	ChapterID    string
	BookTitle    string
	ChapterTitle string
}

// Usage carries metadata about how an answer was produced.
type Usage struct {
	// Model identifies the generation model, or the configured model for
	// fallback answers that never reached the provider.
	Model string
	// LatencyMS is the generation call latency; zero for fallback answers.
	LatencyMS int64
	// RetrievedChunks is the number of chunks that cleared ranking (RAG mode).
	RetrievedChunks int
}

// Answer is the final result of one ask query.
type Answer struct {
	// Text is the generated answer, or the fixed fallback text.
	Text string
	// LowConfidence is set when the system could not ground an answer in
	// sufficient note content, either before generation (empty retrieval)
	// or by the model's own signal.
	LowConfidence bool
	// Citations are present in RAG mode for non-fallback answers.
	Citations []Citation
	// Usage carries model and latency metadata.
	Usage Usage
}

// RankedChunk is a retrieved note chunk with its similarity score and
// provenance, as produced by the similarity ranker.
type RankedChunk struct {
	ChunkID      string
	NoteID       string
	ChapterID    string
	ChapterTitle string
	BookID       string
	BookTitle    string
	Content      string
	Score        float32
}
