package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient generates embedding vectors via an OpenAI-compatible
// embeddings API.
type EmbeddingsClient struct {
	api          *openai.Client
	model        openai.EmbeddingModel
	expectedSize int // Expected vector size for validation
	timeout      time.Duration
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from QDRANT_VECTOR_SIZE config).
// All embeddings returned by EmbedTexts are validated against this size.
func NewEmbeddingsClient(api *openai.Client, model string, expectedSize int, timeout time.Duration) *EmbeddingsClient {
	return &EmbeddingsClient{
		api:          api,
		model:        openai.EmbeddingModel(model),
		expectedSize: expectedSize,
		timeout:      timeout,
	}
}

// EmbedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text, in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("embeddings request: %w", ErrRateLimited)
		}
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		if len(data.Embedding) != c.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", data.Index, len(data.Embedding), c.expectedSize)
		}
		if data.Index < 0 || data.Index >= len(result) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		result[data.Index] = data.Embedding
	}

	return result, nil
}
