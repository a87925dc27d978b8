package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"booknotes/internal/contextutil"
)

// systemPrompt constrains the model to the supplied note context. The model
// must return a JSON object so the low-confidence signal survives parsing.
const systemPrompt = "You are an assistant that answers questions about a reader's own book notes. " +
	"Answer using only the information in the provided notes context. Never invent facts that are " +
	"not in the notes. Respond with a JSON object of the form " +
	`{"text": string, "low_confidence": boolean}. ` +
	"Set low_confidence to true when the notes do not contain enough information to answer, " +
	"and say so briefly in the text instead of guessing."

// NewAPIClient creates the underlying OpenAI-compatible API client.
// baseURL may be empty to use the provider default.
func NewAPIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Client generates grounded answers via an OpenAI-compatible chat
// completions API with structured JSON output.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new answer generation client.
func NewClient(api *openai.Client, model string, timeout time.Duration) *Client {
	return &Client{
		api:     api,
		model:   model,
		timeout: timeout,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// structuredAnswer is the schema the model is instructed to produce.
// Pointer fields distinguish missing keys from zero values during validation.
type structuredAnswer struct {
	Text          *string `json:"text"`
	LowConfidence *bool   `json:"low_confidence"`
}

// Generate sends the question and assembled note context to the provider and
// returns the schema-validated result. Output that fails validation yields
// ErrMalformedResponse rather than a best-effort answer.
func (c *Client) Generate(ctx context.Context, question, contextText string) (Generation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	userMessage := fmt.Sprintf("%s\n\n%s", question, contextText)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		if isRateLimited(err) {
			return Generation{}, fmt.Errorf("chat completion: %w", ErrRateLimited)
		}
		return Generation{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Generation{}, fmt.Errorf("chat completion returned no choices: %w", ErrMalformedResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var parsed structuredAnswer
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		logger.WarnContext(ctx, "provider returned non-JSON output", "error", err)
		return Generation{}, fmt.Errorf("decoding structured answer: %w", ErrMalformedResponse)
	}
	if parsed.Text == nil || parsed.LowConfidence == nil || *parsed.Text == "" {
		logger.WarnContext(ctx, "provider output missing required fields")
		return Generation{}, fmt.Errorf("structured answer missing fields: %w", ErrMalformedResponse)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return Generation{
		Text:          *parsed.Text,
		LowConfidence: *parsed.LowConfidence,
		Model:         model,
		LatencyMS:     latency,
	}, nil
}

// isRateLimited reports whether the provider rejected the call with a 429.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
