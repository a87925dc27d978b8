package llm

import "errors"

var (
	// ErrRateLimited is returned when the provider rejects a call due to
	// throttling. Callers may retry with backoff; this package never does.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrMalformedResponse is returned when the provider output does not
	// conform to the expected structured schema. The answer is never
	// coerced from a malformed payload.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Generation is the structured result of one answer generation call.
type Generation struct {
	// Text is the generated answer.
	Text string
	// LowConfidence is set when the model reports that the supplied context
	// does not sufficiently support an answer.
	LowConfidence bool
	// Model identifies the model that produced the answer.
	Model string
	// LatencyMS is the wall-clock duration of the provider call in milliseconds.
	LatencyMS int64
}
