package handlers

import (
	"encoding/json"
	"net/http"
)

// Error envelope codes.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeNotFound    = "NOT_FOUND"
	codeRateLimited = "RATE_LIMITED"
	codeInternal    = "INTERNAL_ERROR"
)

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes an error envelope response.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}
