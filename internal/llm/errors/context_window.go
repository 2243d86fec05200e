package errors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ContextWindowError represents an error when the LLM's context window is exceeded
type ContextWindowError struct {
	StatusCode int
	Message    string
	Provider   string
}

func (e *ContextWindowError) Error() string {
	return fmt.Sprintf("context window exceeded for %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Phrases providers use when the prompt does not fit
var contextWindowIndicators = []string{
	"context length",
	"context window",
	"token limit",
	"maximum context",
	"input too large",
	"prompt is too long",
	"prompt too long",
	"maximum tokens",
	"exceeds maximum",
	"too many tokens",
}

// IsContextWindowError checks if an HTTP response indicates a context window error
func IsContextWindowError(statusCode int, body []byte) bool {
	switch statusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusTooManyRequests:
	default:
		return false
	}

	bodyStr := strings.ToLower(string(body))
	return slices.ContainsFunc(contextWindowIndicators, func(indicator string) bool {
		return strings.Contains(bodyStr, indicator)
	})
}

// AsContextWindowError unwraps err looking for a ContextWindowError
func AsContextWindowError(err error) (*ContextWindowError, bool) {
	var cwErr *ContextWindowError
	if errors.As(err, &cwErr) {
		return cwErr, true
	}
	return nil, false
}
