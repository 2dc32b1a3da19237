package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyResponse = errors.New("ai: empty response")
	ErrBlocked       = errors.New("ai: response blocked by safety filters")
)

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsQuota reports whether the provider rejected the call for rate/quota reasons.
func (e *APIError) IsQuota() bool { return e.StatusCode == http.StatusTooManyRequests }
