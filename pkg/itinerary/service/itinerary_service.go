package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request is the body of POST /api/generate.
type Request struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Interests   string `json:"interests"`
	Language    string `json:"language"`
}

var (
	ErrMissingField        = errors.New("missing required field")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// InputError is a request the proxy refuses before calling the generator.
// Message is safe to show to the caller.
type InputError struct {
	Kind    error
	Message string
}

func (e *InputError) Error() string { return e.Message }
func (e *InputError) Unwrap() error { return e.Kind }

// GenerationError wraps a generator failure. Err carries the full diagnostic,
// Message the simplified text returned to clients.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generate itinerary: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// Missing lists the absent or blank fields in request order.
func (r Request) Missing() []string {
	var out []string
	for _, f := range []struct{ name, v string }{
		{"destination", r.Destination},
		{"duration", r.Duration},
		{"interests", r.Interests},
		{"language", r.Language},
	} {
		if strings.TrimSpace(f.v) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

type ItineraryService interface {
	// Generate validates req and returns the generated Markdown unchanged.
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
}
