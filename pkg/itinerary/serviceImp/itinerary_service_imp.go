package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/ego5g/turizm/pkg/ai"
	"github.com/ego5g/turizm/pkg/itinerary/service"
	"github.com/ego5g/turizm/pkg/metrics"
)

// Languages the itinerary may be written in, in preference order.
var Languages = []language.Tag{
	language.English,
	language.Russian,
	language.MustParse("ka"),
}

type ItinerarySvc struct {
	ai      ai.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewItinerarySvc builds the proxy service. timeout bounds one generator call;
// zero leaves it to the caller's context.
func NewItinerarySvc(client ai.Client, log zerolog.Logger, m *metrics.Metrics, timeout time.Duration) *ItinerarySvc {
	return &ItinerarySvc{ai: client, log: log, metrics: m, timeout: timeout}
}

var _ service.ItineraryService = (*ItinerarySvc)(nil)

func (s *ItinerarySvc) Provider() string { return s.ai.Provider() }

func (s *ItinerarySvc) Generate(ctx context.Context, req service.Request) (string, error) {
	if missing := req.Missing(); len(missing) > 0 {
		return "", &service.InputError{
			Kind:    service.ErrMissingField,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}
	tag, ok := LookupLanguage(req.Language)
	if !ok {
		return "", &service.InputError{
			Kind:    service.ErrUnsupportedLanguage,
			Message: fmt.Sprintf("Unsupported language: %s", req.Language),
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.ai.GenerateText(ctx, BuildPrompt(req, tag))
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordGeneration(s.ai.Provider(), "error", elapsed)
		s.log.Error().Err(err).
			Str("provider", s.ai.Provider()).
			Str("model", s.ai.Model()).
			Str("destination", req.Destination).
			Dur("elapsed", elapsed).
			Msg("itinerary generation failed")
		return "", &service.GenerationError{Message: PublicMessage(err), Err: err}
	}

	s.metrics.RecordGeneration(s.ai.Provider(), "ok", elapsed)
	s.log.Info().
		Str("provider", s.ai.Provider()).
		Str("language", req.Language).
		Int("chars", len(text)).
		Dur("elapsed", elapsed).
		Msg("itinerary generated")
	return text, nil
}

// LookupLanguage accepts the exact codes en, ru and ka.
func LookupLanguage(code string) (language.Tag, bool) {
	for _, t := range Languages {
		if t.String() == code {
			return t, true
		}
	}
	return language.Und, false
}

// BuildPrompt renders the generator prompt. The output language is spelled
// out in English ("Georgian", not "ქართული").
func BuildPrompt(req service.Request, tag language.Tag) string {
	var b strings.Builder
	b.WriteString("You are an expert travel planner for Georgia (the country).\n")
	b.WriteString("Generate a concise, compelling, and well-structured travel itinerary based on the following details.\n")
	fmt.Fprintf(&b, "The output must be in %s.\n\n", display.English.Languages().Name(tag))
	fmt.Fprintf(&b, "**Destination:** %s\n", strings.TrimSpace(req.Destination))
	fmt.Fprintf(&b, "**Trip Duration:** %s\n", strings.TrimSpace(req.Duration))
	fmt.Fprintf(&b, "**Main Interests:** %s\n\n", strings.TrimSpace(req.Interests))
	b.WriteString("**Output Requirements:**\n")
	b.WriteString("- Start with a catchy, one-sentence headline.\n")
	b.WriteString("- Follow with a 2-3 sentence summary paragraph.\n")
	b.WriteString("- Provide a day-by-day breakdown (e.g., Day 1, Day 2).\n")
	b.WriteString("- For each day, list 2-4 key activities or sights with brief, enticing descriptions.\n")
	b.WriteString("- Keep the total output under 200 words.\n")
	b.WriteString("- Format the output nicely using Markdown (headings, bold text, lists).\n")
	b.WriteString("- Do not include any pre-amble or post-amble, just the itinerary itself.\n")
	return b.String()
}

// PublicMessage maps a generator failure to the text shown to users.
func PublicMessage(err error) string {
	var apiErr *ai.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsQuota():
		return "The itinerary service is busy right now. Please try again in a minute."
	case errors.Is(err, ai.ErrBlocked):
		return "This request could not be answered. Please rephrase your interests and try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The itinerary service took too long to respond. Please try again."
	default:
		return "An error occurred while generating the itinerary. Please try again later."
	}
}
