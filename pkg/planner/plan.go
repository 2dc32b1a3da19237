// Package planner owns a visitor's itinerary history: the Plan list, the
// generating → completed | error lifecycle and its persistence.
package planner

import (
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// DefaultInterests is sent to the generator when the user left interests blank.
const DefaultInterests = "general sightseeing"

// Plan is one generation attempt. Timestamp is Unix milliseconds.
type Plan struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Interests   string `json:"interests"`
	Result      string `json:"result"`
	Timestamp   int64  `json:"timestamp"`
	Status      Status `json:"status"`
}

func (p Plan) Time() time.Time { return time.UnixMilli(p.Timestamp) }

// Form returns the inputs the plan was generated from.
func (p Plan) Form() Form {
	return Form{Destination: p.Destination, Duration: p.Duration, Interests: p.Interests}
}

// Form is what the user typed into the request form.
type Form struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Interests   string `json:"interests"`
}

// Request is the body sent to POST /api/generate.
type Request struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Interests   string `json:"interests"`
	Language    string `json:"language"`
}

func newRequest(lang string, f Form) Request {
	interests := f.Interests
	if strings.TrimSpace(interests) == "" {
		interests = DefaultInterests
	}
	return Request{
		Destination: f.Destination,
		Duration:    f.Duration,
		Interests:   interests,
		Language:    lang,
	}
}

// SortByRecency returns a copy of plans, newest first. Plans with equal
// timestamps keep their relative order.
func SortByRecency(plans []Plan) []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}
