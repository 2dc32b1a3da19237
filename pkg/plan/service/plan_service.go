package service

import (
	"errors"
	"io"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/history"
	"github.com/ego5g/turizm/pkg/planner"
)

var ErrInvalidForm = errors.New("destination and duration are required")

type PlanService interface {
	// View opens the visitor's history panel and returns it, auto-selecting
	// the newest completed plan.
	View(owner string) history.View
	Get(owner, id string) (planner.Plan, error)
	Generate(owner, lang string, form planner.Form) (planner.Plan, error)
	Cancel(owner, id string) bool
	Delete(owner, id string) error
	Clear(owner string) error
	Edit(owner, id string) (planner.Form, error)
	Export(owner, id string, w io.Writer, f export.Format, opts export.Options) (planner.Plan, error)
	// Wait blocks until every visitor's in-flight generations have settled.
	Wait()
	Stats() Stats
}

// Stats counts the visitors whose history is loaded and their running
// generations.
type Stats struct {
	Visitors   int `json:"visitors"`
	Generating int `json:"generating"`
}
