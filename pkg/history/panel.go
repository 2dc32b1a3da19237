// Package history is the view-model behind the "My Travel Plans" panel:
// selection, confirmed deletes, edit-and-regenerate and export over a
// planner.Store.
package history

import (
	"errors"
	"io"
	"sync"

	"github.com/samber/lo"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/planner"
)

var (
	ErrNotFound         = errors.New("plan not found")
	ErrNotCompleted     = errors.New("only completed plans can be edited")
	ErrNoSelection      = errors.New("no plan selected")
	ErrNothingToConfirm = errors.New("nothing to confirm")
)

type Panel struct {
	mu            sync.Mutex
	store         *planner.Store
	open          bool
	selected      string
	pendingDelete string
	pendingClear  bool
}

func NewPanel(s *planner.Store) *Panel { return &Panel{store: s} }

// View is a snapshot of the panel for rendering.
type View struct {
	Open          bool           `json:"open"`
	Plans         []planner.Plan `json:"plans"`
	Selected      *planner.Plan  `json:"selected,omitempty"`
	PendingDelete string         `json:"pendingDelete,omitempty"`
	PendingClear  bool           `json:"pendingClear,omitempty"`
}

// Open shows the panel and selects the newest completed plan if nothing is
// selected yet.
func (p *Panel) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.syncLocked(p.store.Sorted())
}

// Close hides the panel and drops any unconfirmed delete or clear.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.pendingDelete = ""
	p.pendingClear = false
}

func (p *Panel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Plans returns the store's plans newest first.
func (p *Panel) Plans() []planner.Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	sorted := p.store.Sorted()
	p.syncLocked(sorted)
	return sorted
}

func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	sorted := p.store.Sorted()
	p.syncLocked(sorted)

	v := View{Open: p.open, Plans: sorted, PendingDelete: p.pendingDelete, PendingClear: p.pendingClear}
	if sel, ok := lo.Find(sorted, func(pl planner.Plan) bool { return pl.ID == p.selected }); ok {
		v.Selected = &sel
	}
	return v
}

// syncLocked drops a selection whose plan is gone and, while the panel is
// open, auto-selects the most recent completed plan.
func (p *Panel) syncLocked(sorted []planner.Plan) {
	if p.selected != "" && !lo.ContainsBy(sorted, func(pl planner.Plan) bool { return pl.ID == p.selected }) {
		p.selected = ""
	}
	if !p.open || p.selected != "" {
		return
	}
	if latest, ok := lo.Find(sorted, func(pl planner.Plan) bool { return pl.Status == planner.StatusCompleted }); ok {
		p.selected = latest.ID
	}
}

func (p *Panel) Select(id string) error {
	if _, ok := p.store.Plan(id); !ok {
		return ErrNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
	return nil
}

func (p *Panel) Selected() (planner.Plan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked(p.store.Sorted())
	if p.selected == "" {
		return planner.Plan{}, false
	}
	return p.store.Plan(p.selected)
}

// RequestDelete arms deletion of id; nothing is removed until ConfirmDelete.
func (p *Panel) RequestDelete(id string) error {
	if _, ok := p.store.Plan(id); !ok {
		return ErrNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingDelete = id
	p.pendingClear = false
	return nil
}

func (p *Panel) PendingDelete() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingDelete, p.pendingDelete != ""
}

func (p *Panel) ConfirmDelete() (string, error) {
	p.mu.Lock()
	id := p.pendingDelete
	p.pendingDelete = ""
	if id == "" {
		p.mu.Unlock()
		return "", ErrNothingToConfirm
	}
	if p.selected == id {
		p.selected = ""
	}
	p.mu.Unlock()

	if !p.store.DeletePlan(id) {
		return id, ErrNotFound
	}
	return id, nil
}

func (p *Panel) CancelDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingDelete = ""
}

// RequestClear arms clearing the whole history.
func (p *Panel) RequestClear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingClear = true
	p.pendingDelete = ""
}

func (p *Panel) ConfirmClear() error {
	p.mu.Lock()
	if !p.pendingClear {
		p.mu.Unlock()
		return ErrNothingToConfirm
	}
	p.pendingClear = false
	p.selected = ""
	p.mu.Unlock()

	p.store.ClearHistory()
	return nil
}

func (p *Panel) CancelClear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingClear = false
}

// Edit stages a completed plan's inputs for the request form and closes the
// panel. The plan itself is left untouched.
func (p *Panel) Edit(id string) (planner.Form, error) {
	plan, ok := p.store.Plan(id)
	if !ok {
		return planner.Form{}, ErrNotFound
	}
	if plan.Status != planner.StatusCompleted {
		return planner.Form{}, ErrNotCompleted
	}
	p.store.LoadPlanForEditing(plan)
	p.Close()
	return plan.Form(), nil
}

// Export writes the selected plan in the given format.
func (p *Panel) Export(w io.Writer, f export.Format, opts export.Options) (planner.Plan, error) {
	plan, ok := p.Selected()
	if !ok {
		return planner.Plan{}, ErrNoSelection
	}
	return plan, export.Write(w, plan, f, opts)
}
