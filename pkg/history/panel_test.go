package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/planner"
)

// newStore returns a store whose plans were created one minute apart; plans
// whose destination starts with "fail" settle to error.
func newStore(t *testing.T, destinations ...string) *planner.Store {
	t.Helper()
	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	s := planner.NewStore(
		planner.RequesterFunc(func(_ context.Context, r planner.Request) (string, error) {
			if strings.HasPrefix(r.Destination, "fail") {
				return "", errors.New("quota")
			}
			return "# " + r.Destination + "\n\n### Day 1\n- Walk", nil
		}),
		planner.NewStoragePersister(planner.NewMemoryStorage()),
		planner.WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }),
		planner.WithIDGenerator(func() string { n++; return fmt.Sprintf("p%d", n) }),
	)
	for _, d := range destinations {
		_, task := s.GeneratePlan(planner.Form{Destination: d, Duration: "1 day"})
		_ = task.Wait()
	}
	return s
}

func TestOpenAutoSelectsNewestCompleted(t *testing.T) {
	p := NewPanel(newStore(t, "Tbilisi", "Batumi", "fail-Kazbegi"))

	if _, ok := p.Selected(); ok {
		t.Fatal("closed panel auto-selected")
	}
	p.Open()
	sel, ok := p.Selected()
	if !ok || sel.ID != "p2" {
		t.Errorf("selected = %+v, %v; want p2 (newest completed)", sel, ok)
	}

	plans := p.Plans()
	if plans[0].ID != "p3" || plans[2].ID != "p1" {
		t.Errorf("plans not newest first: %v %v %v", plans[0].ID, plans[1].ID, plans[2].ID)
	}
}

func TestExplicitSelectionWins(t *testing.T) {
	p := NewPanel(newStore(t, "Tbilisi", "Batumi"))
	if err := p.Select("p1"); err != nil {
		t.Fatal(err)
	}
	p.Open()
	if sel, _ := p.Selected(); sel.ID != "p1" {
		t.Errorf("selected = %s", sel.ID)
	}
	if err := p.Select("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Select(nope) = %v", err)
	}
}

func TestAutoSelectWaitsForCompletion(t *testing.T) {
	release := make(chan struct{})
	s := planner.NewStore(planner.RequesterFunc(func(context.Context, planner.Request) (string, error) {
		<-release
		return "# done", nil
	}), nil)
	p := NewPanel(s)

	_, task := s.GeneratePlan(planner.Form{Destination: "Gudauri"})
	p.Open()
	if _, ok := p.Selected(); ok {
		t.Fatal("generating plan was auto-selected")
	}
	close(release)
	_ = task.Wait()
	if sel, ok := p.Selected(); !ok || sel.Destination != "Gudauri" {
		t.Errorf("selected = %+v, %v", sel, ok)
	}
}

func TestTwoPhaseDelete(t *testing.T) {
	s := newStore(t, "Tbilisi", "Batumi")
	p := NewPanel(s)
	p.Open()

	if err := p.RequestDelete("p2"); err != nil {
		t.Fatal(err)
	}
	if len(s.Plans()) != 2 {
		t.Fatal("request alone deleted the plan")
	}
	p.CancelDelete()
	if _, err := p.ConfirmDelete(); !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("confirm after cancel = %v", err)
	}

	_ = p.RequestDelete("p2")
	id, err := p.ConfirmDelete()
	if err != nil || id != "p2" {
		t.Fatalf("ConfirmDelete = %s, %v", id, err)
	}
	if _, ok := s.Plan("p2"); ok || len(s.Plans()) != 1 {
		t.Errorf("plans after delete = %+v", s.Plans())
	}
	if sel, ok := p.Selected(); !ok || sel.ID != "p1" {
		t.Errorf("selection after deleting the selected plan = %+v, %v", sel, ok)
	}
}

func TestTwoPhaseClear(t *testing.T) {
	s := newStore(t, "Tbilisi")
	p := NewPanel(s)

	if err := p.ConfirmClear(); !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("unarmed clear = %v", err)
	}
	p.RequestClear()
	p.CancelClear()
	if err := p.ConfirmClear(); err == nil {
		t.Error("clear went through after cancel")
	}
	p.RequestClear()
	if err := p.ConfirmClear(); err != nil {
		t.Fatal(err)
	}
	if len(s.Plans()) != 0 {
		t.Error("history not cleared")
	}
}

func TestEditStagesFormAndCloses(t *testing.T) {
	s := newStore(t, "Tbilisi", "fail-Mestia")
	p := NewPanel(s)
	p.Open()

	if _, err := p.Edit("p2"); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("edit of failed plan = %v", err)
	}
	before, _ := s.Plan("p1")
	form, err := p.Edit("p1")
	if err != nil {
		t.Fatal(err)
	}
	if form.Destination != "Tbilisi" || form.Duration != "1 day" {
		t.Errorf("form = %+v", form)
	}
	if p.IsOpen() {
		t.Error("panel still open after edit")
	}
	if staged, ok := s.PlanToEdit(); !ok || staged.ID != "p1" {
		t.Errorf("staged = %+v", staged)
	}
	if after, _ := s.Plan("p1"); after != before {
		t.Error("edit mutated the plan")
	}
}

func TestExportSelected(t *testing.T) {
	p := NewPanel(newStore(t, "Sighnaghi"))
	if _, err := p.Export(&bytes.Buffer{}, export.FormatMarkdown, export.Options{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("export without selection = %v", err)
	}

	p.Open()
	var buf bytes.Buffer
	plan, err := p.Export(&buf, export.FormatMarkdown, export.Options{Location: time.UTC})
	if err != nil {
		t.Fatal(err)
	}
	if plan.ID != "p1" || !strings.HasPrefix(buf.String(), "# Sighnaghi") {
		t.Errorf("exported %s: %q", plan.ID, buf.String())
	}
}

func TestView(t *testing.T) {
	p := NewPanel(newStore(t, "Tbilisi", "Batumi"))
	p.Open()
	_ = p.RequestDelete("p1")

	v := p.View()
	if !v.Open || len(v.Plans) != 2 || v.Selected == nil || v.Selected.ID != "p2" || v.PendingDelete != "p1" {
		t.Errorf("view = %+v", v)
	}
	p.Close()
	if v := p.View(); v.Open || v.PendingDelete != "" {
		t.Errorf("closed view = %+v", v)
	}
}
