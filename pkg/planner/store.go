package planner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Store is the authoritative Plan list for one visitor. Every mutation is
// persisted before the method returns; notices are delivered after the
// store's lock is released, so a Notifier may call back into the Store.
type Store struct {
	mu         sync.Mutex
	plans      []Plan
	planToEdit *Plan
	lang       string
	tasks      map[string]*Task
	saveFailed bool
	wg         sync.WaitGroup

	requester Requester
	persister Persister
	notifier  Notifier
	now       func() time.Time
	newID     func() string
	timeout   time.Duration
	log       zerolog.Logger
}

type Option func(*Store)

// WithLanguage sets the language sent with new requests (en, ru or ka).
func WithLanguage(lang string) Option { return func(s *Store) { s.lang = lang } }

func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

// WithTimeout bounds each generation request. Zero means no limit.
func WithTimeout(d time.Duration) Option { return func(s *Store) { s.timeout = d } }

func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

// NewStore loads the persisted list. A nil persister keeps the list in memory.
func NewStore(r Requester, p Persister, opts ...Option) *Store {
	s := &Store{
		lang:      "en",
		tasks:     map[string]*Task{},
		requester: r,
		persister: p,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}

	var notes []Notice
	if p != nil {
		plans, err := p.Load()
		if err != nil {
			s.log.Error().Err(err).Msg("load saved plans")
			notes = append(notes, Notice{Kind: NoticeError, Message: msgLoadFailed})
			plans = nil
		}
		s.plans = plans
	}

	// Requests do not survive the process that issued them.
	interrupted := 0
	for i := range s.plans {
		if s.plans[i].Status == StatusGenerating {
			s.plans[i].Status = StatusError
			s.plans[i].Result = msgInterrupted
			interrupted++
		}
	}
	if interrupted > 0 {
		s.log.Warn().Int("plans", interrupted).Msg("settled interrupted generations")
		s.mu.Lock()
		notes = append(notes, s.persistLocked()...)
		s.mu.Unlock()
	}
	s.emit(notes)
	return s
}

// GeneratePlan starts a generation in the store's current language.
func (s *Store) GeneratePlan(f Form) (Plan, *Task) {
	return s.GeneratePlanIn(s.Language(), f)
}

// GeneratePlanIn prepends a generating Plan, persists it and issues one
// request in the background. The Plan keeps the interests as typed; the
// request carries DefaultInterests when they are blank.
func (s *Store) GeneratePlanIn(lang string, f Form) (Plan, *Task) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	plan := Plan{
		ID:          s.newID(),
		Destination: f.Destination,
		Duration:    f.Duration,
		Interests:   f.Interests,
		Timestamp:   s.now().UnixMilli(),
		Status:      StatusGenerating,
	}
	task := newTask(plan.ID, cancel)

	s.mu.Lock()
	s.plans = append([]Plan{plan}, s.plans...)
	s.tasks[plan.ID] = task
	s.wg.Add(1)
	notes := []Notice{{Kind: NoticeLoading, PlanID: plan.ID, Message: msgLoading}}
	notes = append(notes, s.persistLocked()...)
	s.mu.Unlock()
	s.emit(notes)

	req := newRequest(lang, f)
	go s.run(ctx, task, req)

	s.log.Debug().Str("plan", plan.ID).Str("destination", f.Destination).Str("language", lang).Msg("generation started")
	return plan, task
}

func (s *Store) run(ctx context.Context, task *Task, req Request) {
	defer s.wg.Done()
	defer task.cancel()

	text, err := s.requester.Request(ctx, req)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = errors.New(msgTimedOut)
		case errors.Is(ctx.Err(), context.Canceled):
			err = errors.New(msgCancelled)
		}
	}
	s.complete(task, text, err)
}

// complete applies a settled request to the Plan with the task's id. If the
// Plan was deleted meanwhile nothing changes.
func (s *Store) complete(task *Task, text string, err error) {
	s.mu.Lock()
	delete(s.tasks, task.PlanID)
	var notes []Notice
	_, idx, found := lo.FindIndexOf(s.plans, func(p Plan) bool { return p.ID == task.PlanID })
	if found {
		p := &s.plans[idx]
		if err != nil {
			p.Status = StatusError
			p.Result = err.Error()
			notes = append(notes, Notice{Kind: NoticeError, PlanID: p.ID, Message: truncate(msgFailed+err.Error(), maxNoticeLen)})
		} else {
			p.Status = StatusCompleted
			p.Result = text
			notes = append(notes, Notice{Kind: NoticeSuccess, PlanID: p.ID, Message: msgReady})
		}
		notes = append(notes, s.persistLocked()...)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("plan", task.PlanID).Bool("tracked", found).Msg("generation failed")
	} else {
		s.log.Debug().Str("plan", task.PlanID).Bool("tracked", found).Msg("generation completed")
	}
	s.emit(notes)
	task.finish(err)
}

// ClearHistory empties the list and removes the persisted copy. Requests in
// flight keep running; their results are dropped.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.plans = nil
	notes := s.persistLocked()
	notes = append(notes, Notice{Kind: NoticeSuccess, Message: msgCleared})
	s.mu.Unlock()
	s.emit(notes)
}

// DeletePlan removes the Plan with id. It reports whether one was removed.
func (s *Store) DeletePlan(id string) bool {
	s.mu.Lock()
	kept := lo.Reject(s.plans, func(p Plan, _ int) bool { return p.ID == id })
	if len(kept) == len(s.plans) {
		s.mu.Unlock()
		return false
	}
	s.plans = kept
	notes := s.persistLocked()
	notes = append(notes, Notice{Kind: NoticeSuccess, Message: msgDeleted})
	s.mu.Unlock()
	s.emit(notes)
	return true
}

// LoadPlanForEditing stages p's inputs for the request form. p is copied and
// the stored Plan is left as is.
func (s *Store) LoadPlanForEditing(p Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planToEdit = &p
}

func (s *Store) PlanToEdit() (Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.planToEdit == nil {
		return Plan{}, false
	}
	return *s.planToEdit, true
}

func (s *Store) ClearPlanToEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planToEdit = nil
}

// Plans returns a copy of the list in storage order (newest inserted first).
func (s *Store) Plans() []Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

// Sorted returns the list newest first by timestamp.
func (s *Store) Sorted() []Plan { return SortByRecency(s.Plans()) }

func (s *Store) Plan(id string) (Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Find(s.plans, func(p Plan) bool { return p.ID == id })
}

// Cancel aborts the outstanding request for id, if any.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if ok {
		t.Cancel()
	}
	return ok
}

// Pending lists the ids of Plans with a request in flight.
func (s *Store) Pending() []string {
	s.mu.Lock()
	ids := lo.Keys(s.tasks)
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Wait blocks until every request issued so far has settled.
func (s *Store) Wait() { s.wg.Wait() }

func (s *Store) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

func (s *Store) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// persistLocked writes the whole list. A failing save is reported once until
// a later save succeeds; the in-memory list is kept either way.
func (s *Store) persistLocked() []Notice {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.plans); err != nil {
		s.log.Error().Err(err).Int("plans", len(s.plans)).Msg("save plans")
		if s.saveFailed {
			return nil
		}
		s.saveFailed = true
		return []Notice{{Kind: NoticeError, Message: msgSaveFailed}}
	}
	s.saveFailed = false
	return nil
}

func (s *Store) emit(notes []Notice) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		s.notifier.Notify(n)
	}
}
