package serviceImp

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/history"
	itinerary "github.com/ego5g/turizm/pkg/itinerary/service"
	"github.com/ego5g/turizm/pkg/metrics"
	"github.com/ego5g/turizm/pkg/plan/repository"
	"github.com/ego5g/turizm/pkg/plan/service"
	"github.com/ego5g/turizm/pkg/planner"
)

type visitor struct {
	mu    sync.Mutex // serializes panel use within one visitor
	store *planner.Store
	panel *history.Panel
}

// DefaultIdle is how long a visitor's store stays loaded after its last use.
const DefaultIdle = 30 * time.Minute

// PlanSvc hosts one planner.Store per active visitor, persisted through the
// storage repository and generating in-process through the itinerary
// service. Idle visitors are dropped and reloaded from storage on demand.
type PlanSvc struct {
	repo    repository.StorageRepository
	gen     itinerary.ItineraryService
	log     zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	idle    time.Duration

	mu       sync.Mutex // guards creating and re-adding visitors
	visitors *cache.Cache
}

func NewPlanService(repo repository.StorageRepository, gen itinerary.ItineraryService, log zerolog.Logger, m *metrics.Metrics, timeout time.Duration) *PlanSvc {
	return newPlanService(repo, gen, log, m, timeout, DefaultIdle, DefaultIdle/2)
}

// newPlanService takes the eviction schedule explicitly; a zero cleanup
// interval leaves expiry to DeleteExpired calls.
func newPlanService(repo repository.StorageRepository, gen itinerary.ItineraryService, log zerolog.Logger, m *metrics.Metrics, timeout, idle, cleanup time.Duration) *PlanSvc {
	s := &PlanSvc{repo: repo, gen: gen, log: log, metrics: m, timeout: timeout, idle: idle,
		visitors: cache.New(idle, cleanup)}
	s.visitors.OnEvicted(s.evicted)
	return s
}

var _ service.PlanService = (*PlanSvc)(nil)

// lookup returns the owner's visitor, loading it from storage if needed.
func (s *PlanSvc) lookup(owner string) *visitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, ok := s.visitors.Get(owner); ok {
		v := x.(*visitor)
		s.keepLocked(owner, v)
		return v
	}
	log := s.log.With().Str("visitor", owner).Logger()
	store := planner.NewStore(
		planner.RequesterFunc(s.request),
		planner.NewStoragePersister(&ownerStorage{repo: s.repo, owner: owner}),
		planner.WithNotifier(planner.NotifierFunc(func(n planner.Notice) { s.notice(log, n) })),
		planner.WithTimeout(s.timeout),
		planner.WithLogger(log),
	)
	v := &visitor{store: store, panel: history.NewPanel(store)}
	s.keepLocked(owner, v)
	return v
}

// existing is lookup for calls that only read or remove: a visitor with no
// loaded store and nothing persisted gets no store.
func (s *PlanSvc) existing(owner string) (*visitor, bool) {
	if _, ok := s.visitors.Get(owner); !ok {
		_, found, err := s.repo.Get(context.Background(), owner, planner.StorageKey)
		if err == nil && !found {
			return nil, false
		}
	}
	return s.lookup(owner), true
}

// keepLocked (re)sets the owner's expiry. Running generations extend it by
// the generation timeout so their results land in the loaded store.
func (s *PlanSvc) keepLocked(owner string, v *visitor) {
	ttl := s.idle
	if s.timeout > 0 && len(v.store.Pending()) > 0 {
		ttl += s.timeout
	}
	s.visitors.Set(owner, v, ttl)
}

func (s *PlanSvc) touch(owner string, v *visitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, ok := s.visitors.Get(owner); ok && x.(*visitor) == v {
		s.keepLocked(owner, v)
	}
}

// evicted puts back a visitor that still has generations running.
func (s *PlanSvc) evicted(owner string, x interface{}) {
	v := x.(*visitor)
	if len(v.store.Pending()) == 0 {
		s.log.Debug().Str("visitor", owner).Msg("unloaded idle visitor")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors.Get(owner); !ok {
		s.visitors.Set(owner, v, s.idle)
	}
}

// Stats reports the loaded visitors and their running generations.
func (s *PlanSvc) Stats() service.Stats {
	st := service.Stats{}
	for _, it := range s.visitors.Items() {
		st.Visitors++
		st.Generating += len(it.Object.(*visitor).store.Pending())
	}
	return st
}

// request runs a generation through the same service as POST /api/generate
// and reports failures with the message that endpoint would return.
func (s *PlanSvc) request(ctx context.Context, r planner.Request) (string, error) {
	text, err := s.gen.Generate(ctx, itinerary.Request{
		Destination: r.Destination,
		Duration:    r.Duration,
		Interests:   r.Interests,
		Language:    r.Language,
	})
	if err != nil {
		var genErr *itinerary.GenerationError
		var inErr *itinerary.InputError
		switch {
		case errors.As(err, &genErr):
			return "", errors.New(genErr.Message)
		case errors.As(err, &inErr):
			return "", errors.New(inErr.Message)
		}
		return "", err
	}
	return text, nil
}

func (s *PlanSvc) notice(log zerolog.Logger, n planner.Notice) {
	ev := log.Debug()
	if n.Kind == planner.NoticeError {
		ev = log.Warn()
	}
	ev.Str("kind", string(n.Kind)).Str("plan", n.PlanID).Msg(n.Message)
}

func (s *PlanSvc) View(owner string) history.View {
	v, ok := s.existing(owner)
	if !ok {
		return history.View{Open: true, Plans: []planner.Plan{}}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel.Open()
	return v.panel.View()
}

func (s *PlanSvc) Get(owner, id string) (planner.Plan, error) {
	v, ok := s.existing(owner)
	if !ok {
		return planner.Plan{}, history.ErrNotFound
	}
	p, ok := v.store.Plan(id)
	if !ok {
		return planner.Plan{}, history.ErrNotFound
	}
	return p, nil
}

func (s *PlanSvc) Generate(owner, lang string, form planner.Form) (planner.Plan, error) {
	if strings.TrimSpace(form.Destination) == "" || strings.TrimSpace(form.Duration) == "" {
		return planner.Plan{}, service.ErrInvalidForm
	}
	v := s.lookup(owner)
	p, task := v.store.GeneratePlanIn(lang, form)
	s.touch(owner, v)
	if s.metrics != nil {
		s.metrics.PlansInFlight.Inc()
	}
	go func() {
		<-task.Done()
		if s.metrics != nil {
			s.metrics.PlansInFlight.Dec()
		}
		s.touch(owner, v)
	}()
	return p, nil
}

func (s *PlanSvc) Cancel(owner, id string) bool {
	x, ok := s.visitors.Get(owner)
	if !ok {
		return false
	}
	return x.(*visitor).store.Cancel(id)
}

// Delete is the confirmed half of the panel's two-phase delete.
func (s *PlanSvc) Delete(owner, id string) error {
	v, ok := s.existing(owner)
	if !ok {
		return history.ErrNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.panel.RequestDelete(id); err != nil {
		return err
	}
	_, err := v.panel.ConfirmDelete()
	return err
}

func (s *PlanSvc) Clear(owner string) error {
	v, ok := s.existing(owner)
	if !ok {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel.RequestClear()
	return v.panel.ConfirmClear()
}

func (s *PlanSvc) Edit(owner, id string) (planner.Form, error) {
	v, ok := s.existing(owner)
	if !ok {
		return planner.Form{}, history.ErrNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panel.Edit(id)
}

func (s *PlanSvc) Export(owner, id string, w io.Writer, f export.Format, opts export.Options) (planner.Plan, error) {
	v, ok := s.existing(owner)
	if !ok {
		return planner.Plan{}, history.ErrNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.panel.Select(id); err != nil {
		return planner.Plan{}, err
	}
	return v.panel.Export(w, f, opts)
}

func (s *PlanSvc) Wait() {
	for _, it := range s.visitors.Items() {
		it.Object.(*visitor).store.Wait()
	}
}

// ownerStorage adapts the repository to planner.Storage for one visitor.
type ownerStorage struct {
	repo  repository.StorageRepository
	owner string
}

func (o *ownerStorage) GetItem(key string) (string, bool, error) {
	return o.repo.Get(context.Background(), o.owner, key)
}

func (o *ownerStorage) SetItem(key, value string) error {
	return o.repo.Set(context.Background(), o.owner, key, value)
}

func (o *ownerStorage) RemoveItem(key string) error {
	return o.repo.Delete(context.Background(), o.owner, key)
}
