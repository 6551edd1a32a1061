// Package dashboard is the single entry point of the herd dashboard: it
// combines the record store, the derivations, the expiring cache and the
// persistence gateway, and broadcasts every new value to its subscribers.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/metrics"
	"github.com/mamadbah2/herdboard/internal/service/cache"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
	"github.com/mamadbah2/herdboard/internal/service/records"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
	"github.com/mamadbah2/herdboard/pkg/broadcast"
)

// Messages published on the error channel.
const (
	MsgFetchAnimalsFailed = "Failed to fetch animals"
	MsgComputeStatsFailed = "Failed to compute statistics"
	MsgReportFailed       = "Failed to generate report"
)

// Options tunes a Service.
type Options struct {
	// SimulatedLatency delays every cache miss, standing in for the herd API.
	SimulatedLatency time.Duration
	// SeedDemoHerd loads the demo herd when nothing was persisted.
	SeedDemoHerd bool
	// Now overrides the clock used for report timestamps.
	Now func() time.Time
}

// Service orchestrates reads and writes over the herd.
type Service struct {
	store   *records.Store
	cache   *cache.Cache
	gateway *persistence.Gateway
	metrics *metrics.Metrics
	logger  *zap.Logger

	latency time.Duration
	seed    bool
	now     func() time.Time

	flight singleflight.Group
	// generation moves on every mutation so that reads started earlier do not
	// repopulate the cache with a stale herd. genMu orders those cache writes
	// against invalidation.
	genMu      sync.Mutex
	generation atomic.Uint64

	animals *broadcast.Subject[[]models.Animal]
	stats   *broadcast.Subject[*models.FarmStats]
	reports *broadcast.Subject[models.ReportData]
	loading *broadcast.Subject[bool]
	errs    *broadcast.Subject[string]

	slotMu   sync.RWMutex
	filter   string
	selected *models.Animal
}

// NewService wires a dashboard service.
func NewService(store *records.Store, c *cache.Cache, gateway *persistence.Gateway, m *metrics.Metrics, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   store,
		cache:   c,
		gateway: gateway,
		metrics: m,
		logger:  logger,
		latency: opts.SimulatedLatency,
		seed:    opts.SeedDemoHerd,
		now:     now,
		animals: broadcast.NewBehavior([]models.Animal{}),
		stats:   broadcast.NewBehavior[*models.FarmStats](nil),
		reports: broadcast.New[models.ReportData](),
		loading: broadcast.New[bool](),
		errs:    broadcast.New[string](),
	}
}

// Init hydrates the store, the cache and the last stats snapshot from the
// persistence gateway, seeding the demo herd when configured and empty.
func (s *Service) Init(ctx context.Context) {
	found := s.store.Load(ctx)
	s.cache.Load(ctx)

	if !found && s.seed {
		s.store.Replace(ctx, DemoHerd())
		stats := reporting.ComputeStats(s.store.List())
		s.gateway.Save(ctx, persistence.KeyStats, stats)
		s.logger.Info("demo herd seeded", zap.Int("animals", stats.TotalAnimals))
	}

	var stats models.FarmStats
	if s.gateway.Load(ctx, persistence.KeyStats, &stats) {
		s.stats.Publish(&stats)
	}
	s.animals.Publish(s.store.List())
}

// Animals streams the herd after every fetch or mutation.
func (s *Service) Animals() broadcast.Source[[]models.Animal] { return s.animals }

// Stats streams stats snapshots; the initial value is nil until one exists.
func (s *Service) Stats() broadcast.Source[*models.FarmStats] { return s.stats }

// Reports streams freshly generated reports.
func (s *Service) Reports() broadcast.Source[models.ReportData] { return s.reports }

// Loading streams the loading flag of read operations.
func (s *Service) Loading() broadcast.Source[bool] { return s.loading }

// Errors streams human readable failures of read operations.
func (s *Service) Errors() broadcast.Source[string] { return s.errs }

// GetAnimals returns the herd, from cache when fresh.
func (s *Service) GetAnimals(ctx context.Context) ([]models.Animal, error) {
	s.loading.Publish(true)
	defer s.loading.Publish(false)

	animals, err := s.fetchAnimals(ctx)
	if err != nil {
		s.fail(MsgFetchAnimalsFailed, err)
		return []models.Animal{}, fmt.Errorf("fetch animals: %w", err)
	}
	return animals, nil
}

// GetAnimalByID looks an animal up in the current herd.
func (s *Service) GetAnimalByID(ctx context.Context, id int64) (models.Animal, bool, error) {
	animals, err := s.GetAnimals(ctx)
	if err != nil {
		return models.Animal{}, false, err
	}
	for _, a := range animals {
		if a.ID == id {
			return a, true, nil
		}
	}
	return models.Animal{}, false, nil
}

// GetStats returns aggregate statistics, from cache when fresh.
func (s *Service) GetStats(ctx context.Context) (models.FarmStats, error) {
	s.loading.Publish(true)
	defer s.loading.Publish(false)

	if v, ok := s.cache.Get(cache.KeyStats); ok {
		if stats, ok := v.AsStats(); ok {
			return stats, nil
		}
	}

	res, err := s.share(ctx, cache.KeyStats, func(ctx context.Context) (any, error) {
		gen := s.generation.Load()
		animals, err := s.fetchAnimals(ctx)
		if err != nil {
			return nil, err
		}
		stats := reporting.ComputeStats(animals)
		if s.cacheIfCurrent(ctx, gen, cache.KeyStats, cache.StatsValue(stats)) {
			s.gateway.Save(ctx, persistence.KeyStats, stats)
		}
		s.stats.Publish(&stats)
		return stats, nil
	})
	if err != nil {
		s.fail(MsgComputeStatsFailed, err)
		return models.FarmStats{}, fmt.Errorf("compute stats: %w", err)
	}
	return res.(models.FarmStats), nil
}

// AddAnimal creates an animal from the patch, filling defaults.
func (s *Service) AddAnimal(ctx context.Context, patch models.AnimalPatch) models.Animal {
	animal := s.store.Add(ctx, patch)
	s.metrics.Mutation("add", true)
	s.logger.Info("animal added", zap.Int64("id", animal.ID), zap.String("name", animal.Name))
	s.afterMutation(ctx)
	return animal
}

// UpdateAnimal merges the patch into an existing animal. It reports false
// when id is unknown.
func (s *Service) UpdateAnimal(ctx context.Context, id int64, patch models.AnimalPatch) (models.Animal, bool) {
	animal, ok := s.store.Update(ctx, id, patch)
	s.metrics.Mutation("update", ok)
	if !ok {
		s.logger.Debug("update of unknown animal", zap.Int64("id", id))
		return models.Animal{}, false
	}
	s.afterMutation(ctx)
	return animal, true
}

// DeleteAnimal removes an animal and reports whether it existed.
func (s *Service) DeleteAnimal(ctx context.Context, id int64) bool {
	ok := s.store.Delete(ctx, id)
	s.metrics.Mutation("delete", ok)
	if !ok {
		s.logger.Debug("delete of unknown animal", zap.Int64("id", id))
		return false
	}
	s.afterMutation(ctx)
	return true
}

// GetDashboardWidgets returns the dashboard layout: cached, then saved, then
// the stock layout.
func (s *Service) GetDashboardWidgets(ctx context.Context) []models.DashboardWidget {
	if v, ok := s.cache.Get(cache.KeyWidgets); ok {
		if widgets, ok := v.AsWidgets(); ok {
			return cloneWidgets(widgets)
		}
	}

	var widgets []models.DashboardWidget
	if !s.gateway.Load(ctx, persistence.KeyWidgets, &widgets) || len(widgets) == 0 {
		widgets = models.DefaultWidgets()
	}
	s.cache.Set(ctx, cache.KeyWidgets, cache.WidgetsValue(cloneWidgets(widgets)))
	return widgets
}

// SaveDashboardLayout stores a new layout.
func (s *Service) SaveDashboardLayout(ctx context.Context, widgets []models.DashboardWidget) {
	s.cache.Set(ctx, cache.KeyWidgets, cache.WidgetsValue(cloneWidgets(widgets)))
	s.gateway.Save(ctx, persistence.KeyWidgets, widgets)
}

// ClearCache empties the cache and its persisted copies.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.ClearAll(ctx)
	s.logger.Info("cache cleared")
}

// SetFilter stores the current free-text filter.
func (s *Service) SetFilter(filter string) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	s.filter = filter
}

// Filter returns the current free-text filter.
func (s *Service) Filter() string {
	s.slotMu.RLock()
	defer s.slotMu.RUnlock()
	return s.filter
}

// SelectAnimal stores the current selection; nil clears it.
func (s *Service) SelectAnimal(animal *models.Animal) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if animal == nil {
		s.selected = nil
		return
	}
	selected := animal.Clone()
	s.selected = &selected
}

// SelectedAnimal returns the current selection.
func (s *Service) SelectedAnimal() (models.Animal, bool) {
	s.slotMu.RLock()
	defer s.slotMu.RUnlock()
	if s.selected == nil {
		return models.Animal{}, false
	}
	return s.selected.Clone(), true
}

// FilteredAnimals applies the current filter to the last broadcast herd,
// matching name, type or health status case-insensitively.
func (s *Service) FilteredAnimals() []models.Animal {
	animals, _ := s.animals.Value()
	filter := strings.ToLower(strings.TrimSpace(s.Filter()))

	out := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if filter == "" ||
			strings.Contains(strings.ToLower(a.Name), filter) ||
			strings.Contains(strings.ToLower(a.Type), filter) ||
			strings.Contains(strings.ToLower(string(a.HealthStatus)), filter) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// fetchAnimals serves the herd from cache or, on a miss, from the store after
// the simulated latency. Concurrent misses share one fetch.
func (s *Service) fetchAnimals(ctx context.Context) ([]models.Animal, error) {
	if v, ok := s.cache.Get(cache.KeyAnimals); ok {
		if animals, ok := v.AsAnimals(); ok {
			return cloneAnimals(animals), nil
		}
	}

	res, err := s.share(ctx, cache.KeyAnimals, func(ctx context.Context) (any, error) {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		gen := s.generation.Load()
		animals := s.store.List()
		s.cacheIfCurrent(ctx, gen, cache.KeyAnimals, cache.AnimalsValue(cloneAnimals(animals)))
		s.animals.Publish(cloneAnimals(animals))
		return animals, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAnimals(res.([]models.Animal)), nil
}

// afterMutation invalidates herd-derived entries, recomputes stats
// synchronously and broadcasts the new state. Report entries are left to
// expire on their own.
func (s *Service) afterMutation(ctx context.Context) {
	s.genMu.Lock()
	s.generation.Add(1)
	s.flight.Forget(cache.KeyAnimals)
	s.flight.Forget(cache.KeyStats)
	s.cache.Invalidate(cache.KeyAnimals)
	s.cache.Invalidate(cache.KeyStats)
	s.genMu.Unlock()

	animals := s.store.List()
	stats := reporting.ComputeStats(animals)
	s.gateway.Save(ctx, persistence.KeyStats, stats)
	s.animals.Publish(animals)
	s.stats.Publish(&stats)
}

// share runs fn once for all concurrent callers of key. fn gets a context
// that ignores cancellation, so a caller that gives up only stops its own
// wait and the others still receive the result.
func (s *Service) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) { return fn(shared) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// cacheIfCurrent stores value unless a mutation happened since gen was read.
func (s *Service) cacheIfCurrent(ctx context.Context, gen uint64, key string, value cache.Value) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generation.Load() != gen {
		return false
	}
	s.cache.Set(ctx, key, value)
	return true
}

func (s *Service) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) fail(msg string, err error) {
	s.logger.Error(strings.ToLower(msg), zap.Error(err))
	s.errs.Publish(msg)
}

func cloneAnimals(in []models.Animal) []models.Animal {
	out := make([]models.Animal, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneWidgets(in []models.DashboardWidget) []models.DashboardWidget {
	out := make([]models.DashboardWidget, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}
