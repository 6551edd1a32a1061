package records

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
)

const idJitter = 1000

// Store holds the canonical herd list. Every mutation is mirrored through the
// persistence gateway before the call returns.
type Store struct {
	mu      sync.RWMutex
	animals []models.Animal
	issued  map[int64]struct{}

	gateway *persistence.Gateway
	logger  *zap.Logger
	now     func() time.Time
	jitter  func(n int64) int64
}

// NewStore creates an empty store bound to the gateway.
func NewStore(gateway *persistence.Gateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		issued:  make(map[int64]struct{}),
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
		jitter:  rand.Int63n,
	}
}

// Load hydrates the store from the gateway. Missing or malformed data yields
// an empty herd and returns false.
func (s *Store) Load(ctx context.Context) bool {
	var decoded []models.Animal
	found := s.gateway.Load(ctx, persistence.KeyAnimals, &decoded)

	// A failed decode may leave a partial slice behind.
	stored := []models.Animal{}
	if found && decoded != nil {
		stored = decoded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.animals = stored
	for _, a := range stored {
		s.issued[a.ID] = struct{}{}
	}
	s.logger.Info("herd loaded", zap.Int("animals", len(stored)), zap.Bool("persisted", found))
	return found
}

// Replace swaps the whole herd, used for seeding.
func (s *Store) Replace(ctx context.Context, animals []models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.animals = cloneAll(animals)
	for _, a := range animals {
		s.issued[a.ID] = struct{}{}
	}
	s.persistLocked(ctx)
}

// List returns a copy of the herd.
func (s *Store) List() []models.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.animals)
}

// Get returns a copy of the animal with id.
func (s *Store) Get(id int64) (models.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.animals[i].Clone(), true
	}
	return models.Animal{}, false
}

// Add completes the patch with defaults, assigns a fresh id and appends it.
func (s *Store) Add(ctx context.Context, patch models.AnimalPatch) models.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	base := models.Animal{
		Name:         "Unknown",
		Type:         models.DefaultAnimalType,
		BirthDate:    now,
		HealthStatus: models.HealthHealthy,
		LastCheckup:  now,
	}
	animal := patch.Apply(base)
	// Empty strings count as unset on creation.
	if animal.Name == "" {
		animal.Name = base.Name
	}
	if animal.Type == "" {
		animal.Type = base.Type
	}
	if animal.HealthStatus == "" {
		animal.HealthStatus = base.HealthStatus
	}
	animal.ID = s.nextIDLocked(now)

	s.animals = append(s.animals, animal)
	s.persistLocked(ctx)
	return animal.Clone()
}

// Update merges the present fields of patch into the animal with id. It
// reports false, without touching anything, when id is unknown.
func (s *Store) Update(ctx context.Context, id int64, patch models.AnimalPatch) (models.Animal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Animal{}, false
	}
	updated := patch.Apply(s.animals[i])
	updated.ID = id
	s.animals[i] = updated
	s.persistLocked(ctx)
	return updated.Clone(), true
}

// Delete removes the animal with id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.animals = append(s.animals[:i], s.animals[i+1:]...)
	s.persistLocked(ctx)
	return true
}

// nextIDLocked draws millisecond time plus jitter until the id was never
// issued. The base moves forward one millisecond every idJitter attempts.
func (s *Store) nextIDLocked(now time.Time) int64 {
	base := now.UnixMilli()
	for attempt := int64(0); ; attempt++ {
		id := base + attempt/idJitter + s.jitter(idJitter)
		if _, taken := s.issued[id]; !taken {
			s.issued[id] = struct{}{}
			return id
		}
	}
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.animals {
		if s.animals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) {
	// A nil slice would persist as null.
	snapshot := s.animals
	if snapshot == nil {
		snapshot = []models.Animal{}
	}
	s.gateway.Save(ctx, persistence.KeyAnimals, snapshot)
}

func cloneAll(in []models.Animal) []models.Animal {
	out := make([]models.Animal, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
