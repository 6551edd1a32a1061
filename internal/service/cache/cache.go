// Package cache memoizes derived dashboard values for a fixed time-to-live and
// mirrors them through the persistence gateway.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/metrics"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
)

// DefaultTTL is how long a value stays fresh.
const DefaultTTL = 5 * time.Minute

// Well-known keys. Report keys are built by the dashboard service.
const (
	KeyAnimals = "animals"
	KeyStats   = "stats"
	KeyWidgets = "dashboard_widgets"
)

// Persister is the slice of the persistence gateway the cache relies on.
type Persister interface {
	Load(ctx context.Context, key string, dst any) bool
	Save(ctx context.Context, key string, v any)
	Remove(ctx context.Context, key string)
}

// Option tweaks a Cache at construction.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache maps keys to values with an expiry instant. An entry is valid only
// when present in both maps and the current time is before its expiry.
type Cache struct {
	mu     sync.Mutex
	values map[string]Value
	expiry map[string]int64 // unix milliseconds

	ttl     time.Duration
	store   Persister
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New builds an empty cache. A non-positive ttl falls back to DefaultTTL.
func New(store Persister, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		values:  make(map[string]Value),
		expiry:  make(map[string]int64),
		ttl:     ttl,
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Load hydrates both maps from their persisted copies.
func (c *Cache) Load(ctx context.Context) {
	values := make(map[string]Value)
	expiry := make(map[string]int64)
	var decodedValues map[string]Value
	var decodedExpiry map[string]int64
	if c.store.Load(ctx, persistence.KeyCache, &decodedValues) && decodedValues != nil {
		values = decodedValues
	}
	if c.store.Load(ctx, persistence.KeyCacheExpiry, &decodedExpiry) && decodedExpiry != nil {
		expiry = decodedExpiry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
	c.expiry = expiry
	c.logger.Info("cache loaded", zap.Int("entries", len(values)))
}

// Get returns the value for key if it is present and not expired.
func (c *Cache) Get(key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.values[key]
	if ok {
		exp, hasExpiry := c.expiry[key]
		ok = hasExpiry && c.now().UnixMilli() < exp
	}
	c.metrics.CacheLookup(key, ok)
	if !ok {
		return Value{}, false
	}
	return value, true
}

// Set stores value with a fresh expiry and persists both maps.
func (c *Cache) Set(ctx context.Context, key string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	c.expiry[key] = c.now().Add(c.ttl).UnixMilli()
	c.persistLocked(ctx)
}

// Invalidate drops key from memory. The persisted copy is rewritten by the
// next Set.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
	delete(c.expiry, key)
}

// ClearAll empties the cache and erases its persisted copies.
func (c *Cache) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = make(map[string]Value)
	c.expiry = make(map[string]int64)
	c.store.Remove(ctx, persistence.KeyCache)
	c.store.Remove(ctx, persistence.KeyCacheExpiry)
}

// Purge drops expired or orphaned entries, persisting when anything changed,
// and returns how many keys were removed.
func (c *Cache) Purge(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixMilli()
	removed := 0
	for key := range c.values {
		if exp, ok := c.expiry[key]; !ok || now >= exp {
			delete(c.values, key)
			delete(c.expiry, key)
			removed++
		}
	}
	for key := range c.expiry {
		if _, ok := c.values[key]; !ok {
			delete(c.expiry, key)
			removed++
		}
	}
	if removed > 0 {
		c.persistLocked(ctx)
	}
	return removed
}

// Len returns the number of stored values, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

func (c *Cache) persistLocked(ctx context.Context) {
	c.store.Save(ctx, persistence.KeyCache, c.values)
	c.store.Save(ctx, persistence.KeyCacheExpiry, c.expiry)
}
