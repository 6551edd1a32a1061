package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/metrics"
	"github.com/mamadbah2/herdboard/internal/repository"
)

// Keys under which the dashboard state is mirrored.
const (
	KeyAnimals     = "farm_animals"
	KeyStats       = "farm_stats"
	KeyCache       = "farm_cache"
	KeyCacheExpiry = "farm_cache_expiry"
	KeyWidgets     = "dashboard_widgets"
)

// writeTimeout bounds a single write once it is detached from its caller.
const writeTimeout = 5 * time.Second

// Gateway mirrors in-memory state to a key-value backend as JSON blobs.
//
// Durability is best effort: every backend or codec failure is logged and
// counted, never returned, so callers keep working from memory.
type Gateway struct {
	store   repository.KeyValueStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewGateway wires a gateway over the provided backend.
func NewGateway(store repository.KeyValueStore, m *metrics.Metrics, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, metrics: m, logger: logger}
}

// Load decodes the blob under key into dst. It reports false when the key is
// absent, unreadable or malformed.
func (g *Gateway) Load(ctx context.Context, key string, dst any) bool {
	blob, err := g.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false
	}
	if err != nil {
		g.fail("load", key, err)
		return false
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		g.fail("decode", key, err)
		return false
	}
	return true
}

// Save encodes v and writes it under key. The write outlives a cancelled
// caller, since the in-memory state it mirrors has already changed.
func (g *Gateway) Save(ctx context.Context, key string, v any) {
	blob, err := json.Marshal(v)
	if err != nil {
		g.fail("encode", key, err)
		return
	}
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := g.store.Put(ctx, key, blob); err != nil {
		g.fail("save", key, err)
	}
}

// Remove erases key, also past a cancelled caller.
func (g *Gateway) Remove(ctx context.Context, key string) {
	ctx, cancel := detach(ctx)
	defer cancel()
	if err := g.store.Delete(ctx, key); err != nil {
		g.fail("remove", key, err)
	}
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

func (g *Gateway) fail(op, key string, err error) {
	g.metrics.PersistenceFailure(op)
	g.logger.Error("persistence operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
}
