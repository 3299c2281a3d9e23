package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"signalgen/internal/logging"
	"signalgen/internal/signal"
)

// Loader fetches a catalog from the generation service.
type Loader interface {
	Catalog(ctx context.Context, family signal.Family) (signal.PatternCatalog, error)
}

type entry struct {
	catalog  signal.PatternCatalog
	loadedAt time.Time
}

// Cache provides thread-safe, coalesced access to per-family catalogs.
type Cache struct {
	loader Loader
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[signal.Family]entry
	epoch   uint64
}

// Option customizes the cache.
type Option func(*Cache)

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache wraps loader. A ttl of zero disables reuse: every Load reaches
// the loader, though concurrent loads are still coalesced.
func NewCache(loader Loader, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	if ttl < 0 {
		ttl = 0
	}
	c := &Cache{
		loader:  loader,
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "catalog"),
		now:     time.Now,
		entries: make(map[signal.Family]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL reports the configured reuse window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Lookup returns a cached catalog that is still within its TTL.
func (c *Cache) Lookup(family signal.Family) (signal.PatternCatalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freshLocked(family)
}

func (c *Cache) freshLocked(family signal.Family) (signal.PatternCatalog, bool) {
	if c.ttl == 0 {
		return signal.PatternCatalog{}, false
	}
	e, ok := c.entries[family]
	if !ok || c.now().Sub(e.loadedAt) >= c.ttl {
		return signal.PatternCatalog{}, false
	}
	return e.catalog, true
}

// Load returns the catalog for family, fetching it when no fresh copy is
// cached. The caller's context bounds how long it waits; an abandoned load
// still completes for any other waiters.
func (c *Cache) Load(ctx context.Context, family signal.Family) (signal.PatternCatalog, error) {
	c.mu.RLock()
	if cached, ok := c.freshLocked(family); ok {
		c.mu.RUnlock()
		c.logger.Debug("catalog cache hit", logging.String("family", string(family)))
		return cached, nil
	}
	epoch := c.epoch
	c.mu.RUnlock()

	ch := c.group.DoChan(string(family), func() (any, error) {
		started := c.now()
		loaded, err := c.loader.Catalog(context.WithoutCancel(ctx), family)
		if err != nil {
			c.logger.Debug("catalog load failed",
				logging.String("family", string(family)),
				logging.Error(err))
			return nil, err
		}
		c.mu.Lock()
		if c.epoch == epoch {
			c.entries[family] = entry{catalog: loaded, loadedAt: started}
		}
		c.mu.Unlock()
		c.logger.Debug("catalog loaded",
			logging.String("family", string(family)),
			logging.Int("categories", len(loaded.Categories)))
		return loaded, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return signal.PatternCatalog{}, res.Err
		}
		return res.Val.(signal.PatternCatalog), nil
	case <-ctx.Done():
		return signal.PatternCatalog{}, ctx.Err()
	}
}

// Invalidate drops the cached catalog for family.
func (c *Cache) Invalidate(family signal.Family) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, family)
	c.epoch++
	c.group.Forget(string(family))
}

// Reset drops every cached catalog. Loads already in flight will not
// repopulate the cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[signal.Family]entry)
	c.epoch++
	for _, family := range signal.Families() {
		c.group.Forget(string(family))
	}
	c.logger.Debug("catalog cache reset")
}
