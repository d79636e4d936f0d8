package ranking

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// StatsSource loads aggregate feedback scores. Implemented by storage.Store.
type StatsSource interface {
	ScoreStats(ctx context.Context) (model.ScoreStats, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// StatsCache caches ScoreStats for a fixed TTL. The returned maps are shared
// between callers and must not be modified.
type StatsCache struct {
	source StatsSource
	clock  Clock
	ttl    time.Duration

	mu       sync.RWMutex
	cached   *model.ScoreStats
	cachedAt time.Time
}

// NewStatsCache creates a cache over source. A ttl <= 0 disables caching.
func NewStatsCache(source StatsSource, ttl time.Duration) *StatsCache {
	return NewStatsCacheWithClock(source, realClock{}, ttl)
}

// NewStatsCacheWithClock creates a cache with a custom clock (for testing).
func NewStatsCacheWithClock(source StatsSource, clock Clock, ttl time.Duration) *StatsCache {
	return &StatsCache{source: source, clock: clock, ttl: ttl}
}

func (c *StatsCache) fresh() bool {
	return c.ttl > 0 && c.cached != nil && c.clock.Now().Before(c.cachedAt.Add(c.ttl))
}

// Get returns cached stats, reloading them once the TTL has passed.
func (c *StatsCache) Get(ctx context.Context) (model.ScoreStats, error) {
	c.mu.RLock()
	if c.fresh() {
		st := *c.cached
		c.mu.RUnlock()
		return st, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if c.fresh() {
		return *c.cached, nil
	}

	st, err := c.source.ScoreStats(ctx)
	if err != nil {
		return model.ScoreStats{}, goerr.Wrap(err, "loading score stats")
	}
	c.cached = &st
	c.cachedAt = c.clock.Now()
	return st, nil
}

// Invalidate drops the cached stats.
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}
