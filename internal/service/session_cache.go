package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	defaultCacheSize = 10_000
)

// SessionCache fronts the session store. Concurrent misses for one id share a
// single store read.
type SessionCache struct {
	cache *otter.Cache[string, models.Session]
	stats *stats.Counter
	store repository.SessionStore
	now   func() time.Time
}

func NewSessionCache(store repository.SessionStore, ttl time.Duration, size int) *SessionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	counter := stats.NewCounter()
	return &SessionCache{
		cache: otter.Must(&otter.Options[string, models.Session]{
			MaximumSize:      size,
			InitialCapacity:  min(size, 1024),
			ExpiryCalculator: otter.ExpiryWriting[string, models.Session](ttl),
			StatsRecorder:    counter,
		}),
		stats: counter,
		store: store,
		now:   time.Now,
	}
}

// Stats reports lookups so far. Every reader that finds no entry counts a
// miss, including readers that then join a load already in flight.
func (c *SessionCache) Stats() stats.Stats {
	return c.stats.Snapshot()
}

// Load returns the session, reading through to the store on a miss.
func (c *SessionCache) Load(ctx context.Context, id string) (models.Session, error) {
	s, err := c.cache.Get(ctx, id, otter.LoaderFunc[string, models.Session](c.load))
	if err != nil {
		return models.Session{}, err
	}
	if s.Expired(c.now()) {
		c.cache.Invalidate(id)
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (c *SessionCache) load(ctx context.Context, id string) (models.Session, error) {
	s, err := c.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	return *s, nil
}

// Save writes s to the store and then to the cache. A failed write drops
// the cached entry so the next read goes back to the store.
func (c *SessionCache) Save(ctx context.Context, s models.Session) error {
	if err := c.store.Save(ctx, &s); err != nil {
		c.cache.Invalidate(s.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	c.cache.Set(s.ID, s)
	return nil
}

func (c *SessionCache) Invalidate(id string) {
	c.cache.Invalidate(id)
}
