// Package catalog holds the process-wide, top-K ranked list of
// recommended channels and notifies observers on every replacement.
package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// DefaultSize is the number of entries retained on every update.
const DefaultSize = 5

// Observer receives the full ranking after every catalog replacement.
// Delivery is synchronous and best-effort.
type Observer interface {
	UpdateCatalog(ctx context.Context, entries []model.CatalogEntry)
}

type subscription struct {
	id       string
	observer Observer
}

// Cache is the shared ranked catalog. Exactly one instance exists per
// process; it is constructed during startup wiring and passed by
// handle to every component that needs it. Update is the only
// mutation path and is atomic with respect to readers.
type Cache struct {
	mu      sync.RWMutex
	entries []model.CatalogEntry
	subs    []subscription
	size    int

	log logger.Logger
}

// New creates an empty catalog cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		size: DefaultSize,
		log:  logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update replaces the held ranking with the top K entries of ranking
// sorted by score descending (stable for equal scores), then notifies
// every observer with a snapshot of the new ranking. If ranking has
// at most K entries none are dropped.
func (c *Cache) Update(ctx context.Context, ranking []model.CatalogEntry) {
	ranked := make([]model.CatalogEntry, len(ranking))
	copy(ranked, ranking)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > c.size {
		ranked = ranked[:c.size]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = ranked
	metrics.RecordCatalogUpdate()
	metrics.UpdateCatalogSize(len(ranked))

	for _, s := range c.subs {
		c.deliver(ctx, s, c.snapshot())
	}
}

// Entries returns a snapshot of the current ranking.
func (c *Cache) Entries(ctx context.Context) []model.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

// Size returns the number of entries currently held.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// snapshot copies the ranking. Callers must hold at least a read lock.
func (c *Cache) snapshot() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// deliver invokes one observer, isolating panics so a faulty observer
// cannot block delivery to the rest.
func (c *Cache) deliver(ctx context.Context, s subscription, entries []model.CatalogEntry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordObserverPanic("catalog")
			c.log.Error(ctx, "catalog observer panicked",
				logger.String("subscription", s.id),
				logger.Any("panic", r),
			)
		}
	}()
	s.observer.UpdateCatalog(ctx, entries)
}

// Subscribe registers an observer and returns its subscription id.
// Re-subscribing the same observer is a no-op returning the existing
// id.
func (c *Cache) Subscribe(obs Observer) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.subs {
		if s.observer == obs {
			return s.id
		}
	}
	id := uuid.NewString()
	c.subs = append(c.subs, subscription{id: id, observer: obs})
	return id
}

// Unsubscribe removes the observer registered under id.
func (c *Cache) Unsubscribe(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}
