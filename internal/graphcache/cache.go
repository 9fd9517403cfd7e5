// Package graphcache holds a single RW-protected snapshot of the
// full influence graph, refreshed from the database when its TTL
// expires.
package graphcache

import (
	"context"
	"sync"
	"time"

	"github.com/mapperinfluences/backend/internal/domain"
)

// Fetcher is the database operation the cache refreshes from on expiry.
type Fetcher func(ctx context.Context) (domain.Graph, error)

// Cache is a single {data, last_update} slot guarded by an RWMutex.
type Cache struct {
	fetch Fetcher
	ttl   time.Duration

	mu         sync.RWMutex
	data       domain.Graph
	lastUpdate time.Time
	loaded     bool
}

// New builds a Cache with the given TTL and fetcher.
func New(ttl time.Duration, fetch Fetcher) *Cache {
	return &Cache{fetch: fetch, ttl: ttl}
}

// Get returns the cached snapshot if it is younger than the TTL,
// otherwise a fresh fetch that also repopulates the cache. The
// returned Graph shares its Nodes and Links slices with the cache.
func (c *Cache) Get(ctx context.Context) (domain.Graph, error) {
	c.mu.RLock()
	fresh := c.loaded && time.Since(c.lastUpdate) < c.ttl
	data := c.data
	c.mu.RUnlock()

	if fresh {
		return data, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		return domain.Graph{}, err
	}

	c.mu.Lock()
	c.data = fetched
	c.lastUpdate = time.Now()
	c.loaded = true
	c.mu.Unlock()

	return fetched, nil
}
