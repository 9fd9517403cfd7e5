package osuapi

import (
	"context"
	"time"

	"github.com/mapperinfluences/backend/internal/ttlcache"
)

// fetchFunc performs the actual upstream batched fetch for a set of
// missing ids, returning every record it could resolve.
type fetchFunc[T GetID] func(ctx context.Context, bearer string, ids []uint32) ([]T, error)

// CachedRequester wraps a batched upstream fetch with a TTL cache
// keyed by numeric id: GetMultiple computes cache hits/misses under
// lock, fetches the misses without holding the lock, then re-acquires
// the lock to populate the cache before merging and returning. No
// single-flight deduplication is performed — duplicate concurrent
// misses for the same id may cause duplicate upstream fetches, but
// always converge on a consistent cached value.
type CachedRequester[T GetID] struct {
	cache *ttlcache.Cache[uint32, T]
	fetch fetchFunc[T]
}

// NewCachedRequester builds a CachedRequester with the given TTL,
// using fetch to resolve cache misses.
func NewCachedRequester[T GetID](ttl time.Duration, fetch fetchFunc[T]) *CachedRequester[T] {
	return &CachedRequester[T]{
		cache: ttlcache.New[uint32, T](ttl),
		fetch: fetch,
	}
}

// GetMultiple returns a map from id to record for every id in ids
// that could be resolved, either from cache or from a fresh upstream
// fetch.
func (c *CachedRequester[T]) GetMultiple(ctx context.Context, bearer string, ids []uint32) (map[uint32]T, error) {
	hits := c.cache.GetMultiple(ids)

	var misses []uint32
	for _, id := range ids {
		if _, ok := hits[id]; !ok {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return hits, nil
	}

	fetched, err := c.fetch(ctx, bearer, misses)
	if err != nil {
		return nil, err
	}

	toCache := make(map[uint32]T, len(fetched))
	for _, record := range fetched {
		toCache[record.GetID()] = record
	}
	c.cache.SetMultiple(toCache)

	merged := make(map[uint32]T, len(hits)+len(toCache))
	for id, record := range hits {
		merged[id] = record
	}
	for id, record := range toCache {
		merged[id] = record
	}
	return merged, nil
}

// GetOne resolves a single id via GetMultiple.
func (c *CachedRequester[T]) GetOne(ctx context.Context, bearer string, id uint32) (T, bool, error) {
	result, err := c.GetMultiple(ctx, bearer, []uint32{id})
	if err != nil {
		var zero T
		return zero, false, err
	}
	record, ok := result[id]
	return record, ok, nil
}
