// Package leaderboard pre-materializes the top-N leaderboard per
// query key and serves paginated slices out of memory, refreshing
// from the database on a TTL.
package leaderboard

import (
	"context"
	"time"

	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/ttlcache"
)

const (
	// UserTopN is the size of the pre-materialized user leaderboard.
	UserTopN = 500
	// BeatmapTopN is the size of the pre-materialized beatmap leaderboard.
	BeatmapTopN = 200
)

// userKey identifies one pre-materialized user leaderboard.
type userKey struct {
	rankedOnly bool
	country    string
}

// UserFetcher and BeatmapFetcher are the database operations the
// caches refresh from on a miss.
type UserFetcher func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error)
type BeatmapFetcher func(ctx context.Context, rankedOnly bool, limit, start int) ([]domain.LeaderboardBeatmap, error)

// UserCache pre-materializes up to one full top-UserTopN leaderboard
// per (rankedOnly, country) key.
type UserCache struct {
	cache  *ttlcache.Cache[userKey, []domain.LeaderboardUser]
	fetch  UserFetcher
}

// NewUserCache builds a UserCache with the given TTL and fetcher.
func NewUserCache(ttl time.Duration, fetch UserFetcher) *UserCache {
	return &UserCache{cache: ttlcache.New[userKey, []domain.LeaderboardUser](ttl), fetch: fetch}
}

// Get returns the [start, start+limit) slice of the (rankedOnly,
// country) leaderboard, fetching and caching the full top-N on a
// cache miss.
func (c *UserCache) Get(ctx context.Context, country string, rankedOnly bool, start, limit int) ([]domain.LeaderboardUser, error) {
	key := userKey{rankedOnly: rankedOnly, country: country}
	full, ok := c.cache.Get(key)
	if !ok {
		fetched, err := c.fetch(ctx, country, rankedOnly, UserTopN, 0)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, fetched)
		full = fetched
	}
	return slice(full, start, limit), nil
}

// BeatmapCache pre-materializes up to one full top-BeatmapTopN
// leaderboard per rankedOnly key.
type BeatmapCache struct {
	cache *ttlcache.Cache[bool, []domain.LeaderboardBeatmap]
	fetch BeatmapFetcher
}

// NewBeatmapCache builds a BeatmapCache with the given TTL and fetcher.
func NewBeatmapCache(ttl time.Duration, fetch BeatmapFetcher) *BeatmapCache {
	return &BeatmapCache{cache: ttlcache.New[bool, []domain.LeaderboardBeatmap](ttl), fetch: fetch}
}

// Get returns the [start, start+limit) slice of the rankedOnly
// beatmap leaderboard, fetching and caching the full top-N on a cache
// miss.
func (c *BeatmapCache) Get(ctx context.Context, rankedOnly bool, start, limit int) ([]domain.LeaderboardBeatmap, error) {
	full, ok := c.cache.Get(rankedOnly)
	if !ok {
		fetched, err := c.fetch(ctx, rankedOnly, BeatmapTopN, 0)
		if err != nil {
			return nil, err
		}
		c.cache.Set(rankedOnly, fetched)
		full = fetched
	}
	return slice(full, start, limit), nil
}

func slice[T any](full []T, start, limit int) []T {
	if start < 0 {
		start = 0
	}
	if start >= len(full) {
		return nil
	}
	end := start + limit
	if end > len(full) {
		end = len(full)
	}
	return full[start:end]
}
