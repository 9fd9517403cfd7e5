package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
)

func fullUserBoard(n int) []domain.LeaderboardUser {
	out := make([]domain.LeaderboardUser, n)
	for i := range out {
		out[i] = domain.LeaderboardUser{User: domain.Small{ID: uint32(i)}, Count: n - i}
	}
	return out
}

func TestUserCachePaginationConcatenatesToFullSlice(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
		calls++
		return fullUserBoard(UserTopN), nil
	}
	c := NewUserCache(time.Minute, fetch)

	const pageSize = 100
	var concatenated []domain.LeaderboardUser
	for start := 0; start < UserTopN; start += pageSize {
		page, err := c.Get(context.Background(), "", false, start, pageSize)
		require.NoError(t, err)
		concatenated = append(concatenated, page...)
	}

	full, err := c.Get(context.Background(), "", false, 0, UserTopN)
	require.NoError(t, err)

	assert.Equal(t, full, concatenated)
	assert.Equal(t, 1, calls, "the full top-N should be fetched once and reused across pages")
}

func TestUserCacheKeyedByCountryAndRankedOnly(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
		calls++
		return fullUserBoard(10), nil
	}
	c := NewUserCache(time.Minute, fetch)

	_, err := c.Get(context.Background(), "US", true, 0, 10)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "JP", true, 0, 10)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "US", true, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "distinct (country, rankedOnly) keys should each fetch once")
}

func TestUserCacheOutOfRangeStartReturnsEmpty(t *testing.T) {
	fetch := func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
		return fullUserBoard(5), nil
	}
	c := NewUserCache(time.Minute, fetch)

	page, err := c.Get(context.Background(), "", false, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
