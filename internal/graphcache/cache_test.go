package graphcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
)

func TestCacheRefetchesAfterTTL(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (domain.Graph, error) {
		calls++
		return domain.Graph{Nodes: []domain.GraphUser{{ID: uint32(calls)}}}, nil
	}
	c := New(10*time.Millisecond, fetch)

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	second, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call within TTL should be served from cache")
	assert.Equal(t, first, second)

	time.Sleep(20 * time.Millisecond)

	third, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "call after TTL expiry should refetch")
	assert.NotEqual(t, first, third)
}
