package ttlcache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New[uint32, string](time.Minute)
	c.Set(1, "alice")

	value, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "alice", value)

	_, ok = c.Get(2)
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New[uint32, string](10 * time.Millisecond)
	c.Set(1, "alice")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestSizeZeroAfterExpiredRead(t *testing.T) {
	c := New[uint32, string](10 * time.Millisecond)
	c.Set(1, "alice")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size(), "a read past TTL must sweep the expired entry")
}

func TestSizeZeroAfterExpiredGetMultiple(t *testing.T) {
	c := New[uint32, string](10 * time.Millisecond)
	c.SetMultiple(map[uint32]string{1: "a", 2: "b"})

	time.Sleep(20 * time.Millisecond)

	got := c.GetMultiple([]uint32{1, 2})
	assert.Empty(t, got)
	assert.Equal(t, 0, c.Size(), "GetMultiple past TTL must sweep expired entries")
}

func TestMultiple(t *testing.T) {
	c := New[uint32, string](time.Minute)
	c.SetMultiple(map[uint32]string{1: "a", 2: "b", 3: "c"})

	got := c.GetMultiple([]uint32{1, 3, 4})
	assert.Equal(t, map[uint32]string{1: "a", 3: "c"}, got)
}

func TestRemoveAndReset(t *testing.T) {
	c := New[uint32, string](time.Minute)
	c.Set(1, "a")
	c.Remove(1)
	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(2, "b")
	c.Reset()
	assert.Equal(t, 0, c.Size())
}

func TestGetOrSetWith(t *testing.T) {
	c := New[uint32, string](time.Minute)
	calls := 0
	fn := func() (string, error) {
		calls++
		return "computed", nil
	}

	value, err := c.GetOrSetWith(1, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = c.GetOrSetWith(1, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls, "fn should only be called on miss")
}

func TestGetOrSetWithError(t *testing.T) {
	c := New[uint32, string](time.Minute)
	_, err := c.GetOrSetWith(1, func() (string, error) {
		return "", errors.New("boom")
	})
	assert.Error(t, err)
	_, ok := c.Get(1)
	assert.False(t, ok, "failed fn must not populate the cache")
}
