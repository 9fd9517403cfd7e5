package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilSucceedsImmediately(t *testing.T) {
	calls := 0
	result, err := Until(context.Background(), "test", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestUntilRetriesThenSucceeds(t *testing.T) {
	calls := 0
	result, err := Until(context.Background(), "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("not yet")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestUntilStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Until(ctx, "test", func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUntilVoidPropagatesError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := UntilVoid(ctx, "test", func(ctx context.Context) error {
		return errors.New("never succeeds")
	})
	assert.Error(t, err)
}
