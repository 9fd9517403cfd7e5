package osuapi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerLazyStart(t *testing.T) {
	replay := NewReplayRequester()
	replay.AuthToken = AuthToken{AccessToken: "first-token", ExpiresIn: 3600}

	m := NewTokenManager(replay)
	assert.Empty(t, m.currentToken(), "no request should fire before the first GetAccessToken call")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	token, err := m.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first-token", token)
}

func TestTokenManagerConcurrentCallersShareOneStart(t *testing.T) {
	replay := NewReplayRequester()
	replay.AuthToken = AuthToken{AccessToken: "shared-token", ExpiresIn: 3600}

	m := NewTokenManager(replay)

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			token, err := m.GetAccessToken(ctx)
			require.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		assert.Equal(t, "shared-token", token)
	}

	getCredentialsCalls := 0
	for _, call := range replay.Calls {
		if call == "GetCredentialsToken" {
			getCredentialsCalls++
		}
	}
	assert.Equal(t, 1, getCredentialsCalls, "only one upstream token request should fire for concurrent first callers")
}
