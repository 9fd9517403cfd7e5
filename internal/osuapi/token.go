package osuapi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mapperinfluences/backend/internal/retry"
)

// refreshMargin is how long before expiry the token is refreshed.
const refreshMargin = 120 * time.Second

// TokenManager owns the credential-grant (client-credentials) bearer
// token: a background goroutine refreshes it forever, and callers
// read the current value behind a read-write lock. Initialization is
// lazy — the refresh loop is not started until the first call to
// GetAccessToken — but serialized so that the first caller always
// observes a non-empty token before it returns, and every later
// caller skips the handshake entirely.
//
// The original used a pair of one-shot channels to hand off "start
// the loop" and "the first token is ready" signals; a sync.Once plus
// a close-once "ready" channel gives the same guarantee with fewer
// moving parts.
type TokenManager struct {
	requester Requester

	mu    sync.RWMutex
	token string

	startOnce sync.Once
	ready     chan struct{}
}

// NewTokenManager builds a TokenManager. The refresh loop is not
// started until the first GetAccessToken call.
func NewTokenManager(requester Requester) *TokenManager {
	return &TokenManager{
		requester: requester,
		ready:     make(chan struct{}),
	}
}

// GetAccessToken returns the current credential-grant token, starting
// the refresh loop on the first call and blocking until that first
// token is acquired.
func (m *TokenManager) GetAccessToken(ctx context.Context) (string, error) {
	if token := m.currentToken(); token != "" {
		return token, nil
	}

	m.startOnce.Do(func() {
		go m.refreshLoop(context.Background())
	})

	select {
	case <-m.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	token := m.currentToken()
	if token == "" {
		return "", fmt.Errorf("token manager: token still empty after ready signal")
	}
	return token, nil
}

func (m *TokenManager) currentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *TokenManager) setToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// refreshLoop runs forever: acquire a token via the retry harness,
// store it (signaling readiness on the very first iteration), sleep
// until expires_in-refreshMargin, repeat.
func (m *TokenManager) refreshLoop(ctx context.Context) {
	first := true
	for {
		auth, _ := retry.Until(ctx, "credential-grant token refresh", func(ctx context.Context) (AuthToken, error) {
			return m.requester.GetCredentialsToken(ctx)
		})

		m.setToken(auth.AccessToken)
		if first {
			close(m.ready)
			first = false
		}

		sleep := time.Duration(auth.ExpiresIn)*time.Second - refreshMargin
		if sleep <= 0 {
			sleep = time.Second
		}
		slog.Info("credential-grant token refreshed", "expires_in", auth.ExpiresIn, "next_refresh", sleep)

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return
		}
	}
}
