// Package retry implements the Fibonacci backoff harness used by
// every background loop that depends on an external service being up:
// the upstream osu! API, the credentials grant refresh, and the
// SurrealDB live activity subscription.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// maxCooldown caps the backoff so a long-down dependency is retried at
// most this often.
const maxCooldown = 60 * time.Second

// Until repeatedly calls fn until it returns a nil error, sleeping
// between attempts on a Fibonacci-growing cooldown (1, 1, 2, 3, 5, 8,
// 13, 21, 34, 55... seconds, capped at maxCooldown). It returns fn's
// result as soon as fn succeeds, or the zero value and ctx.Err() if
// ctx is cancelled first.
func Until[T any](ctx context.Context, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	cooldown := time.Second
	cooldownLast := time.Duration(0)

	for {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		slog.Warn("retrying after failure", "operation", label, "error", err, "cooldown", cooldown)

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(cooldown):
		}

		next := cooldown + cooldownLast
		if next > maxCooldown {
			next = maxCooldown
		}
		cooldownLast = cooldown
		cooldown = next
	}
}

// UntilVoid is Until for side-effecting operations that return only
// an error.
func UntilVoid(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	_, err := Until(ctx, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
