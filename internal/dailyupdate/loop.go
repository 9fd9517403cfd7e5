// Package dailyupdate runs the 24-hour background refresh of users
// whose cached snapshot has gone stale.
package dailyupdate

import (
	"context"
	"log/slog"
	"time"

	"github.com/mapperinfluences/backend/internal/osuapi"
	"github.com/mapperinfluences/backend/internal/retry"
)

// Store is the subset of the database façade this loop depends on.
type Store interface {
	GetUsersToUpdate() ([]uint32, error)
	UpsertUser(user osuapi.User, authenticated bool) error
}

// Requester fetches a single upstream user, bearing the
// credential-grant token.
type Requester interface {
	GetUser(ctx context.Context, bearer string, id uint32) (osuapi.User, error)
}

// Run sleeps initialDelay, then repeats every 24h: fetch the stale-user
// list (retried forever via the retry harness) and refresh each one at
// pace spacing, logging and continuing past any individual failure.
func Run(ctx context.Context, store Store, requester Requester, bearer func() string, initialDelay, pace time.Duration) {
	select {
	case <-time.After(initialDelay):
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		updateOnce(ctx, store, requester, bearer, pace)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func updateOnce(ctx context.Context, store Store, requester Requester, bearer func() string, pace time.Duration) {
	users, err := retry.Until(ctx, "get users to update", func(ctx context.Context) ([]uint32, error) {
		return store.GetUsersToUpdate()
	})
	if err != nil {
		return // ctx cancelled
	}

	slog.Info("daily update starting", "user_count", len(users))

	ticker := time.NewTicker(pace)
	defer ticker.Stop()

	for _, id := range users {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		user, err := requester.GetUser(ctx, bearer(), id)
		if err != nil {
			slog.Warn("daily update: failed to fetch user, skipping", "user_id", id, "error", err)
			continue
		}
		if err := store.UpsertUser(user, false); err != nil {
			slog.Warn("daily update: failed to upsert user, skipping", "user_id", id, "error", err)
			continue
		}
	}

	slog.Info("daily update finished")
}
