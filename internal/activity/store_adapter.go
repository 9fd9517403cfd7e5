package activity

import (
	"context"

	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/domain"
)

// dbStoreAdapter adapts *db.Store to the Store interface, translating
// db.ActivityNotification to the tracker's own Notification shape so
// this package does not need to import the database wire types
// anywhere but here.
type dbStoreAdapter struct {
	store *db.Store
}

// NewDBStore wraps a *db.Store as a Store.
func NewDBStore(store *db.Store) Store {
	return dbStoreAdapter{store: store}
}

func (a dbStoreAdapter) GetActivities(limit, start int) ([]domain.Activity, error) {
	return a.store.GetActivities(limit, start)
}

func (a dbStoreAdapter) StartActivityStream(ctx context.Context) (<-chan Notification, error) {
	raw, err := a.store.StartActivityStream(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan Notification)
	go func() {
		defer close(out)
		for n := range raw {
			out <- Notification{Action: n.Action, Result: n.Result, Err: n.Err}
		}
	}()
	return out, nil
}
