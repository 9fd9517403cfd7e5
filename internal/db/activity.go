package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
)

// activityProjection is the SELECT clause shared by every read of the
// activity table: it resolves the actor reference and the optional
// influence-target reference into embedded Small records.
const activityProjection = `
	*, actor.id AS actor.id, actor.username AS actor.username, actor.avatar_url AS actor.avatar_url,
	influence.id AS influence.id, influence.username AS influence.username, influence.avatar_url AS influence.avatar_url
`

// AddLoginActivity appends a LOGIN activity for userID with the
// current time as its creation timestamp.
func (s *Store) AddLoginActivity(userID uint32) error {
	query := `CREATE activity SET actor = $user, created_at = time::now(), event_type = "LOGIN"`
	if _, err := s.conn.Query(query, map[string]interface{}{"user": userThing(userID)}); err != nil {
		return apperror.Internal(fmt.Errorf("add login activity: %w", err))
	}
	return nil
}

// ActivityFields carries the variant-specific payload of a
// non-login activity record; only the fields relevant to EventType
// are set.
type ActivityFields struct {
	EventType         domain.EventType
	InfluenceTargetID *uint32
	BeatmapID         *uint32
	Description       *string
	InfluenceType     *domain.InfluenceType
	Bio               *string
}

// CreateActivity appends an activity record for actorID. Every
// other resource handler (influence, user) calls this after its
// primary write commits, mirroring the "db has no way of
// differentiating activity kinds automatically" constraint the
// original implementation notes: the caller that knows what it just
// did also records the activity.
func (s *Store) CreateActivity(actorID uint32, fields ActivityFields) error {
	vars := map[string]interface{}{
		"actor":          userThing(actorID),
		"event_type":     fields.EventType,
		"influence":      nil,
		"beatmap":        nil,
		"description":    nil,
		"influence_type": nil,
		"bio":            nil,
	}
	if fields.InfluenceTargetID != nil {
		vars["influence"] = userThing(*fields.InfluenceTargetID)
	}
	if fields.BeatmapID != nil {
		vars["beatmap"] = *fields.BeatmapID
	}
	if fields.Description != nil {
		vars["description"] = *fields.Description
	}
	if fields.InfluenceType != nil {
		vars["influence_type"] = *fields.InfluenceType
	}
	if fields.Bio != nil {
		vars["bio"] = *fields.Bio
	}

	query := `
		CREATE activity SET
			actor = $actor,
			created_at = time::now(),
			event_type = $event_type,
			influence = $influence,
			beatmap = $beatmap,
			description = $description,
			influence_type = $influence_type,
			bio = $bio
	`
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("create activity: %w", err))
	}
	return nil
}

// GetActivities returns a page of activities, newest first.
func (s *Store) GetActivities(limit, start int) ([]domain.Activity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM activity
		ORDER BY created_at DESC
		LIMIT $limit START $start
	`, activityProjection)
	data, err := s.conn.Query(query, map[string]interface{}{"limit": limit, "start": start})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get activities: %w", err))
	}
	return unmarshalRows[domain.Activity](data)
}

// ActivityNotification is one event observed on the live activity
// stream: an action (CREATE, UPDATE, or DELETE) plus the record it
// concerns, or a non-nil Err if the record could not be deserialized
// (observed when an activity record is deleted out-of-band, racing
// the live feed's own encoding of the deletion). The caller
// (internal/activity) decides what to do with each shape: this façade
// only relays what the database sent.
type ActivityNotification struct {
	Action string
	Result domain.Activity
	Err    error
}

// StartActivityStream opens a LIVE SELECT subscription on the
// activity table and returns a channel of notifications. The channel
// is closed when the live query itself ends (connection drop); the
// caller is responsible for reconnecting via the retry harness.
func (s *Store) StartActivityStream(ctx context.Context) (<-chan ActivityNotification, error) {
	liveID, err := s.conn.Live(fmt.Sprintf("SELECT %s FROM activity", activityProjection))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("start activity stream: %w", err))
	}

	raw, err := s.conn.LiveNotifications(liveID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("subscribe live notifications: %w", err))
	}

	out := make(chan ActivityNotification)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-raw:
				if !ok {
					return
				}
				var record domain.Activity
				if err := surrealdb.Unmarshal(notification.Result, &record); err != nil {
					out <- ActivityNotification{Action: string(notification.Action), Err: err}
					continue
				}
				out <- ActivityNotification{Action: string(notification.Action), Result: record}
			}
		}
	}()
	return out, nil
}
