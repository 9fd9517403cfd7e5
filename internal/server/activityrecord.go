package server

import (
	"log/slog"

	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/domain"
)

// shouldRecordActivity maps an event type to its corresponding
// activity-preference flag. Unknown/unmapped event types are always
// recorded.
func shouldRecordActivity(prefs domain.ActivityPreferences, eventType domain.EventType) bool {
	switch eventType {
	case domain.EventLogin:
		return prefs.Login
	case domain.EventAddInfluence:
		return prefs.AddInfluence
	case domain.EventRemoveInfluence:
		return prefs.RemoveInfluence
	case domain.EventAddInfluenceBeatmap:
		return prefs.AddInfluenceBeatmap
	case domain.EventRemoveInfluenceBeatmap:
		return prefs.RemoveInfluenceBeatmap
	case domain.EventAddUserBeatmap:
		return prefs.AddUserBeatmap
	case domain.EventRemoveUserBeatmap:
		return prefs.RemoveUserBeatmap
	case domain.EventEditBio:
		return prefs.EditBio
	case domain.EventEditInfluenceDesc:
		return prefs.EditInfluenceDescription
	case domain.EventEditInfluenceType:
		return prefs.EditInfluenceType
	default:
		return true
	}
}

// recordActivity looks up actorID's activity preferences and, if the
// event kind is enabled, writes the record. Never returns an error to
// the caller: a failure here must not fail the handler's primary
// write, which has already committed by the time this runs.
func (s *Server) recordActivity(actorID uint32, fields db.ActivityFields) {
	prefs, err := s.store.GetActivityPreferences(actorID)
	if err != nil {
		slog.Warn("failed to load activity preferences", "user_id", actorID, "error", err)
		return
	}
	if !shouldRecordActivity(prefs, fields.EventType) {
		return
	}
	if err := s.store.CreateActivity(actorID, fields); err != nil {
		slog.Warn("failed to record activity", "user_id", actorID, "event_type", fields.EventType, "error", err)
	}
}
