// Package activity owns the bounded in-memory ring of recent
// activities, the live-stream consumer that keeps it current, and the
// lossy broadcast fan-out serving WebSocket subscribers.
package activity

import "github.com/mapperinfluences/backend/internal/domain"

// IsSpam decides whether newActivity should be rejected, given the
// current ring contents (head→tail, oldest first) restricted to the
// same actor. The "different id / max-false" counters below are
// per-scan: they count matching prior entries that differ only in the
// beatmap id, and once the documented threshold is exceeded the new
// event is treated as spam.
func IsSpam(queue []domain.Activity, newActivity domain.Activity) bool {
	switch newActivity.EventType {
	case domain.EventEditBio:
		return containsEventType(queue, newActivity.Actor.ID, domain.EventEditBio)

	case domain.EventAddUserBeatmap:
		return addUserBeatmapIsSpam(queue, newActivity)

	case domain.EventAddInfluence, domain.EventEditInfluenceDesc, domain.EventEditInfluenceType:
		return influenceTargetIsSpam(queue, newActivity)

	case domain.EventAddInfluenceBeatmap:
		return addInfluenceBeatmapIsSpam(queue, newActivity)

	default:
		return false
	}
}

func containsEventType(queue []domain.Activity, actorID uint32, eventType domain.EventType) bool {
	for _, a := range queue {
		if a.Actor.ID == actorID && a.EventType == eventType {
			return true
		}
	}
	return false
}

// addUserBeatmapIsSpam rejects when the queue already contains, for
// the same actor: any prior ADD_USER_BEATMAP for the same beatmap id,
// or two or more prior ADD_USER_BEATMAP entries for different
// beatmap ids (short-circuiting on the second).
func addUserBeatmapIsSpam(queue []domain.Activity, newActivity domain.Activity) bool {
	newBeatmapID := beatmapID(newActivity)
	differentCount := 0
	for _, a := range queue {
		if a.Actor.ID != newActivity.Actor.ID || a.EventType != domain.EventAddUserBeatmap {
			continue
		}
		existingID := beatmapID(a)
		if existingID == newBeatmapID {
			return true
		}
		differentCount++
		if differentCount >= 2 {
			return true
		}
	}
	return false
}

// influenceTargetIsSpam rejects ADD_INFLUENCE / EDIT_INFLUENCE_DESC /
// EDIT_INFLUENCE_TYPE when the queue already contains, for the same
// actor and the same target, any of those three event types.
func influenceTargetIsSpam(queue []domain.Activity, newActivity domain.Activity) bool {
	newTarget, ok := newActivity.TargetUserID()
	if !ok {
		return false
	}
	for _, a := range queue {
		if a.Actor.ID != newActivity.Actor.ID {
			continue
		}
		switch a.EventType {
		case domain.EventAddInfluence, domain.EventEditInfluenceDesc, domain.EventEditInfluenceType:
			if target, ok := a.TargetUserID(); ok && target == newTarget {
				return true
			}
		}
	}
	return false
}

// addInfluenceBeatmapIsSpam rejects when the queue already contains
// two or more prior ADD_INFLUENCE_BEATMAP entries for the same target
// and a different beatmap id (the documented intent of the table,
// preferred over the source's ambiguous operator precedence — see
// DESIGN.md).
func addInfluenceBeatmapIsSpam(queue []domain.Activity, newActivity domain.Activity) bool {
	newTarget, ok := newActivity.TargetUserID()
	if !ok {
		return false
	}
	newBeatmapID := beatmapID(newActivity)

	matchCount := 0
	for _, a := range queue {
		if a.Actor.ID != newActivity.Actor.ID || a.EventType != domain.EventAddInfluenceBeatmap {
			continue
		}
		target, ok := a.TargetUserID()
		if !ok || target != newTarget {
			continue
		}
		if beatmapID(a) == newBeatmapID {
			continue
		}
		matchCount++
		if matchCount >= 2 {
			return true
		}
	}
	return false
}

func beatmapID(a domain.Activity) uint32 {
	if a.Beatmap == nil {
		return 0
	}
	return a.Beatmap.GetID()
}
