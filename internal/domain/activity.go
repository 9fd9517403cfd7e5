package domain

import (
	"encoding/json"
	"time"

	"github.com/mapperinfluences/backend/internal/osuapi"
)

// EventType is the flattened discriminator tag of an Activity's
// variant, serialized as SCREAMING_SNAKE_CASE.
type EventType string

const (
	EventLogin                  EventType = "LOGIN"
	EventAddInfluence            EventType = "ADD_INFLUENCE"
	EventRemoveInfluence         EventType = "REMOVE_INFLUENCE"
	EventAddUserBeatmap          EventType = "ADD_USER_BEATMAP"
	EventRemoveUserBeatmap       EventType = "REMOVE_USER_BEATMAP"
	EventAddInfluenceBeatmap     EventType = "ADD_INFLUENCE_BEATMAP"
	EventRemoveInfluenceBeatmap  EventType = "REMOVE_INFLUENCE_BEATMAP"
	EventEditInfluenceDesc       EventType = "EDIT_INFLUENCE_DESC"
	EventEditInfluenceType       EventType = "EDIT_INFLUENCE_TYPE"
	EventEditBio                 EventType = "EDIT_BIO"
)

// BeatmapRef is the "beatmap may arrive as id or as enriched object"
// union: a serialization-only concern. Internally the activity
// tracker always enriches before broadcasting; on decode, either a
// bare numeric id or a full enriched object is accepted.
type BeatmapRef struct {
	ID       uint32
	Enriched *osuapi.EnrichedBeatmap
}

// MarshalJSON emits the enriched object when present, otherwise the
// bare id.
func (b BeatmapRef) MarshalJSON() ([]byte, error) {
	if b.Enriched != nil {
		return json.Marshal(b.Enriched)
	}
	return json.Marshal(b.ID)
}

// UnmarshalJSON accepts either a bare number or an enriched object.
func (b *BeatmapRef) UnmarshalJSON(data []byte) error {
	var id uint32
	if err := json.Unmarshal(data, &id); err == nil {
		b.ID = id
		b.Enriched = nil
		return nil
	}
	var enriched osuapi.EnrichedBeatmap
	if err := json.Unmarshal(data, &enriched); err != nil {
		return err
	}
	b.Enriched = &enriched
	b.ID = enriched.ID
	return nil
}

// GetID returns the beatmap id regardless of which form is populated.
func (b BeatmapRef) GetID() uint32 {
	if b.Enriched != nil {
		return b.Enriched.ID
	}
	return b.ID
}

// Activity is a single append-only feed record. Only the
// variant-specific payload fields relevant to EventType are populated
// (ADD_INFLUENCE_BEATMAP, for one, carries both Influence and Beatmap).
type Activity struct {
	ID        string        `json:"id"`
	Actor     Small         `json:"actor"`
	CreatedAt time.Time     `json:"created_at"`
	EventType EventType     `json:"event_type"`

	Influence     *Small         `json:"influence,omitempty"`
	Beatmap       *BeatmapRef    `json:"beatmap,omitempty"`
	Description   *string        `json:"description,omitempty"`
	InfluenceType *InfluenceType `json:"influence_type,omitempty"`
	Bio           *string        `json:"bio,omitempty"`
}

// TargetUserID returns the influence target's id for event types
// that carry one, and false otherwise. Used by the spam filter, which
// groups prior entries by (actor, target).
func (a Activity) TargetUserID() (uint32, bool) {
	if a.Influence == nil {
		return 0, false
	}
	return a.Influence.ID, true
}
