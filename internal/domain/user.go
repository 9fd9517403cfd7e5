// Package domain holds the persisted shapes the database façade reads
// and writes: users, influence edges, activities, and the aggregate
// views built on top of them.
package domain

import "time"

// Group is an osu!-assigned badge, carried through from the upstream
// profile into the local record.
type Group struct {
	Colour    string `json:"colour,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Country is the ISO country attached to a user.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ActivityPreferences controls which event kinds are persisted as
// activities for a given user. Documented defaults: login and every
// "remove" variant default to false; every other variant defaults to
// true.
type ActivityPreferences struct {
	Login                bool `json:"login"`
	AddInfluence         bool `json:"add_influence"`
	RemoveInfluence      bool `json:"remove_influence"`
	AddInfluenceBeatmap  bool `json:"add_influence_beatmap"`
	RemoveInfluenceBeatmap bool `json:"remove_influence_beatmap"`
	AddUserBeatmap       bool `json:"add_user_beatmap"`
	RemoveUserBeatmap    bool `json:"remove_user_beatmap"`
	EditBio              bool `json:"edit_bio"`
	EditInfluenceDescription bool `json:"edit_influence_description"`
	EditInfluenceType    bool `json:"edit_influence_type"`
}

// DefaultActivityPreferences is used when a user has no stored
// preference row yet.
func DefaultActivityPreferences() ActivityPreferences {
	return ActivityPreferences{
		Login:                  false,
		AddInfluence:           true,
		RemoveInfluence:        false,
		AddInfluenceBeatmap:    true,
		RemoveInfluenceBeatmap: false,
		AddUserBeatmap:         true,
		RemoveUserBeatmap:      false,
		EditBio:                true,
		EditInfluenceDescription: true,
		EditInfluenceType:      true,
	}
}

// User is the full local profile record, an upstream osu! profile
// extended with this service's own fields (bio, showcased beatmaps,
// influence ordering, activity preferences).
type User struct {
	ID                 uint32               `json:"id"`
	Username           string               `json:"username"`
	AvatarURL          string               `json:"avatar_url"`
	Country            Country              `json:"country"`
	Groups             []Group              `json:"groups"`
	PreviousUsernames  []string             `json:"previous_usernames"`
	RankedBeatmapsetCount     int           `json:"ranked_beatmapset_count"`
	LovedBeatmapsetCount      int           `json:"loved_beatmapset_count"`
	GuestBeatmapsetCount      int           `json:"guest_beatmapset_count"`
	FavouriteBeatmapsetCount  int           `json:"favourite_beatmapset_count"`
	PendingBeatmapsetCount    int           `json:"pending_beatmapset_count"`
	GraveyardBeatmapsetCount  int           `json:"graveyard_beatmapset_count"`
	Bio                string               `json:"bio"`
	Authenticated      bool                 `json:"authenticated"`
	RankedMapper       bool                 `json:"ranked_mapper"`
	Beatmaps           []uint32             `json:"beatmaps"`
	InfluenceOrder     []uint32             `json:"influence_order"`
	ActivityPreferences ActivityPreferences `json:"activity_preferences"`
	Mentions           *int                 `json:"mentions"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// IsRankedMapper computes the ranked-mapper flag: ranked+loved+guest
// beatmap-set counts summing to more than zero.
func (u User) IsRankedMapper() bool {
	return u.RankedBeatmapsetCount+u.LovedBeatmapsetCount+u.GuestBeatmapsetCount > 0
}

// Small is the compact user shape embedded in influence/activity
// records, avoiding the full profile's weight.
type Small struct {
	ID        uint32 `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}
