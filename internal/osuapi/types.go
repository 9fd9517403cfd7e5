// Package osuapi is the upstream osu! v2 API client: authentication,
// single- and batched-by-id fetches, a TTL-cached decorator keyed by
// numeric id, and the "combined" requester that stitches beatmaps and
// their mapper together into the enriched shape handlers return.
package osuapi

// AuthToken is the response body of both the authorization-code and
// client-credentials token endpoints.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// GetID is implemented by every upstream record type so the cached
// requester can key the TTL cache off the id it already carries.
type GetID interface {
	GetID() uint32
}

// Country is the ISO country attached to a user.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Group is an osu!-assigned user group badge (BNG, NAT, GMT, ...).
type Group struct {
	Colour     *string `json:"colour"`
	Name       string  `json:"name"`
	ShortName  string  `json:"short_name"`
}

// User is the upstream osu! user profile, as returned by
// /users/{id}, /me, and embedded inside beatmapset responses.
type User struct {
	ID                 uint32  `json:"id"`
	Username           string  `json:"username"`
	AvatarURL          string  `json:"avatar_url"`
	Country            Country `json:"country"`
	Groups             []Group `json:"groups"`
	PreviousUsernames  []string `json:"previous_usernames"`
	RankedBeatmapsetCount    int `json:"ranked_beatmapset_count"`
	RankedAndApprovedBeatmapsetCount int `json:"ranked_and_approved_beatmapset_count"`
	LovedBeatmapsetCount     int `json:"loved_beatmapset_count"`
	FavouriteBeatmapsetCount int `json:"favourite_beatmapset_count"`
	PendingBeatmapsetCount   int `json:"pending_beatmapset_count"`
	GraveyardBeatmapsetCount int `json:"graveyard_beatmapset_count"`
	GuestBeatmapsetCount     int `json:"guest_beatmapset_count"`
}

// GetID implements GetID.
func (u User) GetID() uint32 { return u.ID }

// IsRankedMapper reports whether this user's ranked+loved+guest
// beatmap-set counts sum to more than zero.
func (u User) IsRankedMapper() bool {
	return u.RankedAndApprovedBeatmapsetCount+u.LovedBeatmapsetCount+u.GuestBeatmapsetCount > 0
}

// MultiUserResponse wraps the "users" array outer layer returned by
// the batched /users endpoint.
type MultiUserResponse struct {
	Users []User `json:"users"`
}

// SearchUserData is one entry of a user search result.
type SearchUserData struct {
	ID        uint32 `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// SearchUserResponse wraps the user-search outer layer.
type SearchUserResponse struct {
	User struct {
		Data []SearchUserData `json:"data"`
	} `json:"user"`
}

// Cover is the set of cover image sizes attached to a beatmapset.
type Cover struct {
	Cover    string `json:"cover"`
	Card     string `json:"card"`
	List     string `json:"list"`
	Slimcover string `json:"slimcover"`
}

// BeatmapsetRelatedUser is a contributor reference embedded in a
// beatmapset.
type BeatmapsetRelatedUser struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
}

// Beatmapset is the parent set a single difficulty (Beatmap) belongs
// to; it carries its own creator id/username and cover art.
type Beatmapset struct {
	ID          uint32                  `json:"id"`
	Artist      string                  `json:"artist"`
	Title       string                  `json:"title"`
	Creator     string                  `json:"creator"`
	UserID      uint32                  `json:"user_id"`
	Covers      Cover                   `json:"covers"`
	RelatedUsers []BeatmapsetRelatedUser `json:"related_users,omitempty"`
}

// Beatmap is a single difficulty, as returned by /beatmaps/{id}.
type Beatmap struct {
	ID         uint32     `json:"id"`
	Version    string     `json:"version"`
	DifficultyRating float64 `json:"difficulty_rating"`
	Mode       string     `json:"mode"`
	Beatmapset Beatmapset `json:"beatmapset"`
}

// GetID implements GetID.
func (b Beatmap) GetID() uint32 { return b.ID }

// MultiBeatmapResponse wraps the "beatmaps" array outer layer
// returned by the batched /beatmaps endpoint.
type MultiBeatmapResponse struct {
	Beatmaps []Beatmap `json:"beatmaps"`
}

// SearchMapResponse wraps a beatmapset search result page.
type SearchMapResponse struct {
	Beatmapsets []Beatmapset `json:"beatmapsets"`
}

// EnrichedBeatmap is the small "beatmap with embedded user" record
// the combined requester produces: a beatmap id, title, difficulty
// name, and the resolved mapper's id/name/avatar — falling back to
// the beatmapset creator and a synthetic avatar URL when the credited
// user could not be resolved upstream (e.g. a restricted account).
type EnrichedBeatmap struct {
	ID         uint32 `json:"id"`
	Title      string `json:"title"`
	Version    string `json:"version"`
	UserID     uint32 `json:"user_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	CoverURL   string `json:"cover_url"`
}

// GetID implements GetID.
func (b EnrichedBeatmap) GetID() uint32 { return b.ID }
