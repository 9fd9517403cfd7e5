package domain

import "github.com/mapperinfluences/backend/internal/osuapi"

// LeaderboardUser is one row of the user leaderboard: a user and the
// number of incoming influence edges counted toward them.
type LeaderboardUser struct {
	User      Small `json:"user"`
	Country   string `json:"country,omitempty"`
	Count     int   `json:"count"`
}

// LeaderboardBeatmap is one row of the beatmap leaderboard: a
// beatmap and how many influence edges reference it. Beatmap
// is filled in by the cache's fetch closure, which enriches the raw
// (id, count) pairs the database aggregate returns.
type LeaderboardBeatmap struct {
	BeatmapID uint32                  `json:"beatmap_id"`
	Count     int                     `json:"count"`
	Beatmap   *osuapi.EnrichedBeatmap `json:"beatmap,omitempty"`
}

// GraphUser is a node of the full influence graph: only users with at
// least one in- or out-edge are included.
type GraphUser struct {
	ID                uint32 `json:"id"`
	Username          string `json:"username"`
	AvatarURL         string `json:"avatar_url"`
	Mentions          int    `json:"mentions"`
	InfluencedByCount int    `json:"influenced_by_count"`
}

// GraphInfluence is a link of the full influence graph.
type GraphInfluence struct {
	Source uint32        `json:"source"`
	Target uint32        `json:"target"`
	Type   InfluenceType `json:"type"`
}

// Graph is the one-shot {nodes, links} aggregate.
type Graph struct {
	Nodes []GraphUser       `json:"nodes"`
	Links []GraphInfluence  `json:"links"`
}
