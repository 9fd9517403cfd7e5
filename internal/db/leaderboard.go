package db

import (
	"fmt"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
)

// UserLeaderboard aggregates influence edges grouped by target user,
// ordered by incoming-edge count descending. When rankedOnly is true,
// only edges whose source user has the ranked-mapper flag are
// counted; when country is non-empty, results are additionally
// restricted to that country.
func (s *Store) UserLeaderboard(country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
	query := `
		SELECT
			out.id AS user.id, out.username AS user.username, out.avatar_url AS user.avatar_url,
			out.country.name AS country,
			count(<-influenced_by<-(user WHERE ranked_mapper = true OR $ranked_only = false)) AS count
		FROM influenced_by
		WHERE $country = NONE OR out.country.name = $country
		GROUP BY out
		ORDER BY count DESC
		LIMIT $limit START $start
	`
	vars := map[string]interface{}{
		"ranked_only": rankedOnly,
		"country":     nullableString(country),
		"limit":       limit,
		"start":       start,
	}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("user leaderboard: %w", err))
	}
	return unmarshalRows[domain.LeaderboardUser](data)
}

// BeatmapLeaderboard aggregates influence edges grouped by beatmap id
// across every edge's beatmap set, ordered by reference
// count descending. When rankedOnly is true, only edges whose source
// user has the ranked-mapper flag are counted.
func (s *Store) BeatmapLeaderboard(rankedOnly bool, limit, start int) ([]domain.LeaderboardBeatmap, error) {
	query := `
		SELECT beatmap_id, count() AS count FROM (
			SELECT VALUE beatmaps FROM influenced_by
			WHERE $ranked_only = false OR in.ranked_mapper = true
		) AS beatmap_id
		GROUP BY beatmap_id
		ORDER BY count DESC
		LIMIT $limit START $start
	`
	vars := map[string]interface{}{"ranked_only": rankedOnly, "limit": limit, "start": start}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("beatmap leaderboard: %w", err))
	}
	return unmarshalRows[domain.LeaderboardBeatmap](data)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
