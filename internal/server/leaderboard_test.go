package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/leaderboard"
)

func TestHandleUserLeaderboard(t *testing.T) {
	var gotCountry string
	var gotRanked bool
	board := leaderboard.NewUserCache(time.Minute, func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
		gotCountry = country
		gotRanked = rankedOnly
		return []domain.LeaderboardUser{
			{User: domain.Small{ID: 1, Username: "a"}, Count: 5},
			{User: domain.Small{ID: 2, Username: "b"}, Count: 3},
		}, nil
	})
	s := &Server{userBoard: board}

	r := httptest.NewRequest("GET", "/leaderboard/user?country=FI&ranked=true", nil)
	w := httptest.NewRecorder()
	s.handleUserLeaderboard(w, r)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "FI", gotCountry)
	assert.True(t, gotRanked)

	var rows []domain.LeaderboardUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].User.Username)
}

func TestHandleBeatmapLeaderboard(t *testing.T) {
	board := leaderboard.NewBeatmapCache(time.Minute, func(ctx context.Context, rankedOnly bool, limit, start int) ([]domain.LeaderboardBeatmap, error) {
		return []domain.LeaderboardBeatmap{{BeatmapID: 42, Count: 7}}, nil
	})
	s := &Server{beatmapBoard: board}

	r := httptest.NewRequest("GET", "/leaderboard/beatmap", nil)
	w := httptest.NewRecorder()
	s.handleBeatmapLeaderboard(w, r)

	require.Equal(t, 200, w.Code)
	var rows []domain.LeaderboardBeatmap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, uint32(42), rows[0].BeatmapID)
}
