package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/activity"
	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/osuapi"
)

type fakeActivityStore struct {
	page []domain.Activity
}

func (f *fakeActivityStore) GetActivities(limit, start int) ([]domain.Activity, error) {
	if start > 0 {
		return nil, nil
	}
	return f.page, nil
}

func (f *fakeActivityStore) StartActivityStream(ctx context.Context) (<-chan activity.Notification, error) {
	return make(chan activity.Notification), nil
}

type fakeEnricher struct{}

func (fakeEnricher) GetBeatmapsWithUser(ctx context.Context, ids []uint32) ([]osuapi.EnrichedBeatmap, error) {
	return nil, nil
}

func (fakeEnricher) GetBeatmapWithUser(ctx context.Context, id uint32) (osuapi.EnrichedBeatmap, bool, error) {
	return osuapi.EnrichedBeatmap{}, false, nil
}

func TestHandleGetActivityReturnsCurrentQueue(t *testing.T) {
	store := &fakeActivityStore{page: []domain.Activity{
		{EventType: domain.EventLogin, Actor: domain.Small{ID: 1, Username: "a"}},
	}}
	tracker, err := activity.New(context.Background(), store, fakeEnricher{}, 10)
	require.NoError(t, err)

	s := &Server{tracker: tracker}

	r := httptest.NewRequest("GET", "/activity", nil)
	w := httptest.NewRecorder()
	s.handleGetActivity(w, r)

	require.Equal(t, 200, w.Code)
	var got []domain.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventLogin, got[0].EventType)
}
