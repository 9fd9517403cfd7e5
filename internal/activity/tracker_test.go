package activity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/osuapi"
)

type fakeStore struct {
	pages  [][]domain.Activity
	stream chan Notification
}

func (f *fakeStore) GetActivities(limit, start int) ([]domain.Activity, error) {
	idx := start / limit
	if idx >= len(f.pages) {
		return nil, nil
	}
	return f.pages[idx], nil
}

func (f *fakeStore) StartActivityStream(ctx context.Context) (<-chan Notification, error) {
	if f.stream == nil {
		f.stream = make(chan Notification)
	}
	return f.stream, nil
}

type fakeEnricher struct{}

func (fakeEnricher) GetBeatmapsWithUser(ctx context.Context, ids []uint32) ([]osuapi.EnrichedBeatmap, error) {
	out := make([]osuapi.EnrichedBeatmap, len(ids))
	for i, id := range ids {
		out[i] = osuapi.EnrichedBeatmap{ID: id, Title: "enriched"}
	}
	return out, nil
}

func (fakeEnricher) GetBeatmapWithUser(ctx context.Context, id uint32) (osuapi.EnrichedBeatmap, bool, error) {
	return osuapi.EnrichedBeatmap{ID: id, Title: "enriched"}, true, nil
}

func activityWith(actor uint32, eventType domain.EventType) domain.Activity {
	return domain.Activity{ID: "a", Actor: domain.Small{ID: actor}, EventType: eventType, CreatedAt: time.Now().UTC()}
}

func TestRingCapacityKeepsTail(t *testing.T) {
	store := &fakeStore{
		pages: [][]domain.Activity{
			{
				activityWith(1, domain.EventLogin),
				activityWith(2, domain.EventLogin),
				activityWith(3, domain.EventLogin),
				activityWith(4, domain.EventLogin),
			},
		},
	}
	// Pages come newest-first, so D (the newest) leads and A (the oldest) trails.
	for i := range store.pages[0] {
		store.pages[0][i].ID = string(rune('D' - i))
	}

	tracker, err := New(context.Background(), store, fakeEnricher{}, 3)
	require.NoError(t, err)

	queue := tracker.GetCurrentQueue()
	require.Len(t, queue, 3)
	assert.Equal(t, []string{"B", "C", "D"}, []string{queue[0].ID, queue[1].ID, queue[2].ID})
}

func TestSubscribeReturnsSnapshotMatchingQueue(t *testing.T) {
	store := &fakeStore{pages: [][]domain.Activity{{activityWith(1, domain.EventLogin)}}}
	tracker, err := New(context.Background(), store, fakeEnricher{}, 3)
	require.NoError(t, err)

	snapshot, ch, cancel := tracker.Subscribe()
	defer cancel()

	var decoded []domain.Activity
	require.NoError(t, json.Unmarshal([]byte(snapshot), &decoded))
	assert.Equal(t, tracker.GetCurrentQueue(), decoded)

	assert.NotNil(t, ch)
}

func TestEmptyBackfillLeavesQueueEmpty(t *testing.T) {
	store := &fakeStore{pages: [][]domain.Activity{{}}}
	tracker, err := New(context.Background(), store, fakeEnricher{}, 50)
	require.NoError(t, err)
	assert.Empty(t, tracker.GetCurrentQueue())
}
