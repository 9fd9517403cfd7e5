package dailyupdate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/osuapi"
)

type fakeStore struct {
	mu       sync.Mutex
	toUpdate []uint32
	upserted []uint32
}

func (f *fakeStore) GetUsersToUpdate() ([]uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toUpdate, nil
}

func (f *fakeStore) UpsertUser(user osuapi.User, authenticated bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, user.ID)
	return nil
}

type fakeRequester struct {
	failFor map[uint32]bool
}

func (f *fakeRequester) GetUser(ctx context.Context, bearer string, id uint32) (osuapi.User, error) {
	if f.failFor[id] {
		return osuapi.User{}, assert.AnError
	}
	return osuapi.User{ID: id}, nil
}

func TestUpdateOnceSkipsFailuresAndContinues(t *testing.T) {
	store := &fakeStore{toUpdate: []uint32{1, 2, 3}}
	requester := &fakeRequester{failFor: map[uint32]bool{2: true}}

	updateOnce(context.Background(), store, requester, func() string { return "tok" }, time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.ElementsMatch(t, []uint32{1, 3}, store.upserted)
}

func TestUpdateOnceRespectsContextCancellation(t *testing.T) {
	store := &fakeStore{toUpdate: []uint32{1, 2, 3, 4, 5}}
	requester := &fakeRequester{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updateOnce(ctx, store, requester, func() string { return "tok" }, time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.upserted)
}

func TestRunRespectsInitialDelayCancellation(t *testing.T) {
	store := &fakeStore{}
	requester := &fakeRequester{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, store, requester, func() string { return "tok" }, time.Hour, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly after context cancellation during initial delay")
	}
}

func TestUpdateOnceEmptyListReturnsImmediately(t *testing.T) {
	store := &fakeStore{toUpdate: nil}
	requester := &fakeRequester{}

	done := make(chan struct{})
	go func() {
		updateOnce(context.Background(), store, requester, func() string { return "tok" }, time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("updateOnce with empty user list should return without waiting on pace ticker")
	}
	require.Empty(t, store.upserted)
}
