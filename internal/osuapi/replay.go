package osuapi

import (
	"context"
	"fmt"
	"sync"
)

// ReplayRequester is a Requester test double: it serves canned
// responses from in-memory maps instead of hitting the network, so
// osuapi and handler tests can exercise real call sites
// without an upstream dependency. Safe for concurrent use.
type ReplayRequester struct {
	mu        sync.Mutex
	Users     map[uint32]User
	Beatmaps  map[uint32]Beatmap
	AuthToken AuthToken
	TokenUser User
	Calls     []string
}

// NewReplayRequester builds an empty ReplayRequester; populate its
// exported maps before use.
func NewReplayRequester() *ReplayRequester {
	return &ReplayRequester{
		Users:    make(map[uint32]User),
		Beatmaps: make(map[uint32]Beatmap),
	}
}

func (r *ReplayRequester) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, call)
}

func (r *ReplayRequester) GetAuthToken(ctx context.Context, code string) (AuthToken, error) {
	r.record("GetAuthToken")
	return r.AuthToken, nil
}

func (r *ReplayRequester) GetCredentialsToken(ctx context.Context) (AuthToken, error) {
	r.record("GetCredentialsToken")
	return r.AuthToken, nil
}

func (r *ReplayRequester) GetTokenUser(ctx context.Context, bearer string) (User, error) {
	r.record("GetTokenUser")
	return r.TokenUser, nil
}

func (r *ReplayRequester) GetUser(ctx context.Context, bearer string, id uint32) (User, error) {
	r.record("GetUser")
	u, ok := r.Users[id]
	if !ok {
		return User{}, fmt.Errorf("replay: no user %d", id)
	}
	return u, nil
}

func (r *ReplayRequester) GetBeatmap(ctx context.Context, bearer string, id uint32) (Beatmap, error) {
	r.record("GetBeatmap")
	b, ok := r.Beatmaps[id]
	if !ok {
		return Beatmap{}, fmt.Errorf("replay: no beatmap %d", id)
	}
	return b, nil
}

func (r *ReplayRequester) GetBeatmapset(ctx context.Context, bearer string, id uint32) (Beatmapset, error) {
	r.record("GetBeatmapset")
	for _, b := range r.Beatmaps {
		if b.Beatmapset.ID == id {
			return b.Beatmapset, nil
		}
	}
	return Beatmapset{}, fmt.Errorf("replay: no beatmapset %d", id)
}

func (r *ReplayRequester) SearchUser(ctx context.Context, bearer, query string) ([]SearchUserData, error) {
	r.record("SearchUser")
	var out []SearchUserData
	for _, u := range r.Users {
		out = append(out, SearchUserData{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL})
	}
	return out, nil
}

func (r *ReplayRequester) SearchMap(ctx context.Context, bearer, query string) ([]Beatmapset, error) {
	r.record("SearchMap")
	var out []Beatmapset
	seen := map[uint32]bool{}
	for _, b := range r.Beatmaps {
		if !seen[b.Beatmapset.ID] {
			seen[b.Beatmapset.ID] = true
			out = append(out, b.Beatmapset)
		}
	}
	return out, nil
}

func (r *ReplayRequester) RequestMultipleUsers(ctx context.Context, bearer string, ids []uint32) ([]User, error) {
	r.record("RequestMultipleUsers")
	var out []User
	for _, id := range ids {
		if u, ok := r.Users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *ReplayRequester) RequestMultipleBeatmaps(ctx context.Context, bearer string, ids []uint32) ([]Beatmap, error) {
	r.record("RequestMultipleBeatmaps")
	var out []Beatmap
	for _, id := range ids {
		if b, ok := r.Beatmaps[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

var _ Requester = (*HTTPRequester)(nil)
var _ Requester = (*ReplayRequester)(nil)
