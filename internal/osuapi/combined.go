package osuapi

import (
	"context"
	"fmt"
	"time"
)

// CombinedRequester composes a users CachedRequester and a beatmaps
// CachedRequester into the shapes handlers actually want: beatmaps
// with their mapper embedded, or either collection alone.
type CombinedRequester struct {
	users    *CachedRequester[User]
	beatmaps *CachedRequester[Beatmap]
	bearer   func() string
}

// NewCombinedRequester builds a CombinedRequester over requester,
// using userTTL/beatmapTTL for the two underlying caches. bearer
// supplies the bearer token used for upstream calls (typically the
// credential-grant token manager's current token).
func NewCombinedRequester(requester Requester, userTTL, beatmapTTL time.Duration, bearer func() string) *CombinedRequester {
	return &CombinedRequester{
		users: NewCachedRequester[User](userTTL, func(ctx context.Context, token string, ids []uint32) ([]User, error) {
			return requester.RequestMultipleUsers(ctx, token, ids)
		}),
		beatmaps: NewCachedRequester[Beatmap](beatmapTTL, func(ctx context.Context, token string, ids []uint32) ([]Beatmap, error) {
			return requester.RequestMultipleBeatmaps(ctx, token, ids)
		}),
		bearer: bearer,
	}
}

// GetUsersOnly resolves a set of user ids, cached.
func (c *CombinedRequester) GetUsersOnly(ctx context.Context, ids []uint32) (map[uint32]User, error) {
	return c.users.GetMultiple(ctx, c.bearer(), ids)
}

// GetBeatmapsOnly resolves a set of beatmap ids, cached, without
// embedding mapper info.
func (c *CombinedRequester) GetBeatmapsOnly(ctx context.Context, ids []uint32) (map[uint32]Beatmap, error) {
	return c.beatmaps.GetMultiple(ctx, c.bearer(), ids)
}

// GetBeatmapsWithUser fetches beatmaps, then the distinct user-ids
// they reference, and produces one EnrichedBeatmap per input id that
// resolved upstream, in the same order as ids; ids with no upstream
// beatmap are left out. When the credited mapper could not be
// resolved upstream (a restricted account), it falls back to the
// beatmapset's own creator id/username and the synthetic avatar URL
// "https://a.ppy.sh/{user_id}?".
func (c *CombinedRequester) GetBeatmapsWithUser(ctx context.Context, ids []uint32) ([]EnrichedBeatmap, error) {
	beatmaps, err := c.beatmaps.GetMultiple(ctx, c.bearer(), ids)
	if err != nil {
		return nil, err
	}

	userIDSet := make(map[uint32]struct{})
	for _, b := range beatmaps {
		userIDSet[b.Beatmapset.UserID] = struct{}{}
	}
	userIDs := make([]uint32, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}

	users, err := c.users.GetMultiple(ctx, c.bearer(), userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]EnrichedBeatmap, 0, len(ids))
	for _, id := range ids {
		b, ok := beatmaps[id]
		if !ok {
			continue
		}
		enriched := EnrichedBeatmap{
			ID:       b.ID,
			Title:    b.Beatmapset.Title,
			Version:  b.Version,
			CoverURL: b.Beatmapset.Covers.Cover,
		}
		if u, ok := users[b.Beatmapset.UserID]; ok {
			enriched.UserID = u.ID
			enriched.Username = u.Username
			enriched.AvatarURL = u.AvatarURL
		} else {
			enriched.UserID = b.Beatmapset.UserID
			enriched.Username = b.Beatmapset.Creator
			enriched.AvatarURL = fmt.Sprintf("https://a.ppy.sh/%d?", b.Beatmapset.UserID)
		}
		out = append(out, enriched)
	}
	return out, nil
}

// GetBeatmapWithUser resolves a single id via GetBeatmapsWithUser.
func (c *CombinedRequester) GetBeatmapWithUser(ctx context.Context, id uint32) (EnrichedBeatmap, bool, error) {
	result, err := c.GetBeatmapsWithUser(ctx, []uint32{id})
	if err != nil {
		return EnrichedBeatmap{}, false, err
	}
	if len(result) == 0 {
		return EnrichedBeatmap{}, false, nil
	}
	return result[0], true, nil
}
