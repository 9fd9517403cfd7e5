package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/osuapi"
)

func TestParseUint32Param(t *testing.T) {
	v, err := parseUint32Param("1234")
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), v)

	_, err = parseUint32Param("not-a-number")
	assert.Error(t, err)
}

func TestPaginationParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	start, limit := paginationParams(r, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 100, limit)
}

func TestPaginationParamsFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?start=20&limit=5", nil)
	start, limit := paginationParams(r, 100)
	assert.Equal(t, 20, start)
	assert.Equal(t, 5, limit)
}

func TestQueryBool(t *testing.T) {
	assert.True(t, queryBool(httptest.NewRequest("GET", "/x?ranked=true", nil), "ranked"))
	assert.True(t, queryBool(httptest.NewRequest("GET", "/x?ranked=1", nil), "ranked"))
	assert.False(t, queryBool(httptest.NewRequest("GET", "/x?ranked=false", nil), "ranked"))
	assert.False(t, queryBool(httptest.NewRequest("GET", "/x", nil), "ranked"))
}

func TestValidateStringLength(t *testing.T) {
	assert.NoError(t, validateStringLength("short"))

	long := make([]byte, maxStringLength+1)
	assert.Error(t, validateStringLength(string(long)))
}

func TestSwapBeatmapsPreservesOrderAndDropsMisses(t *testing.T) {
	replay := osuapi.NewReplayRequester()
	replay.Beatmaps[1] = osuapi.Beatmap{ID: 1, Version: "Hard", Beatmapset: osuapi.Beatmapset{ID: 10, Title: "Song A"}}
	replay.Beatmaps[3] = osuapi.Beatmap{ID: 3, Version: "Insane", Beatmapset: osuapi.Beatmapset{ID: 11, Title: "Song B"}}
	combined := osuapi.NewCombinedRequester(replay, time.Minute, time.Minute, func() string { return "token" })

	refs, err := swapBeatmaps(context.Background(), combined, []uint32{3, 2, 1})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, uint32(3), refs[0].ID)
	assert.Equal(t, uint32(1), refs[1].ID)
}

func TestSwapBeatmapsEmptyInput(t *testing.T) {
	replay := osuapi.NewReplayRequester()
	combined := osuapi.NewCombinedRequester(replay, time.Minute, time.Minute, func() string { return "token" })

	refs, err := swapBeatmaps(context.Background(), combined, nil)
	require.NoError(t, err)
	assert.Nil(t, refs)
}
