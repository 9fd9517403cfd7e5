package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
)

// Same field-shadowing concern as influenceResponse: the enriched
// Beatmaps field must win over the embedded domain.User's raw
// []uint32 with the identical "beatmaps" tag.
func TestUserResponseShadowsEmbeddedBeatmaps(t *testing.T) {
	user := domain.User{
		ID:       7,
		Username: "mapper",
		Beatmaps: []uint32{100, 200},
	}
	resp := userResponse{
		User:     user,
		Beatmaps: []domain.BeatmapRef{{ID: 100}, {ID: 200}},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	beatmaps, ok := decoded["beatmaps"].([]interface{})
	require.True(t, ok, "beatmaps field should be a flat array: %#v", decoded["beatmaps"])
	require.Len(t, beatmaps, 2)
	assert.Equal(t, float64(100), beatmaps[0])
	assert.Equal(t, float64(200), beatmaps[1])
	assert.Equal(t, "mapper", decoded["username"])
}
