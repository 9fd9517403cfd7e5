package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapperinfluences/backend/internal/domain"
)

// The JSON "beatmaps" key must come from influenceResponse's own
// field, not the raw []uint32 promoted from the embedded
// domain.Influence — this is the field-shadowing trick enrichInfluence
// relies on to attach enriched beatmap objects without a bespoke
// marshal-time type per response shape.
func TestInfluenceResponseShadowsEmbeddedBeatmaps(t *testing.T) {
	typ := domain.InfluenceTypeSound
	inf := domain.Influence{
		Influencer:   domain.Small{ID: 1, Username: "a"},
		InfluencedTo: domain.Small{ID: 2, Username: "b"},
		Type:         typ,
		Beatmaps:     []uint32{42},
	}

	resp := influenceResponse{
		Influence: inf,
		Beatmaps:  []domain.BeatmapRef{{ID: 42}},
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// A bare id (no Enriched) marshals as a number, confirming the
	// explicit Beatmaps field won, not a nested array-of-arrays from
	// both fields colliding.
	beatmaps, ok := decoded["beatmaps"].([]interface{})
	require.True(t, ok, "beatmaps field should be a flat array: %#v", decoded["beatmaps"])
	require.Len(t, beatmaps, 1)
	assert.Equal(t, float64(42), beatmaps[0])
}

func TestMentionResponseEmbedsInfluenceResponseAndCount(t *testing.T) {
	resp := mentionResponse{
		influenceResponse: influenceResponse{
			Influence: domain.Influence{Description: "desc"},
		},
		MentionCount: 3,
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "desc", decoded["description"])
	assert.Equal(t, float64(3), decoded["mention_count"])
}
