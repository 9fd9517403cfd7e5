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
	"github.com/mapperinfluences/backend/internal/graphcache"
)

func TestHandleGraph(t *testing.T) {
	want := domain.Graph{
		Nodes: []domain.GraphUser{{ID: 1, Username: "a"}},
		Links: []domain.GraphInfluence{{Source: 1, Target: 2, Type: domain.InfluenceTypeSound}},
	}
	cache := graphcache.New(time.Minute, func(ctx context.Context) (domain.Graph, error) {
		return want, nil
	})
	s := &Server{graph: cache}

	r := httptest.NewRequest("GET", "/graph", nil)
	w := httptest.NewRecorder()
	s.handleGraph(w, r)

	require.Equal(t, 200, w.Code)
	var got domain.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}
