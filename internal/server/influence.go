package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/domain"
)

type addInfluenceRequest struct {
	UserID        string               `json:"user_id" validate:"required"`
	InfluenceType *domain.InfluenceType `json:"influence_type"`
	Description   string               `json:"description" validate:"max=5000"`
	Beatmaps      []uint32             `json:"beatmaps" validate:"dive,required"`
}

type influenceBeatmapsRequest struct {
	Beatmaps []uint32 `json:"beatmaps" validate:"dive,required"`
}

type influenceDescriptionRequest struct {
	Description string `json:"description" validate:"max=5000"`
}

type influenceResponse struct {
	domain.Influence
	Beatmaps []domain.BeatmapRef `json:"beatmaps"`
}

func (s *Server) enrichInfluence(r *http.Request, inf domain.Influence) (influenceResponse, error) {
	beatmaps, err := swapBeatmaps(r.Context(), s.combined, inf.Beatmaps)
	if err != nil {
		return influenceResponse{}, err
	}
	return influenceResponse{Influence: inf, Beatmaps: beatmaps}, nil
}

// handleAddInfluence resolves the target user from upstream, upserts
// it locally, and creates the influence relation.
func (s *Server) handleAddInfluence(w http.ResponseWriter, r *http.Request) {
	var req addInfluenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	targetID, err := parseUint32Param(req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	claims, _ := identityFromContext(r.Context())
	ctx := r.Context()

	targetUser, err := s.requester.GetUser(ctx, claims.OsuToken, targetID)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}
	if err := s.store.UpsertUser(targetUser, false); err != nil {
		writeError(w, err)
		return
	}

	opts := db.InfluenceOptions{Description: req.Description, Beatmaps: req.Beatmaps}
	if req.InfluenceType != nil {
		opts.Type = *req.InfluenceType
	}
	inf, err := s.store.AddInfluenceRelation(claims.UserID, targetID, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventAddInfluence, InfluenceTargetID: &targetID})

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetInfluences(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUint32Param(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	start, limit := paginationParams(r, 50)

	influences, err := s.store.GetInfluences(userID, start, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]influenceResponse, 0, len(influences))
	for _, inf := range influences {
		enriched, err := s.enrichInfluence(r, inf)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, enriched)
	}
	writeJSON(w, http.StatusOK, out)
}

type mentionResponse struct {
	influenceResponse
	MentionCount int `json:"mention_count"`
}

func (s *Server) handleGetMentions(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUint32Param(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	start, limit := paginationParams(r, 50)

	mentions, err := s.store.GetMentions(userID, start, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]mentionResponse, 0, len(mentions))
	for _, m := range mentions {
		enriched, err := s.enrichInfluence(r, m.Influence)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, mentionResponse{influenceResponse: enriched, MentionCount: m.MentionCount})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRemoveInfluence(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUint32Param(chi.URLParam(r, "influenced_to"))
	if err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	inf, err := s.store.RemoveInfluenceRelation(claims.UserID, targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventRemoveInfluence, InfluenceTargetID: &targetID})

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddInfluenceBeatmaps verifies every id exists upstream before
// attaching each to the influence edge.
func (s *Server) handleAddInfluenceBeatmaps(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUint32Param(chi.URLParam(r, "influenced_to"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req influenceBeatmapsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())
	ctx := r.Context()

	found, err := s.combined.GetBeatmapsOnly(ctx, req.Beatmaps)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	var inf domain.Influence
	for _, id := range req.Beatmaps {
		if _, ok := found[id]; !ok {
			writeError(w, apperror.NonExistingMap(id))
			return
		}
		inf, err = s.store.AddBeatmapToInfluence(claims.UserID, targetID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventAddInfluenceBeatmap, InfluenceTargetID: &targetID, BeatmapID: &id})
	}

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveInfluenceBeatmap(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUint32Param(chi.URLParam(r, "influenced_to"))
	if err != nil {
		writeError(w, err)
		return
	}
	beatmapID, err := parseUint32Param(chi.URLParam(r, "beatmap_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	inf, err := s.store.RemoveBeatmapFromInfluence(claims.UserID, targetID, beatmapID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventRemoveInfluenceBeatmap, InfluenceTargetID: &targetID, BeatmapID: &beatmapID})

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateInfluenceDescription(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUint32Param(chi.URLParam(r, "influenced_to"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req influenceDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validateStringLength(req.Description); err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	inf, err := s.store.UpdateInfluenceDescription(claims.UserID, targetID, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventEditInfluenceDesc, InfluenceTargetID: &targetID, Description: &req.Description})

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateInfluenceType(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUint32Param(chi.URLParam(r, "influenced_to"))
	if err != nil {
		writeError(w, err)
		return
	}
	typeRaw, err := parseUint32Param(chi.URLParam(r, "type_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	influenceType := domain.InfluenceType(typeRaw)
	claims, _ := identityFromContext(r.Context())

	inf, err := s.store.UpdateInfluenceType(claims.UserID, targetID, influenceType)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventEditInfluenceType, InfluenceTargetID: &targetID, InfluenceType: &influenceType})

	resp, err := s.enrichInfluence(r, inf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
