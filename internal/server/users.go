package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/domain"
)

type userResponse struct {
	domain.User
	Beatmaps []domain.BeatmapRef `json:"beatmaps"`
}

func (s *Server) enrichUser(r *http.Request, user domain.User) (userResponse, error) {
	beatmaps, err := swapBeatmaps(r.Context(), s.combined, user.Beatmaps)
	if err != nil {
		return userResponse{}, err
	}
	return userResponse{User: user, Beatmaps: beatmaps}, nil
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := identityFromContext(r.Context())
	user, err := s.store.GetUserDetails(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.enrichUser(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetUser falls back to a cached upstream lookup, lifted to the
// local user shape with empty beatmaps and mentions left null, when
// the local DB has no such user.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUint32Param(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := s.store.GetUserDetails(userID)
	if err == nil {
		resp, err := s.enrichUser(r, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if apperror.As(err).Status != http.StatusNotFound {
		writeError(w, err)
		return
	}

	found, upErr := s.combined.GetUsersOnly(r.Context(), []uint32{userID})
	if upErr != nil {
		writeError(w, apperror.MissingUser(userID))
		return
	}
	upstream, ok := found[userID]
	if !ok {
		writeError(w, apperror.MissingUser(userID))
		return
	}

	lifted := domain.User{
		ID:                upstream.ID,
		Username:          upstream.Username,
		AvatarURL:         upstream.AvatarURL,
		Country:           domain.Country{Code: upstream.Country.Code, Name: upstream.Country.Name},
		PreviousUsernames: upstream.PreviousUsernames,
		RankedBeatmapsetCount:    upstream.RankedBeatmapsetCount,
		LovedBeatmapsetCount:     upstream.LovedBeatmapsetCount,
		GuestBeatmapsetCount:     upstream.GuestBeatmapsetCount,
		FavouriteBeatmapsetCount: upstream.FavouriteBeatmapsetCount,
		PendingBeatmapsetCount:   upstream.PendingBeatmapsetCount,
		GraveyardBeatmapsetCount: upstream.GraveyardBeatmapsetCount,
		RankedMapper:      upstream.IsRankedMapper(),
		ActivityPreferences: domain.DefaultActivityPreferences(),
	}
	for _, g := range upstream.Groups {
		colour := ""
		if g.Colour != nil {
			colour = *g.Colour
		}
		lifted.Groups = append(lifted.Groups, domain.Group{Colour: colour, Name: g.Name, ShortName: g.ShortName})
	}

	writeJSON(w, http.StatusOK, userResponse{User: lifted})
}

type updateBioRequest struct {
	Bio string `json:"bio" validate:"max=5000"`
}

func (s *Server) handleUpdateBio(w http.ResponseWriter, r *http.Request) {
	var req updateBioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validateStringLength(req.Bio); err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	if err := s.store.UpdateBio(claims.UserID, req.Bio); err != nil {
		writeError(w, err)
		return
	}
	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventEditBio, Bio: &req.Bio})

	user, err := s.store.GetUserDetails(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.enrichUser(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type userBeatmapsRequest struct {
	Beatmaps []uint32 `json:"beatmaps" validate:"dive,required"`
}

// handleAddUserBeatmaps verifies every id exists upstream before
// adding each to the user's showcase, then returns the full record
// with beatmaps enriched.
func (s *Server) handleAddUserBeatmaps(w http.ResponseWriter, r *http.Request) {
	var req userBeatmapsRequest
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
	for _, id := range req.Beatmaps {
		if _, ok := found[id]; !ok {
			writeError(w, apperror.NonExistingMap(id))
			return
		}
		if err := s.store.AddBeatmapToUser(claims.UserID, id); err != nil {
			writeError(w, err)
			return
		}
		s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventAddUserBeatmap, BeatmapID: &id})
	}

	user, err := s.store.GetUserDetails(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.enrichUser(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveUserBeatmap(w http.ResponseWriter, r *http.Request) {
	beatmapID, err := parseUint32Param(chi.URLParam(r, "beatmap_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	if err := s.store.RemoveBeatmapFromUser(claims.UserID, beatmapID); err != nil {
		writeError(w, err)
		return
	}
	s.recordActivity(claims.UserID, db.ActivityFields{EventType: domain.EventRemoveUserBeatmap, BeatmapID: &beatmapID})

	user, err := s.store.GetUserDetails(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.enrichUser(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type influenceOrderRequest struct {
	Order []uint32 `json:"order" validate:"dive,required"`
}

func (s *Server) handleSetInfluenceOrder(w http.ResponseWriter, r *http.Request) {
	var req influenceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims, _ := identityFromContext(r.Context())

	if err := s.store.SetInfluenceOrder(claims.UserID, req.Order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearchMap proxies+enriches an upstream beatmapset search.
func (s *Server) handleSearchMap(w http.ResponseWriter, r *http.Request) {
	claims, _ := identityFromContext(r.Context())
	query := r.URL.Query().Get("query")

	sets, err := s.requester.SearchMap(r.Context(), claims.OsuToken, query)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}
	ids := make([]uint32, 0, len(sets))
	for _, set := range sets {
		ids = append(ids, set.ID)
	}
	enriched, err := swapBeatmaps(r.Context(), s.combined, ids)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

func (s *Server) handleSearchMapByID(w http.ResponseWriter, r *http.Request) {
	beatmapID, err := parseUint32Param(chi.URLParam(r, "beatmap_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	enriched, ok, err := s.combined.GetBeatmapWithUser(r.Context(), beatmapID)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}
	if !ok {
		writeError(w, apperror.NonExistingMap(beatmapID))
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

// handleSearchUser proxies an upstream user search, backfilled with
// local DB details for ids that exist locally.
func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := identityFromContext(r.Context())
	query := chi.URLParam(r, "query")

	results, err := s.requester.SearchUser(r.Context(), claims.OsuToken, query)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	ids := make([]uint32, 0, len(results))
	for _, u := range results {
		ids = append(ids, u.ID)
	}
	localUsers, err := s.store.GetMultipleUserDetails(ids)
	if err != nil {
		writeError(w, err)
		return
	}
	localByID := make(map[uint32]domain.User, len(localUsers))
	for _, u := range localUsers {
		localByID[u.ID] = u
	}

	out := make([]domain.Small, 0, len(results))
	for _, u := range results {
		if lu, ok := localByID[u.ID]; ok {
			out = append(out, domain.Small{ID: lu.ID, Username: lu.Username, AvatarURL: lu.AvatarURL})
			continue
		}
		out = append(out, domain.Small{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL})
	}
	writeJSON(w, http.StatusOK, out)
}
