package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/osuapi"
)

const maxStringLength = 5000

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps any error to the {"message": "..."} envelope at the
// status its apperror.Error carries.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.As(err)
	writeJSON(w, appErr.Status, map[string]string{"message": appErr.Message})
}

// decodeJSON decodes the request body into dst and runs struct tag
// validation, returning a 422 apperror.BadRequest on either failure.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.BadRequest(err)
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.BadRequest(err)
	}
	return nil
}

// parseUint32Param parses a chi URL param as a uint32, returning a
// 422 apperror.BadRequest on failure.
func parseUint32Param(raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.BadRequest(err)
	}
	return uint32(v), nil
}

// paginationParams reads start/limit query parameters with defaults.
func paginationParams(r *http.Request, defaultLimit int) (start, limit int) {
	start = queryInt(r, "start", 0)
	limit = queryInt(r, "limit", defaultLimit)
	return
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	raw := r.URL.Query().Get(key)
	return raw == "true" || raw == "1"
}

func validateStringLength(s string) error {
	if len(s) > maxStringLength {
		return apperror.StringTooLong()
	}
	return nil
}

// swapBeatmaps takes a de-duplicated list of beatmap ids and returns
// enriched objects in the same input order, preserving order for the
// ids that resolve upstream and dropping ids that don't.
func swapBeatmaps(ctx context.Context, requester *osuapi.CombinedRequester, ids []uint32) ([]domain.BeatmapRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	enriched, err := requester.GetBeatmapsWithUser(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	byID := make(map[uint32]osuapi.EnrichedBeatmap, len(enriched))
	for _, e := range enriched {
		byID[e.ID] = e
	}

	out := make([]domain.BeatmapRef, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			continue
		}
		eCopy := e
		out = append(out, domain.BeatmapRef{ID: eCopy.ID, Enriched: &eCopy})
	}
	return out, nil
}
