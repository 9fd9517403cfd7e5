package server

import "net/http"

func (s *Server) handleUserLeaderboard(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	ranked := queryBool(r, "ranked")
	start, limit := paginationParams(r, 100)

	board, err := s.userBoard.Get(r.Context(), country, ranked, start, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleBeatmapLeaderboard(w http.ResponseWriter, r *http.Request) {
	ranked := queryBool(r, "ranked")
	start, limit := paginationParams(r, 100)

	board, err := s.beatmapBoard.Get(r.Context(), ranked, start, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
