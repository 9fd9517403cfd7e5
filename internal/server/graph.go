package server

import "net/http"

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.graph.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}
