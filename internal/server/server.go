// Package server implements the HTTP/JSON and WebSocket API surface
// the single-page frontend talks to: OAuth2 session exchange,
// influence/user/leaderboard/graph CRUD and aggregate reads, and the
// live activity feed.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mapperinfluences/backend/internal/activity"
	"github.com/mapperinfluences/backend/internal/config"
	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/graphcache"
	"github.com/mapperinfluences/backend/internal/leaderboard"
	"github.com/mapperinfluences/backend/internal/osuapi"
	"github.com/mapperinfluences/backend/internal/session"
)

const version = "1.0.0"

// Server is the main HTTP server for mapperinfluences.
type Server struct {
	cfg          *config.Config
	store        *db.Store
	requester    osuapi.Requester
	tokens       *osuapi.TokenManager
	combined     *osuapi.CombinedRequester
	sessions     *session.Manager
	tracker      *activity.Tracker
	userBoard    *leaderboard.UserCache
	beatmapBoard *leaderboard.BeatmapCache
	graph        *graphcache.Cache

	router    *chi.Mux
	startedAt time.Time
}

// Deps bundles the components New wires into the router.
type Deps struct {
	Config       *config.Config
	Store        *db.Store
	Requester    osuapi.Requester
	Tokens       *osuapi.TokenManager
	Combined     *osuapi.CombinedRequester
	Sessions     *session.Manager
	Tracker      *activity.Tracker
	UserBoard    *leaderboard.UserCache
	BeatmapBoard *leaderboard.BeatmapCache
	Graph        *graphcache.Cache
}

// New builds a Server and its chi router.
func New(d Deps) *Server {
	s := &Server{
		cfg:          d.Config,
		store:        d.Store,
		requester:    d.Requester,
		tokens:       d.Tokens,
		combined:     d.Combined,
		sessions:     d.Sessions,
		tracker:      d.Tracker,
		userBoard:    d.UserBoard,
		beatmapBoard: d.BeatmapBoard,
		graph:        d.Graph,
		startedAt:    time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := ":" + s.cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the /ws handler holds connections open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("starting HTTP server", "addr", addr)

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
	}
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/oauth/osu-redirect", s.handleOAuthRedirect)
	r.Get("/oauth/logout", s.handleLogout)
	r.Post("/oauth/admin", s.handleAdminLogin)

	r.Get("/leaderboard/user", s.handleUserLeaderboard)
	r.Get("/leaderboard/beatmap", s.handleBeatmapLeaderboard)
	r.Get("/graph", s.handleGraph)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/search/map", s.handleSearchMap)
		r.Get("/search/map/{beatmap_id}", s.handleSearchMapByID)
		r.Get("/search/user/{query}", s.handleSearchUser)

		r.Post("/influence", s.handleAddInfluence)
		r.Get("/influence/influences/{user_id}", s.handleGetInfluences)
		r.Get("/influence/mentions/{user_id}", s.handleGetMentions)
		r.Delete("/influence/{influenced_to}", s.handleRemoveInfluence)
		r.Patch("/influence/{influenced_to}/map", s.handleAddInfluenceBeatmaps)
		r.Delete("/influence/{influenced_to}/map/{beatmap_id}", s.handleRemoveInfluenceBeatmap)
		r.Patch("/influence/{influenced_to}/description", s.handleUpdateInfluenceDescription)
		r.Patch("/influence/{influenced_to}/type/{type_id}", s.handleUpdateInfluenceType)

		r.Get("/users/me", s.handleGetMe)
		r.Get("/users/{user_id}", s.handleGetUser)
		r.Patch("/users/bio", s.handleUpdateBio)
		r.Patch("/users/map", s.handleAddUserBeatmaps)
		r.Delete("/users/map/{beatmap_id}", s.handleRemoveUserBeatmap)
		r.Post("/users/influence-order", s.handleSetInfluenceOrder)

		r.Get("/activity", s.handleGetActivity)
		r.HandleFunc("/ws", s.handleWebSocket)
	})

	return r
}

// loggingMiddleware logs each HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// corsMiddleware adds CORS headers for the single-page frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Unwrap allows http.ResponseController to reach the underlying
// ResponseWriter so SetWriteDeadline works correctly for long-lived
// WebSocket connections.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
