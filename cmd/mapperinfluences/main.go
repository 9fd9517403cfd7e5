// mapperinfluences is the backend for the mapper-influences site: it
// tracks who inspired whom among osu! beatmap creators, serving a
// JSON/WebSocket API backed by SurrealDB and the upstream osu! v2 API.
//
// Usage:
//
//	export CLIENT_ID=... CLIENT_SECRET=... REDIRECT_URI=...
//	export POST_LOGIN_REDIRECT_URI=... ADMIN_PASSWORD=... JWT_SECRET_KEY=...
//	export SURREAL_URL=ws://localhost:8000 SURREAL_USER=root SURREAL_PASS=root
//	./mapperinfluences
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mapperinfluences/backend/internal/activity"
	"github.com/mapperinfluences/backend/internal/config"
	"github.com/mapperinfluences/backend/internal/dailyupdate"
	"github.com/mapperinfluences/backend/internal/db"
	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/graphcache"
	"github.com/mapperinfluences/backend/internal/leaderboard"
	"github.com/mapperinfluences/backend/internal/osuapi"
	"github.com/mapperinfluences/backend/internal/server"
	"github.com/mapperinfluences/backend/internal/session"
)

func main() {
	// Structured JSON logging by default — easy to parse with any log aggregator.
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("starting mapperinfluences backend", "version", "1.0.0")

	// ─── Configuration ────────────────────────────────────────────────────────
	cfg := config.Load()
	slog.Info("config loaded", "port", cfg.Port, "deploy_cookie", cfg.DeployCookie, "daily_update", cfg.DailyUpdate)

	// ─── Database ─────────────────────────────────────────────────────────────
	store, err := db.Open(cfg.SurrealURL, cfg.SurrealUser, cfg.SurrealPass)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Bootstrap(); err != nil {
		slog.Error("database bootstrap failed", "error", err)
		os.Exit(1)
	}

	// ─── Graceful shutdown ────────────────────────────────────────────────────
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ─── osu! API client, credential-grant token, and caches ──────────────────
	requester := osuapi.NewHTTPRequester(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, cfg.ConcurrentRequests)
	tokens := osuapi.NewTokenManager(requester)
	bearer := func() string {
		token, err := tokens.GetAccessToken(context.Background())
		if err != nil {
			slog.Warn("credential-grant token unavailable", "error", err)
			return ""
		}
		return token
	}
	combined := osuapi.NewCombinedRequester(requester, cfg.UserCacheTTL, cfg.BeatmapCacheTTL, bearer)

	// ─── Session tokens ────────────────────────────────────────────────────────
	sessions := session.NewManager(cfg.JWTSecretKey, cfg.AdminSessionLifetime)

	// ─── Activity tracker ──────────────────────────────────────────────────────
	tracker, err := activity.New(ctx, activity.NewDBStore(store), combined, cfg.ActivityQueueCapacity)
	if err != nil {
		slog.Error("failed to start activity tracker", "error", err)
		os.Exit(1)
	}

	// ─── Leaderboard and graph caches ─────────────────────────────────────────
	userBoard := leaderboard.NewUserCache(cfg.LeaderboardCacheTTL, func(ctx context.Context, country string, rankedOnly bool, limit, start int) ([]domain.LeaderboardUser, error) {
		return store.UserLeaderboard(country, rankedOnly, limit, start)
	})
	beatmapBoard := leaderboard.NewBeatmapCache(cfg.LeaderboardCacheTTL, func(ctx context.Context, rankedOnly bool, limit, start int) ([]domain.LeaderboardBeatmap, error) {
		rows, err := store.BeatmapLeaderboard(rankedOnly, limit, start)
		if err != nil {
			return nil, err
		}
		ids := make([]uint32, len(rows))
		for i, row := range rows {
			ids[i] = row.BeatmapID
		}
		enriched, err := combined.GetBeatmapsWithUser(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint32]osuapi.EnrichedBeatmap, len(enriched))
		for _, e := range enriched {
			byID[e.ID] = e
		}
		for i := range rows {
			if e, ok := byID[rows[i].BeatmapID]; ok {
				eCopy := e
				rows[i].Beatmap = &eCopy
			}
		}
		return rows, nil
	})
	graph := graphcache.New(cfg.GraphCacheTTL, func(ctx context.Context) (domain.Graph, error) {
		return store.GetGraphData()
	})

	// ─── Daily update loop ─────────────────────────────────────────────────────
	if cfg.DailyUpdate {
		go dailyupdate.Run(ctx, store, requester, bearer, 0, cfg.DailyUpdatePace)
	}

	// ─── Start HTTP server ─────────────────────────────────────────────────────
	srv := server.New(server.Deps{
		Config:       cfg,
		Store:        store,
		Requester:    requester,
		Tokens:       tokens,
		Combined:     combined,
		Sessions:     sessions,
		Tracker:      tracker,
		UserBoard:    userBoard,
		BeatmapBoard: beatmapBoard,
		Graph:        graph,
	})
	srv.Start(ctx) // blocks until ctx is cancelled

	slog.Info("mapperinfluences backend stopped")
}
