// Package config loads the process's runtime configuration once from
// environment variables, exits fatally on anything required-but-missing,
// and hands the rest of the program a single immutable struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	ClientID               string // CLIENT_ID — osu! OAuth2 client id
	ClientSecret           string // CLIENT_SECRET — osu! OAuth2 client secret
	RedirectURI            string // REDIRECT_URI — osu! OAuth2 redirect_uri
	PostLoginRedirectURI   string // POST_LOGIN_REDIRECT_URI — frontend URL to send the browser to after login
	AdminPassword          string // ADMIN_PASSWORD — gates POST /oauth/admin
	JWTSecretKey           string // JWT_SECRET_KEY — HMAC key for session tokens
	SurrealURL             string // SURREAL_URL — ws:// or wss:// endpoint
	SurrealUser            string // SURREAL_USER
	SurrealPass            string // SURREAL_PASS
	Port                   string // PORT
	DeployCookie           bool   // DEPLOY_COOKIE — adds Secure; Domain=.mapperinfluences.com to auth cookies
	DailyUpdate            bool   // DAILY_UPDATE — enables the 24h stale-user refresh loop
	DiscordWebhookURL      string // DISCORD_WEBHOOK_URL — optional, notifies on admin-backdoor logins
	LogLevel               string // LOG_LEVEL — "debug" enables verbose structured logging

	// Tunable performance constants (all have sensible defaults).
	ConcurrentRequests    int           // CONCURRENT_REQUESTS — upstream semaphore size (default 10)
	UserCacheTTL          time.Duration // USER_CACHE_TTL (default 24600s)
	BeatmapCacheTTL       time.Duration // BEATMAP_CACHE_TTL (default 86400s)
	ActivityQueueCapacity int           // ACTIVITY_QUEUE_CAPACITY — ring size Q (default 50)
	LeaderboardCacheTTL   time.Duration // LEADERBOARD_CACHE_TTL (default 300s)
	GraphCacheTTL         time.Duration // GRAPH_CACHE_TTL (default 600s)
	DailyUpdatePace       time.Duration // DAILY_UPDATE_PACE — per-user spacing in the daily loop (default 15s)
	AdminSessionLifetime  time.Duration // fixed at 84600s per spec, not configurable
}

// DeployCookies reports whether auth cookies should be marked Secure
// with the production cookie domain.
func (c *Config) DeployCookies() bool { return c.DeployCookie }

// CookieDomainAttr returns the extra cookie attributes appended in
// deploy mode, or the empty string otherwise.
func (c *Config) CookieDomainAttr() string {
	if c.DeployCookie {
		return "; Secure; Domain=.mapperinfluences.com"
	}
	return ""
}

// Load reads configuration from environment variables, exiting the
// process with a descriptive message if a required variable is unset.
func Load() *Config {
	cfg := &Config{
		ClientID:             requireEnv("CLIENT_ID"),
		ClientSecret:         requireEnv("CLIENT_SECRET"),
		RedirectURI:          requireEnv("REDIRECT_URI"),
		PostLoginRedirectURI: requireEnv("POST_LOGIN_REDIRECT_URI"),
		AdminPassword:        requireEnv("ADMIN_PASSWORD"),
		JWTSecretKey:         requireEnv("JWT_SECRET_KEY"),
		SurrealURL:           requireEnv("SURREAL_URL"),
		SurrealUser:          requireEnv("SURREAL_USER"),
		SurrealPass:          requireEnv("SURREAL_PASS"),
		Port:                 getEnv("PORT", "8080"),
		DeployCookie:         getEnvBool("DEPLOY_COOKIE"),
		DailyUpdate:          getEnvBool("DAILY_UPDATE"),
		DiscordWebhookURL:    os.Getenv("DISCORD_WEBHOOK_URL"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),

		ConcurrentRequests:    parseInt(os.Getenv("CONCURRENT_REQUESTS"), 10),
		UserCacheTTL:          parseDuration(os.Getenv("USER_CACHE_TTL"), 24600*time.Second),
		BeatmapCacheTTL:       parseDuration(os.Getenv("BEATMAP_CACHE_TTL"), 86400*time.Second),
		ActivityQueueCapacity: parseInt(os.Getenv("ACTIVITY_QUEUE_CAPACITY"), 50),
		LeaderboardCacheTTL:   parseDuration(os.Getenv("LEADERBOARD_CACHE_TTL"), 300*time.Second),
		GraphCacheTTL:         parseDuration(os.Getenv("GRAPH_CACHE_TTL"), 600*time.Second),
		DailyUpdatePace:       parseDuration(os.Getenv("DAILY_UPDATE_PACE"), 15*time.Second),
		AdminSessionLifetime:  84600 * time.Second,
	}

	if !strings.HasPrefix(cfg.SurrealURL, "ws://") && !strings.HasPrefix(cfg.SurrealURL, "wss://") {
		fmt.Fprintf(os.Stderr, "ERROR: SURREAL_URL must start with ws:// or wss://, got %q\n", cfg.SurrealURL)
		os.Exit(1)
	}

	return cfg
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "ERROR: %s is not set!\n", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}
