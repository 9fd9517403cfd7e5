package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type discordWebhookMessage struct {
	Content string `json:"content"`
}

// notifyDiscordAdminLogin fires a best-effort webhook so that use of
// the testing backdoor in a deployed environment is visible
// out-of-band. Skipped entirely when DISCORD_WEBHOOK_URL is unset;
// never blocks or fails the caller's response.
func (s *Server) notifyDiscordAdminLogin(userID uint32, username string) {
	if s.cfg.DiscordWebhookURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		body, err := json.Marshal(discordWebhookMessage{
			Content: fmt.Sprintf("admin backdoor login as user %d (%s)", userID, username),
		})
		if err != nil {
			slog.Warn("discord webhook: failed to encode message", "error", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.DiscordWebhookURL, bytes.NewReader(body))
		if err != nil {
			slog.Warn("discord webhook: failed to build request", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		client := http.Client{Timeout: 5 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			slog.Warn("discord webhook: request failed", "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
			slog.Warn("discord webhook: unexpected status", "status", resp.StatusCode)
		}
	}()
}
