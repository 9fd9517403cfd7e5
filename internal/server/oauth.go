package server

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mapperinfluences/backend/internal/apperror"
)

const (
	userTokenCookie = "user_token"
	loggedInCookie  = "logged_in"
	cookieMaxAge    = 86400 // seconds
)

var errMissingCode = errors.New("missing code query parameter")

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// setAuthCookies sets the HTTP-only session cookie and the
// frontend-readable logged_in flag, both with the deploy-mode
// attributes (Secure; Domain=...) when configured.
func (s *Server) setAuthCookies(w http.ResponseWriter, sessionToken string) {
	domainAttr := s.cfg.CookieDomainAttr()
	maxAge := strconv.Itoa(cookieMaxAge)
	w.Header().Add("Set-Cookie", userTokenCookie+"="+sessionToken+"; HttpOnly; Max-Age="+maxAge+"; Path=/; SameSite=Lax"+domainAttr)
	w.Header().Add("Set-Cookie", loggedInCookie+"=true; Max-Age="+maxAge+"; Path=/; SameSite=Lax"+domainAttr)
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	domainAttr := s.cfg.CookieDomainAttr()
	w.Header().Add("Set-Cookie", userTokenCookie+"=deleted; HttpOnly; Max-Age=-1; Path=/; SameSite=Lax"+domainAttr)
	w.Header().Add("Set-Cookie", loggedInCookie+"=false; Max-Age=-1; Path=/; SameSite=Lax"+domainAttr)
}

// handleOAuthRedirect completes the osu! OAuth2 authorization-code
// exchange: swap the code for an access token, fetch the
// authenticated user, issue a session token, set cookies, and
// redirect to the configured post-login URL. Concurrently records a
// LOGIN activity and flips the user's authenticated flag.
func (s *Server) handleOAuthRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.BadRequest(errMissingCode))
		return
	}

	ctx := r.Context()

	token, err := s.requester.GetAuthToken(ctx, code)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	user, err := s.requester.GetTokenUser(ctx, token.AccessToken)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	sessionToken, err := s.sessions.CreateWithDuration(user.ID, user.Username, token.AccessToken, time.Duration(token.ExpiresIn)*time.Second)
	if err != nil {
		writeError(w, err)
		return
	}

	go func() {
		if err := s.store.AddLoginActivity(user.ID); err != nil {
			slog.Warn("failed to record login activity", "user_id", user.ID, "error", err)
		}
		if err := s.store.UpsertUser(user, true); err != nil {
			slog.Warn("failed to upsert user on login", "user_id", user.ID, "error", err)
			return
		}
		if err := s.store.SetAuthenticated(user.ID); err != nil {
			slog.Warn("failed to set authenticated flag", "user_id", user.ID, "error", err)
		}
	}()

	s.setAuthCookies(w, sessionToken)
	http.Redirect(w, r, s.cfg.PostLoginRedirectURI, http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookies(w)
	http.Redirect(w, r, s.cfg.PostLoginRedirectURI, http.StatusFound)
}

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
	ID       uint32 `json:"id" validate:"required"`
}

// handleAdminLogin is the password-gated testing backdoor: it skips
// the OAuth2 dance entirely and issues a session token for an
// arbitrary osu! user id, using the credential-grant token to fetch
// that user's profile.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if !constantTimeEqual(req.Password, s.cfg.AdminPassword) {
		writeError(w, apperror.WrongAdminPassword())
		return
	}

	ctx := r.Context()

	bearer, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	user, err := s.requester.GetUser(ctx, bearer, req.ID)
	if err != nil {
		writeError(w, apperror.Internal(err))
		return
	}

	sessionToken, err := s.sessions.CreateWithDuration(user.ID, user.Username, bearer, s.cfg.AdminSessionLifetime)
	if err != nil {
		writeError(w, err)
		return
	}

	s.notifyDiscordAdminLogin(user.ID, user.Username)

	s.setAuthCookies(w, sessionToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
}
