package server

import (
	"context"
	"net/http"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/session"
)

type identityKey struct{}

// identityFromContext returns the decoded session payload attached to
// a request's context by requireAuth.
func identityFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(*session.Claims)
	return claims, ok
}

// requireAuth reads the user_token cookie, verifies it, and attaches
// the decoded claims to the request context. Rejects with 401 on a
// missing cookie or verification failure.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("user_token")
		if err != nil {
			writeError(w, apperror.MissingTokenCookie())
			return
		}
		claims, err := s.sessions.Verify(cookie.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
