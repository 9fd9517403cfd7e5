// Package session issues and verifies the HS256 JWT session tokens
// handed to browsers after the osu! OAuth2 redirect completes.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mapperinfluences/backend/internal/apperror"
)

// Claims is the payload carried by a session token: the local user's
// osu! identity plus the upstream osu! access token, so later requests
// on the user's behalf (bio edits triggering a re-fetch, etc.) don't
// need a second OAuth2 round trip.
type Claims struct {
	UserID   uint32 `json:"user_id"`
	Username string `json:"username"`
	OsuToken string `json:"osu_token"`
	jwt.RegisteredClaims
}

// Manager creates and verifies session tokens with a single shared
// HMAC secret.
type Manager struct {
	secret   []byte
	lifetime time.Duration
}

// NewManager builds a Manager. secret must be non-empty; lifetime is
// how long issued tokens remain valid.
func NewManager(secret string, lifetime time.Duration) *Manager {
	return &Manager{secret: []byte(secret), lifetime: lifetime}
}

// Create issues a signed token for the given osu! identity, valid for
// the Manager's configured lifetime.
func (m *Manager) Create(userID uint32, username, osuToken string) (string, error) {
	return m.CreateWithDuration(userID, username, osuToken, m.lifetime)
}

// CreateWithDuration issues a signed token with an explicit lifetime,
// overriding the Manager's default. Used for the OAuth2 exchange
// (duration = the upstream access token's expires_in) and the admin
// backdoor (a fixed 23:30 lifetime).
func (m *Manager) CreateWithDuration(userID uint32, username, osuToken string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		OsuToken: osuToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return signed, nil
}

// Verify parses and validates a token previously issued by Create.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperror.JWTVerification(err)
	}
	if !token.Valid {
		return nil, apperror.JWTVerification(errors.New("token not valid"))
	}
	return claims, nil
}
