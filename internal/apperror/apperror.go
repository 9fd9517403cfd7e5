// Package apperror is the error taxonomy shared by every handler and
// background task: a status-carrying error type plus named
// constructors, so a handler can return a plain error and the server
// package maps it to the right HTTP status at the boundary.
package apperror

import (
	"fmt"
	"net/http"
)

// Error is an application error with an HTTP status attached.
type Error struct {
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func new(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, err: err}
}

// MissingUser is returned when a user id has no local record and no
// upstream fallback resolved it either.
func MissingUser(id uint32) *Error {
	return new(http.StatusNotFound, fmt.Sprintf("missing user %d", id), nil)
}

// MissingInfluence is returned when an influence edge could not be
// created, found, or removed.
func MissingInfluence() *Error {
	return new(http.StatusNotFound, "missing influence", nil)
}

// NonExistingMap is returned when a beatmap id referenced by a request
// does not resolve on the upstream osu! API.
func NonExistingMap(id uint32) *Error {
	return new(http.StatusNotFound, fmt.Sprintf("map with id %d could not be found on osu! API", id), nil)
}

// MissingTokenCookie is returned by auth middleware when the session
// cookie is absent.
func MissingTokenCookie() *Error {
	return new(http.StatusUnauthorized, "missing user_token cookie", nil)
}

// JWTVerification is returned when a session token fails signature or
// expiry verification.
func JWTVerification(err error) *Error {
	return new(http.StatusUnauthorized, "jwt verification error", err)
}

// WrongAdminPassword is returned by the admin-login testing backdoor.
func WrongAdminPassword() *Error {
	return new(http.StatusUnauthorized, "wrong admin password", nil)
}

// StringTooLong is returned when a bio or description exceeds the
// 5000-byte bound.
func StringTooLong() *Error {
	return new(http.StatusUnprocessableEntity, "input string exceeds maximum length", nil)
}

// BadRequest wraps any other input-shape problem (malformed path
// segment, invalid body) as a 422.
func BadRequest(err error) *Error {
	return new(http.StatusUnprocessableEntity, "bad request", err)
}

// MissingLayerJSON is returned when an upstream response is missing an
// expected wrapping layer during multi-id batch decoding.
func MissingLayerJSON() *Error {
	return new(http.StatusUnprocessableEntity, "value missing", nil)
}

// Internal wraps any unexpected failure (database I/O, upstream I/O,
// serialization, lock contention, task join) as a 500.
func Internal(err error) *Error {
	return new(http.StatusInternalServerError, "internal error", err)
}

// ActivityStreamClosed is returned when the live activity subscription
// cannot be re-established.
func ActivityStreamClosed() *Error {
	return new(http.StatusInternalServerError, "activity stream closed", nil)
}

// As extracts an *Error from err, defaulting to Internal(err) when err
// is not already one of ours.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*Error); ok {
		return appErr
	}
	return Internal(err)
}
