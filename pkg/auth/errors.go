package auth

import "errors"

var (
	// ErrUnauthorized is returned for a wrong password or a missing or
	// invalid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited is returned when a client has too many recent failed
	// logins.
	ErrRateLimited = errors.New("too many failed login attempts")
)
