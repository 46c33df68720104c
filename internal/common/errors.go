// Package common defines shared constants and sentinel errors used across
// client and server layers of proofdeck. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorEmptyName    = errors.New("name must not be empty")
	ErrorEmptyComment = errors.New("comment text must not be empty")
	ErrorBadStatus    = errors.New("unknown review status")
	ErrorNoFile       = errors.New("no file provided")

	// Auth errors (invalid or malformed owner token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
