// Package common defines shared constants and sentinel errors used across
// the cycle login server, transports and client. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorBackend marks a failed read or write against the record store.
	// Nothing is retried; the caller reports "operation failed, try again".
	ErrorBackend = errors.New("backend failure")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInvalidInput = errors.New("invalid input")

	// Auth errors (invalid or malformed dev token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
