package domain

import "errors"

var (
	// ErrSessionNotFound is returned by stores for tokens with no record.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenExists guards against reuse of a live or revoked token.
	ErrTokenExists = errors.New("session token already exists")
)
