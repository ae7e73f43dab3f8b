package app

import "errors"

// Sentinel error kinds for the service.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrInvalidSlot     = errors.New("invalid grade slot")
)
