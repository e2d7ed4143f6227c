package models

import "errors"

// Domain-level sentinel errors for business logic
// These errors should not contain HTTP-specific information

var (
	// ErrSessionNotFound indicates that a session with the given ID does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates that the session is past its expires_at
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCoordinates indicates an out-of-range latitude or longitude
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrRecipientRequired indicates that the recipient phone was empty
	ErrRecipientRequired = errors.New("recipient phone is required")

	// ErrNegativeAccuracy indicates a negative accuracy radius
	ErrNegativeAccuracy = errors.New("accuracy must be non-negative")
)
