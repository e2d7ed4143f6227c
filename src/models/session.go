package models

import "time"

// SessionStatus represents the status of a tracking session
type SessionStatus string

const (
	StatusPending SessionStatus = "pending"
	StatusActive  SessionStatus = "active"
	StatusExpired SessionStatus = "expired"
)

// SessionTTL is the lifetime of a tracking link.
const SessionTTL = 24 * time.Hour

// TrackingSession represents one sender->recipient location request. The id
// doubles as the capability token embedded in the shared link; there is no
// separate authentication.
type TrackingSession struct {
	ID             string        `json:"id"`
	SenderPhone    string        `json:"sender_phone,omitempty"`
	RecipientPhone string        `json:"recipient_phone"`
	Message        string        `json:"message,omitempty"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// IsExpired reports whether the session is past its expiry at the given
// instant. Pure; calling it repeatedly at the same logical time always
// returns the same answer.
func (s *TrackingSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// EffectiveStatus overlays expiry on the stored status. The expired state is
// never written back to the database; every consumer computes it at read time.
func (s *TrackingSession) EffectiveStatus(now time.Time) SessionStatus {
	if s.IsExpired(now) {
		return StatusExpired
	}
	return s.Status
}
