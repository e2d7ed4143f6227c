package models

import "time"

// Lifecycle event names published to the fanout exchange.
const (
	EventSessionCreated   = "session.created"
	EventSessionActivated = "session.activated"
)

// LifecycleEvent is the payload published when a session changes state.
// Publishing is fire-and-forget; consumers must tolerate missing events.
type LifecycleEvent struct {
	Event          string    `json:"event"`
	SessionID      string    `json:"session_id"`
	RecipientPhone string    `json:"recipient_phone,omitempty"`
	At             time.Time `json:"at"`
}
