package schemas

import (
	"time"

	"github.com/2003abishek/sms-tracker/src/models"
)

// CreateSessionRequest represents the request body for creating a tracking session
type CreateSessionRequest struct {
	SenderPhone    string `json:"sender_phone"`
	RecipientPhone string `json:"recipient_phone" binding:"required"`
	Message        string `json:"message"`
}

// CreateSessionResponse represents the response for a created tracking session
type CreateSessionResponse struct {
	Session      SessionView `json:"session"`
	TrackingURL  string      `json:"tracking_url,omitempty"`
	SMSSent      bool        `json:"sms_sent"`
	MessageRef   string      `json:"message_ref,omitempty"`
	Warning      string      `json:"warning,omitempty"`
}

// RecordLocationRequest represents the request body for submitting a location.
// Latitude and longitude are pointers so that a legitimate 0.0 still passes
// the required binding.
type RecordLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
}

// SessionView is a TrackingSession with its expiry overlaid on the status.
type SessionView struct {
	ID             string               `json:"id"`
	SenderPhone    string               `json:"sender_phone,omitempty"`
	RecipientPhone string               `json:"recipient_phone"`
	Message        string               `json:"message,omitempty"`
	Status         models.SessionStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

// NewSessionView projects a session for responses, computing the effective
// status at the given instant.
func NewSessionView(s *models.TrackingSession, now time.Time) SessionView {
	return SessionView{
		ID:             s.ID,
		SenderPhone:    s.SenderPhone,
		RecipientPhone: s.RecipientPhone,
		Message:        s.Message,
		Status:         s.EffectiveStatus(now),
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	}
}
