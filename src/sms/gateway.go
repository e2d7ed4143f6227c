package sms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMessage is sent when the sender provides no custom text.
const DefaultMessage = "Please share your location for safety reasons."

// OutcomeState classifies the result of a send attempt.
type OutcomeState string

const (
	// StateSent means the transport accepted the message.
	StateSent OutcomeState = "sent"
	// StateDemoMode means no transport is configured; the caller must
	// surface the tracking URL for manual sharing.
	StateDemoMode OutcomeState = "demo_mode"
	// StateFailed means the transport rejected or errored; the URL is
	// still returned so the caller can degrade gracefully.
	StateFailed OutcomeState = "failed"
)

// Outcome is the result of SendTrackingLink. It always carries the tracking
// URL; a transport error never surfaces as anything but StateFailed.
type Outcome struct {
	State       OutcomeState
	TrackingURL string
	MessageRef  string
	Err         string
}

// Gateway dispatches a tracking link to a recipient.
type Gateway interface {
	SendTrackingLink(ctx context.Context, recipientPhone, sessionID, message string) Outcome
}

// transport is the wire-level sender. Kept as an interface so gateway
// behavior is testable without Twilio.
type transport interface {
	Send(ctx context.Context, to, body string) (messageRef string, err error)
}

// TwilioGateway sends tracking links over SMS through Twilio, or degrades to
// demo mode when no transport is configured.
type TwilioGateway struct {
	serverURL string
	transport transport
}

// NewGateway builds a gateway for the given link base URL. A nil transport
// puts the gateway in demo mode.
func NewGateway(serverURL string, t transport) *TwilioGateway {
	return &TwilioGateway{serverURL: strings.TrimRight(serverURL, "/"), transport: t}
}

// SendTrackingLink builds the tracking URL and message body, then attempts
// delivery. All transport errors are captured in the outcome, never returned
// as faults.
func (g *TwilioGateway) SendTrackingLink(ctx context.Context, recipientPhone, sessionID, message string) Outcome {
	trackingURL := g.TrackingURL(sessionID)

	if g.transport == nil {
		slog.Info("SMS transport not configured, returning tracking URL for manual sharing",
			"session_id", sessionID)
		return Outcome{State: StateDemoMode, TrackingURL: trackingURL}
	}

	// Normalization happens only on the transport path.
	to := NormalizePhone(recipientPhone)
	body := MessageBody(message, trackingURL)

	ref, err := g.transport.Send(ctx, to, body)
	if err != nil {
		slog.Warn("SMS delivery failed",
			"session_id", sessionID,
			"error", err)
		return Outcome{State: StateFailed, TrackingURL: trackingURL, Err: err.Error()}
	}

	slog.Info("SMS sent", "session_id", sessionID, "message_ref", ref)
	return Outcome{State: StateSent, TrackingURL: trackingURL, MessageRef: ref}
}

// TrackingURL appends the session id to the configured base server URL.
func (g *TwilioGateway) TrackingURL(sessionID string) string {
	return fmt.Sprintf("%s/?tracking_id=%s", g.serverURL, sessionID)
}

// NormalizePhone strips whitespace and ensures a +-prefixed international
// format.
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}

// MessageBody renders the outbound SMS text, including the 24h expiry note.
func MessageBody(custom, trackingURL string) string {
	msg := custom
	if msg == "" {
		msg = DefaultMessage
	}
	return fmt.Sprintf("%s\n\nShare your location here: %s\n\nThis link will expire in 24 hours.", msg, trackingURL)
}
