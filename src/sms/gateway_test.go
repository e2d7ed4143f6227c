package sms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type stubTransport struct {
	sendFn func(ctx context.Context, to, body string) (string, error)
	lastTo string
	body   string
}

func (s *stubTransport) Send(ctx context.Context, to, body string) (string, error) {
	s.lastTo = to
	s.body = body
	if s.sendFn == nil {
		return "SM123", nil
	}
	return s.sendFn(ctx, to, body)
}

func TestDemoModeReturnsTrackingURL(t *testing.T) {
	g := NewGateway("http://localhost:8080", nil)
	sessionID := uuid.New().String()

	outcome := g.SendTrackingLink(context.Background(), "+15551234567", sessionID, "")

	if outcome.State != StateDemoMode {
		t.Fatalf("expected demo mode, got %s", outcome.State)
	}
	want := "http://localhost:8080/?tracking_id=" + sessionID
	if outcome.TrackingURL != want {
		t.Fatalf("tracking url = %q, want %q", outcome.TrackingURL, want)
	}
	// The embedded id is the 36-char uuid textual form.
	idx := strings.Index(outcome.TrackingURL, "tracking_id=")
	if id := outcome.TrackingURL[idx+len("tracking_id="):]; len(id) != 36 {
		t.Fatalf("expected 36-char id in url, got %d chars", len(id))
	}
}

func TestSendUsesNormalizedPhoneAndBody(t *testing.T) {
	tr := &stubTransport{}
	g := NewGateway("https://track.example.com/", tr)

	outcome := g.SendTrackingLink(context.Background(), " 1555 123 4567 ", "abc", "Where are you?")

	if outcome.State != StateSent {
		t.Fatalf("expected sent, got %s", outcome.State)
	}
	if outcome.MessageRef != "SM123" {
		t.Fatalf("message ref = %q", outcome.MessageRef)
	}
	if tr.lastTo != "+15551234567" {
		t.Fatalf("normalized phone = %q", tr.lastTo)
	}

	wantBody := "Where are you?\n\nShare your location here: https://track.example.com/?tracking_id=abc\n\nThis link will expire in 24 hours."
	if tr.body != wantBody {
		t.Fatalf("body = %q, want %q", tr.body, wantBody)
	}
}

func TestSendDefaultMessage(t *testing.T) {
	tr := &stubTransport{}
	g := NewGateway("http://localhost:8080", tr)

	g.SendTrackingLink(context.Background(), "+15551234567", "abc", "")

	if !strings.HasPrefix(tr.body, DefaultMessage+"\n\n") {
		t.Fatalf("expected default message prefix, got %q", tr.body)
	}
}

func TestTransportErrorBecomesFailedOutcome(t *testing.T) {
	tr := &stubTransport{
		sendFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("twilio: 21211 invalid number")
		},
	}
	g := NewGateway("http://localhost:8080", tr)

	outcome := g.SendTrackingLink(context.Background(), "+15551234567", "abc", "")

	if outcome.State != StateFailed {
		t.Fatalf("expected failed, got %s", outcome.State)
	}
	if outcome.Err == "" {
		t.Fatal("expected error detail in outcome")
	}
	// The URL rides along so the caller can degrade gracefully.
	if outcome.TrackingURL != "http://localhost:8080/?tracking_id=abc" {
		t.Fatalf("tracking url missing on failure: %q", outcome.TrackingURL)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+15551234567":   "+15551234567",
		"15551234567":    "+15551234567",
		" 1555 123 4567": "+15551234567",
		"+44 20 7946":    "+44207946",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
