package config

import (
	"testing"
	"time"
)

func TestNewConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safetrack")
	t.Setenv("SERVER_URL", "")
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("SMS_TIMEOUT", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_PHONE_NUMBER", "")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Fatalf("server url = %q", cfg.ServerURL)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.SMSTimeout != 15*time.Second {
		t.Fatalf("sms timeout = %s", cfg.SMSTimeout)
	}
	// Absent credentials degrade to demo mode, never a startup failure.
	if cfg.TwilioConfigured() {
		t.Fatal("twilio must not be considered configured")
	}
}

func TestTwilioConfiguredNeedsFullTrio(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safetrack")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550000000")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.TwilioConfigured() {
		t.Fatal("partial credentials must not enable the transport")
	}

	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	cfg, err = NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if !cfg.TwilioConfigured() {
		t.Fatal("full trio should enable the transport")
	}
}

func TestNewConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/safetrack")
	t.Setenv("SMS_TIMEOUT", "soon")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error for unparseable SMS_TIMEOUT")
	}
}
