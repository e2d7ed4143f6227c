package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2003abishek/sms-tracker/src/config"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioTransport sends SMS through the Twilio REST API.
type twilioTransport struct {
	client *twilio.RestClient
	from   string
}

func newTwilioTransport(accountSID, authToken, from string, timeout time.Duration) *twilioTransport {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	// A hanging transport call would stall the creating request; bound it.
	client.SetTimeout(timeout)

	return &twilioTransport{client: client, from: from}
}

// Send dispatches one message. The timeout is enforced by the underlying
// HTTP client; ctx is accepted for interface symmetry.
func (t *twilioTransport) Send(_ context.Context, to, body string) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio accepted message without a sid")
	}
	return *resp.Sid, nil
}

// NewGatewayFromConfig wires a gateway from runtime configuration. Missing
// Twilio credentials mean demo mode, never a startup failure.
func NewGatewayFromConfig(cfg *config.GlobalConfig) *TwilioGateway {
	if !cfg.TwilioConfigured() {
		slog.Warn("Twilio not configured - tracking links must be shared manually")
		return NewGateway(cfg.ServerURL, nil)
	}

	t := newTwilioTransport(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.SMSTimeout)
	slog.Info("Twilio SMS transport configured", "from", cfg.TwilioPhoneNumber)
	return NewGateway(cfg.ServerURL, t)
}
