package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Message is the provider's receipt for a queued SMS.
type Message struct {
	SID    string
	To     string
	Status string
}

type SMSProvider interface {
	SendMessage(ctx context.Context, to, from, body string) (*Message, error)
}

// TwilioProvider is constructed once at startup and shared by all requests.
type TwilioProvider struct {
	client *twilio.RestClient
}

func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

func (p *TwilioProvider) SendMessage(ctx context.Context, to, from, body string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			return nil, &apps.ProviderError{
				Provider: "twilio",
				Status:   restErr.Status,
				Message:  restErr.Message,
				Code:     fmt.Sprint(restErr.Code),
			}
		}
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	msg := &Message{To: to}
	if resp.Sid != nil {
		msg.SID = *resp.Sid
	}
	if resp.To != nil {
		msg.To = *resp.To
	}
	if resp.Status != nil {
		msg.Status = *resp.Status
	}
	return msg, nil
}
