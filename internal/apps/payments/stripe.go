package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps"
	"github.com/stripe/stripe-go/v83"
)

// PaymentIntent is the provider's answer to a create request.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
}

// PaymentProvider creates payment intents. Implementations must forward
// idempotencyKey so that retries with the same key do not double-charge.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string, idempotencyKey string) (*PaymentIntent, error)
}

// StripeProvider is constructed once at startup and shared by all requests.
type StripeProvider struct {
	client   *stripe.Client
	currency string
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		client:   stripe.NewClient(secretKey),
		currency: string(stripe.CurrencyUSD),
	}
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string, idempotencyKey string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	intent, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &apps.ProviderError{
				Provider: "stripe",
				Status:   stripeErr.HTTPStatusCode,
				Message:  stripeErr.Msg,
				Code:     string(stripeErr.Code),
			}
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
	}, nil
}
