package gateway

import (
	"context"
	"fmt"
	"math"
	"strings"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeClient drives the card rail through Stripe PaymentIntents.
type StripeClient struct {
	api         *client.API
	redirectURL string
}

// NewStripeClient creates a Stripe gateway client. redirectURL is the
// post-checkout return page embedded in the payment link.
func NewStripeClient(secretKey, redirectURL string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api, redirectURL: redirectURL}
}

func (c *StripeClient) CreatePayment(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultCallTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}

	return &PaymentIntent{
		ExternalID:  pi.ID,
		RedirectURL: fmt.Sprintf("%s?payment_intent_client_secret=%s", c.redirectURL, pi.ClientSecret),
		Status:      mapStripeStatus(pi.Status),
	}, nil
}

func (c *StripeClient) GetStatus(ctx context.Context, externalID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultCallTimeout)
	defer cancel()

	pi, err := c.api.PaymentIntents.Get(externalID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return "", fmt.Errorf("stripe status lookup failed: %w", err)
	}
	return mapStripeStatus(pi.Status), nil
}

func mapStripeStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusCompleted
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusProcessing
	}
}

// toMinorUnits converts a major-unit amount to the cent amount Stripe
// expects.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var _ Client = (*StripeClient)(nil)
