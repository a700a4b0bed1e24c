// Package gateway holds the external payment rail clients. Each rail
// exposes the same narrow contract: create a payment, poll its status.
package gateway

import (
	"context"
	"time"
)

// Normalized gateway statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// DefaultCallTimeout bounds one gateway API call.
const DefaultCallTimeout = 30 * time.Second

// PaymentIntent is the normalized result of creating an external
// payment.
type PaymentIntent struct {
	ExternalID  string `json:"externalId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Status      string `json:"status"`
}

// Client is one external payment rail.
type Client interface {
	CreatePayment(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetStatus(ctx context.Context, externalID string) (string, error)
}
