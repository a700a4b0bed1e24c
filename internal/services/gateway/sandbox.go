package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SandboxClient simulates an external gateway for development and
// tests: every payment is accepted into processing and completes on
// the first status poll.
type SandboxClient struct {
	Prefix string
}

func (c *SandboxClient) CreatePayment(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	id := fmt.Sprintf("%s_%s", c.Prefix, uuid.NewString())
	return &PaymentIntent{
		ExternalID:  id,
		RedirectURL: fmt.Sprintf("https://sandbox.local/checkout/%s", id),
		Status:      StatusProcessing,
	}, nil
}

func (c *SandboxClient) GetStatus(ctx context.Context, externalID string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return StatusCompleted, nil
}

var _ Client = (*SandboxClient)(nil)
