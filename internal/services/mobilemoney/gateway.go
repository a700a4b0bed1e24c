package mobilemoney

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// OperatorClient is the external call to one operator's API. The
// adapter owns timeouts; implementations must honor ctx.
type OperatorClient interface {
	Dispatch(ctx context.Context, provider Provider, req Request) (*Result, error)
	GetStatus(ctx context.Context, provider Provider, reference string) (string, error)
}

// SandboxClient simulates operator behavior for development and tests.
// Confirmation-required providers return a pending result with a
// one-time code; others complete immediately.
type SandboxClient struct {
	// Latency, if set, is slept before responding.
	Latency time.Duration
}

func (c *SandboxClient) Dispatch(ctx context.Context, provider Provider, req Request) (*Result, error) {
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("MM-%s", uuid.NewString())
	}

	res := &Result{
		Success:     true,
		Reference:   reference,
		Status:      StatusCompleted,
		ProcessedAt: time.Now().UTC(),
	}
	if provider.RequiresConfirmation {
		res.Status = StatusPending
		res.ConfirmationRequired = true
		res.ConfirmationCode = fmt.Sprintf("%06d", rand.Intn(1000000))
	}
	return res, nil
}

func (c *SandboxClient) GetStatus(ctx context.Context, provider Provider, reference string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return StatusCompleted, nil
}

var _ OperatorClient = (*SandboxClient)(nil)
