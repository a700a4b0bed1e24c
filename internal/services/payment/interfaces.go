package payment

import (
	"context"

	"easyrent/internal/services/rates"
)

// Service is the unified payment orchestrator. Business failures
// (declines, limit breaches, risk blocks) come back inside the
// response with a nil error; only configuration and programming
// failures return an error.
type Service interface {
	ProcessPayment(ctx context.Context, req Request) (*Response, error)
	ConfirmMobileMoneyPayment(ctx context.Context, userID uint, transactionID, code string) (*Response, error)
	ConfirmCryptoPayment(ctx context.Context, userID uint, transactionID, txHash string, confirmations int) (*Response, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)
	Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResponse, error)
	ReconcilePending(ctx context.Context, limit int) (*ReconcileReport, error)
}

// Converter is the slice of the rates service the orchestrator needs.
type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64) (*rates.Conversion, error)
	GetRate(ctx context.Context, from, to string) (float64, error)
	IsCrypto(symbol string) bool
}

// ReconcileReport summarizes one reconciliation sweep over stale
// pending transactions.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Flagged   int `json:"flagged"`
}
