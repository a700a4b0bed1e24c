package ledger

import (
	"time"
)

// Currency identifies one balance entry inside a wallet. Network is
// set for crypto entries only.
type Currency struct {
	Symbol  string
	Network string
	Crypto  bool
}

// Config holds ledger defaults applied to lazily created wallets.
type Config struct {
	BaseCurrency        string
	MaxDailyLimit       float64
	MaxTransactionLimit float64
}

// TransferParams describes an atomic two-wallet transfer.
type TransferParams struct {
	FromUserID  uint
	ToUserID    uint
	Amount      float64
	Currency    string
	Fee         float64
	Description string
	PropertyID  string
}

// ExchangeParams describes a single-wallet currency exchange whose
// amounts were already resolved by the caller.
type ExchangeParams struct {
	UserID   uint
	From     Currency
	To       Currency
	Amount   float64
	ToAmount float64
	Rate     float64
	Slippage float64
}

// MetricsCollector receives ledger and orchestrator measurements.
type MetricsCollector interface {
	RecordTransaction(txType string, amount float64)
	RecordError(operation, errType string)
	RecordOperationDuration(operation string, duration time.Duration)
	RecordNotificationFailure(eventType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransaction(string, float64)              {}
func (n *NoopMetricsCollector) RecordError(string, string)                     {}
func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)  {}
func (n *NoopMetricsCollector) RecordNotificationFailure(string)               {}
