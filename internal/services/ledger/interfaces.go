package ledger

import (
	"context"

	"easyrent/internal/models"
)

// WalletCache caches wallet aggregates. Satisfied by
// repositories/cache.CacheService.
type WalletCache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// Converter is the slice of the rates service the ledger needs for
// display-only balance aggregation.
type Converter interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// Service is the wallet ledger interface.
type Service interface {
	// Wallet lifecycle
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// Ledger log
	AddTransaction(ctx context.Context, tx *models.WalletTransaction) (string, error)
	TransitionStatus(ctx context.Context, transactionID, newStatus, errMsg string) (*models.WalletTransaction, error)
	UpdateTransactionDetails(ctx context.Context, tx *models.WalletTransaction) error
	GetTransaction(ctx context.Context, transactionID string) (*models.WalletTransaction, error)
	GetTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.WalletTransaction, error)

	// Balance mutation
	ReserveFunds(ctx context.Context, userID uint, cur Currency, amount float64) error
	ReleaseFunds(ctx context.Context, userID uint, cur Currency, amount float64, capture bool) error
	Credit(ctx context.Context, userID uint, cur Currency, amount float64) error
	Debit(ctx context.Context, userID uint, cur Currency, amount float64) error

	// Composite atomic operations
	Transfer(ctx context.Context, params TransferParams) (fromTxID, toTxID string, err error)
	Exchange(ctx context.Context, params ExchangeParams) (txID string, err error)

	// Payment instruments
	RegisterPaymentMethod(ctx context.Context, userID uint, method models.PaymentMethod) error
	SetDefaultPaymentMethod(ctx context.Context, userID uint, methodID string) error
	RegisterMobileMoneyAccount(ctx context.Context, userID uint, account models.MobileMoneyAccount) error

	// Derived views
	GetTotalBalance(ctx context.Context, userID uint, currency string) (float64, error)
	UpdateStats(ctx context.Context, userID uint) error
}
