package repositories

import (
	"context"
	"errors"
	"time"

	"easyrent/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrDuplicateWallet     = errors.New("wallet already exists")
	ErrStaleWallet         = errors.New("wallet was modified concurrently")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateTxID       = errors.New("duplicate transaction id")
)

// WalletRepository defines the interface for wallet and ledger
// persistence. The wallet row is the unit of mutual exclusion:
// UpdateWithVersion performs a conditional write so two concurrent
// check-and-reserve sequences cannot both succeed on stale state.
type WalletRepository interface {
	// Core wallet operations
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error
	UpdateWithVersion(wallet *models.Wallet) error

	// Ledger operations
	CreateTransaction(tx *models.WalletTransaction) error
	UpdateTransaction(tx *models.WalletTransaction) error
	GetTransactionByTransactionID(txID string) (*models.WalletTransaction, error)
	GetTransactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error)
	GetRecentTransactions(ctx context.Context, walletID uint, since time.Time, limit int) ([]models.WalletTransaction, error)

	// Volume queries
	GetCompletedVolume(ctx context.Context, walletID uint, currency string, start, end time.Time) (float64, error)
	GetProviderVolume(ctx context.Context, walletID uint, providerID string, start, end time.Time) (float64, error)
	CountTransactions(ctx context.Context, walletID uint) (int64, error)

	// Reconciliation
	GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.WalletTransaction, error)

	// Statistics
	GetVolumeSince(ctx context.Context, walletID uint, since time.Time) (float64, error)

	// Batch operations
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
