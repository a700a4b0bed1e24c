package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"easyrent/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	result := r.db.Create(wallet)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key") {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(wallet *models.Wallet) error {
	result := r.db.Save(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	return nil
}

// UpdateWithVersion writes the wallet only if nobody else has written
// it since it was read. The WHERE clause on version makes the balance
// check-and-reserve a single atomic update at the storage layer.
func (r *walletRepository) UpdateWithVersion(wallet *models.Wallet) error {
	current := wallet.Version
	wallet.Version++
	result := r.db.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, current).
		Updates(map[string]interface{}{
			"fiat_currencies":       wallet.FiatCurrencies,
			"crypto_currencies":     wallet.CryptoCurrencies,
			"payment_methods":       wallet.PaymentMethods,
			"mobile_money_accounts": wallet.MobileMoneyAccounts,
			"settings":              wallet.Settings,
			"stats":                 wallet.Stats,
			"status":                wallet.Status,
			"status_reason":         wallet.StatusReason,
			"last_activity_at":      wallet.LastActivityAt,
			"version":               wallet.Version,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		wallet.Version = current
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		wallet.Version = current
		return ErrStaleWallet
	}
	return nil
}

func (r *walletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	result := r.db.Create(tx)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key") {
			return ErrDuplicateTxID
		}
		return fmt.Errorf("failed to create transaction: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) UpdateTransaction(tx *models.WalletTransaction) error {
	result := r.db.Save(tx)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetTransactionByTransactionID(txID string) (*models.WalletTransaction, error) {
	var tx models.WalletTransaction
	if err := r.db.Where("transaction_id = ?", txID).First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *walletRepository) GetTransactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txs, nil
}

func (r *walletRepository) GetRecentTransactions(ctx context.Context, walletID uint, since time.Time, limit int) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND created_at >= ?", walletID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}
	return txs, nil
}

// GetCompletedVolume sums completed outgoing entries for one currency
// in [start, end). Deposits and received entries do not count against
// spending limits.
func (r *walletRepository) GetCompletedVolume(ctx context.Context, walletID uint, currency string, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND currency = ? AND status = ? AND created_at >= ? AND created_at < ?",
			walletID, currency, models.TransactionStatusCompleted, start, end).
		Where("type IN ?", []string{
			models.TransactionTypePayment,
			models.TransactionTypeWithdrawal,
			models.TransactionTypeTransfer,
		}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get completed volume: %w", err)
	}
	return total, nil
}

func (r *walletRepository) GetProviderVolume(ctx context.Context, walletID uint, providerID string, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND provider_id = ? AND created_at >= ? AND created_at < ?",
			walletID, providerID, start, end).
		Where("status IN ?", []string{
			models.TransactionStatusCompleted,
			models.TransactionStatusProcessing,
			models.TransactionStatusPending,
		}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get provider volume: %w", err)
	}
	return total, nil
}

func (r *walletRepository) CountTransactions(ctx context.Context, walletID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", walletID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// GetStalePending returns pending or processing transactions created
// before olderThan, for the reconciliation sweep. Internal entries are
// excluded; they never wait on an external rail.
func (r *walletRepository) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []string{
			models.TransactionStatusPending,
			models.TransactionStatusProcessing,
		}, olderThan).
		Where("payment_method_type <> ?", models.PaymentMethodInternal).
		Order("created_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stale pending transactions: %w", err)
	}
	return txs, nil
}

func (r *walletRepository) GetVolumeSince(ctx context.Context, walletID uint, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND status = ? AND created_at >= ?",
			walletID, models.TransactionStatusCompleted, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get volume: %w", err)
	}
	return total, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &walletRepository{db: tx}
		return fn(txRepo)
	})
}
