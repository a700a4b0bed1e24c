package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"

	"github.com/google/uuid"
)

type service struct {
	repo    repositories.WalletRepository
	cache   WalletCache
	rates   Converter
	config  Config
	metrics MetricsCollector
}

// NewService creates a new ledger service.
func NewService(
	repo repositories.WalletRepository,
	cache WalletCache,
	converter Converter,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if converter == nil {
		panic("converter is required")
	}

	if config.BaseCurrency == "" {
		config.BaseCurrency = DefaultBaseCurrency
	}
	if config.MaxDailyLimit == 0 {
		config.MaxDailyLimit = DefaultMaxDailyLimit
	}
	if config.MaxTransactionLimit == 0 {
		config.MaxTransactionLimit = DefaultMaxTransactionLimit
	}

	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		rates:   converter,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, userID); err == nil {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if err == repositories.ErrWalletNotFound {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetWallet(ctx, wallet); err != nil {
			log.Printf("failed to cache wallet for user %d: %v", userID, err)
		}
	}
	return wallet, nil
}

// GetOrCreateWallet creates the wallet lazily on first use, seeded
// with one base fiat currency and one default internal payment method.
func (s *service) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if err != domainerrors.ErrWalletNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	wallet = &models.Wallet{
		UserID: userID,
		FiatCurrencies: []models.FiatBalance{
			{Symbol: s.config.BaseCurrency, IsBaseCurrency: true, ExchangeRate: 1},
		},
		PaymentMethods: []models.PaymentMethod{
			{
				ID:        uuid.NewString(),
				Type:      models.PaymentMethodInternal,
				Label:     "Wallet balance",
				IsDefault: true,
				IsActive:  true,
				CreatedAt: now,
			},
		},
		Settings: models.WalletSettings{
			MaxDailyLimit:       s.config.MaxDailyLimit,
			MaxTransactionLimit: s.config.MaxTransactionLimit,
			KYCLevel:            "none",
		},
		Stats:          models.WalletStats{StatsCurrency: s.config.BaseCurrency},
		Status:         models.WalletStatusActive,
		LastActivityAt: now,
	}

	if err := s.repo.Create(wallet); err != nil {
		if err == repositories.ErrDuplicateWallet {
			// Lost the creation race; the other writer's wallet wins.
			return s.GetWallet(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetWallet(ctx, wallet)
	}
	return wallet, nil
}

// AddTransaction appends one entry to the ledger. The id is assigned
// here exactly once and never reused, even on retries of the same
// logical request.
func (s *service) AddTransaction(ctx context.Context, tx *models.WalletTransaction) (string, error) {
	if !models.IsValidTransactionType(tx.Type) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, tx.Type)
	}
	if tx.TransactionID == "" {
		tx.TransactionID = "TXN-" + uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TransactionStatusPending
	}

	if tx.WalletID == 0 {
		wallet, err := s.GetOrCreateWallet(ctx, tx.UserID)
		if err != nil {
			return "", err
		}
		tx.WalletID = wallet.ID
	}

	if err := s.repo.CreateTransaction(tx); err != nil {
		return "", fmt.Errorf("failed to append transaction: %w", err)
	}

	if err := s.mutateWallet(ctx, tx.UserID, func(w *models.Wallet) error {
		w.LastActivityAt = time.Now().UTC()
		return nil
	}); err != nil {
		// The append succeeded; activity timestamp drift is tolerable.
		log.Printf("failed to touch wallet activity for user %d: %v", tx.UserID, err)
	}

	s.metrics.RecordTransaction(tx.Type, tx.Amount)
	return tx.TransactionID, nil
}

// TransitionStatus moves a transaction along the state machine and
// rejects any edge outside it.
func (s *service) TransitionStatus(ctx context.Context, transactionID, newStatus, errMsg string) (*models.WalletTransaction, error) {
	tx, err := s.repo.GetTransactionByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(tx.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tx.Status, newStatus)
	}

	tx.Status = newStatus
	if errMsg != "" {
		tx.Error = errMsg
	}
	if newStatus == models.TransactionStatusCompleted {
		now := time.Now().UTC()
		tx.CompletedAt = &now
	}

	if err := s.repo.UpdateTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// UpdateTransactionDetails persists rail references and derived
// amounts onto an existing ledger entry. Status is deliberately not
// copied; TransitionStatus is the only status mover.
func (s *service) UpdateTransactionDetails(ctx context.Context, tx *models.WalletTransaction) error {
	fresh, err := s.repo.GetTransactionByTransactionID(tx.TransactionID)
	if err != nil {
		return err
	}

	fresh.ExternalTransactionID = tx.ExternalTransactionID
	fresh.TxHash = tx.TxHash
	fresh.ProviderID = tx.ProviderID
	fresh.ConfirmationsRequired = tx.ConfirmationsRequired
	fresh.CryptoAmount = tx.CryptoAmount
	fresh.ExchangeRate = tx.ExchangeRate
	fresh.FeeAmount = tx.FeeAmount
	if tx.Metadata != nil {
		fresh.Metadata = tx.Metadata
	}

	return s.repo.UpdateTransaction(fresh)
}

func (s *service) GetTransaction(ctx context.Context, transactionID string) (*models.WalletTransaction, error) {
	return s.repo.GetTransactionByTransactionID(transactionID)
}

func (s *service) GetTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetTransactions(ctx, wallet.ID, limit, offset)
}

// ReserveFunds moves amount from balance to lockedBalance for a
// pending transaction. The insufficient-balance check and the move are
// one conditional write.
func (s *service) ReserveFunds(ctx context.Context, userID uint, cur Currency, amount float64) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		balance, locked, err := balanceOf(w, cur)
		if err != nil {
			return err
		}
		if *balance < amount {
			return domainerrors.ErrInsufficientBalance
		}
		*balance -= amount
		*locked += amount
		return nil
	})
}

// ReleaseFunds settles a reservation exactly once: captured funds are
// deducted permanently, released funds return to balance.
func (s *service) ReleaseFunds(ctx context.Context, userID uint, cur Currency, amount float64, capture bool) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		balance, locked, err := balanceOf(w, cur)
		if err != nil {
			return err
		}
		if *locked < amount {
			return fmt.Errorf("%w: locked %.8f < release %.8f", ErrNegativeBalance, *locked, amount)
		}
		*locked -= amount
		if !capture {
			*balance += amount
		}
		return nil
	})
}

// Credit adds funds, creating the currency entry if absent. A new
// crypto entry gets a freshly derived deposit address.
func (s *service) Credit(ctx context.Context, userID uint, cur Currency, amount float64) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		balance, _, err := balanceOf(w, cur)
		if err == domainerrors.ErrUnknownCurrency {
			ensureCurrency(w, cur)
			balance, _, err = balanceOf(w, cur)
		}
		if err != nil {
			return err
		}
		*balance += amount
		return nil
	})
}

// Debit removes available funds without a reservation step. Used for
// exchanges where no external rail sits between check and settle.
func (s *service) Debit(ctx context.Context, userID uint, cur Currency, amount float64) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		balance, _, err := balanceOf(w, cur)
		if err != nil {
			return err
		}
		if *balance < amount {
			return domainerrors.ErrInsufficientBalance
		}
		*balance -= amount
		return nil
	})
}

// mutateWallet reads a fresh wallet, applies fn and writes it back
// under the optimistic version check, retrying on concurrent writes.
func (s *service) mutateWallet(ctx context.Context, userID uint, fn func(*models.Wallet) error) error {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		wallet, err := s.repo.GetByUserID(userID)
		if err != nil {
			if err == repositories.ErrWalletNotFound {
				return domainerrors.ErrWalletNotFound
			}
			return err
		}
		if wallet.Settings.IsBlocked || wallet.Status == models.WalletStatusBlocked {
			return domainerrors.ErrWalletBlocked
		}

		if err := fn(wallet); err != nil {
			return err
		}
		wallet.LastActivityAt = time.Now().UTC()

		err = s.repo.UpdateWithVersion(wallet)
		if err == nil {
			if s.cache != nil {
				if cerr := s.cache.InvalidateWallet(ctx, userID); cerr != nil {
					log.Printf("failed to invalidate wallet cache for user %d: %v", userID, cerr)
				}
			}
			return nil
		}
		if err != repositories.ErrStaleWallet {
			return err
		}
	}
	s.metrics.RecordError("mutate_wallet", "retries_exhausted")
	return ErrConcurrentModification
}

// balanceOf returns pointers to the balance and locked balance of the
// requested currency entry.
func balanceOf(w *models.Wallet, cur Currency) (balance, locked *float64, err error) {
	if cur.Crypto {
		if entry := w.Crypto(cur.Symbol, cur.Network); entry != nil {
			return &entry.Balance, &entry.LockedBalance, nil
		}
		return nil, nil, domainerrors.ErrUnknownCurrency
	}
	if entry := w.Fiat(cur.Symbol); entry != nil {
		return &entry.Balance, &entry.LockedBalance, nil
	}
	return nil, nil, domainerrors.ErrUnknownCurrency
}

// ensureCurrency appends a zero-balance entry for cur.
func ensureCurrency(w *models.Wallet, cur Currency) {
	if cur.Crypto {
		w.CryptoCurrencies = append(w.CryptoCurrencies, models.CryptoBalance{
			Symbol:        cur.Symbol,
			Network:       cur.Network,
			WalletAddress: DeriveAddress(w.UserID, cur.Symbol, cur.Network),
		})
		return
	}
	w.FiatCurrencies = append(w.FiatCurrencies, models.FiatBalance{
		Symbol: cur.Symbol,
	})
}
