package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"easyrent/internal/models"
)

// memoryWalletRepository is an in-process WalletRepository used by
// tests and local development without Postgres. It mirrors the
// conditional-write semantics of the SQL implementation, including
// ErrStaleWallet on version conflicts.
type memoryWalletRepository struct {
	mu           sync.Mutex
	wallets      map[uint]*models.Wallet // keyed by wallet id
	transactions []*models.WalletTransaction
	nextWalletID uint
	nextTxID     uint
}

// NewMemoryWalletRepository creates an empty in-memory repository.
func NewMemoryWalletRepository() WalletRepository {
	return &memoryWalletRepository{
		wallets:      make(map[uint]*models.Wallet),
		nextWalletID: 1,
		nextTxID:     1,
	}
}

// cloneWallet deep-copies through JSON so callers never share the
// stored aggregate, matching database read isolation.
func cloneWallet(w *models.Wallet) *models.Wallet {
	raw, _ := json.Marshal(w)
	var out models.Wallet
	_ = json.Unmarshal(raw, &out)
	out.ID = w.ID
	out.Version = w.Version
	return &out
}

func cloneTransaction(tx *models.WalletTransaction) *models.WalletTransaction {
	raw, _ := json.Marshal(tx)
	var out models.WalletTransaction
	_ = json.Unmarshal(raw, &out)
	out.ID = tx.ID
	out.WalletID = tx.WalletID
	out.CreatedAt = tx.CreatedAt
	out.UpdatedAt = tx.UpdatedAt
	return &out
}

func (r *memoryWalletRepository) Create(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.wallets {
		if w.UserID == wallet.UserID {
			return ErrDuplicateWallet
		}
	}
	wallet.ID = r.nextWalletID
	r.nextWalletID++
	now := time.Now().UTC()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	r.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (r *memoryWalletRepository) GetByID(id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[id]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return cloneWallet(w), nil
}

func (r *memoryWalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.wallets {
		if w.UserID == userID {
			return cloneWallet(w), nil
		}
	}
	return nil, ErrWalletNotFound
}

func (r *memoryWalletRepository) Update(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[wallet.ID]; !ok {
		return ErrWalletNotFound
	}
	wallet.UpdatedAt = time.Now().UTC()
	r.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (r *memoryWalletRepository) UpdateWithVersion(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.wallets[wallet.ID]
	if !ok || stored.Version != wallet.Version {
		return ErrStaleWallet
	}
	wallet.Version++
	wallet.UpdatedAt = time.Now().UTC()
	r.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (r *memoryWalletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.transactions {
		if existing.TransactionID == tx.TransactionID {
			return ErrDuplicateTxID
		}
	}
	tx.ID = r.nextTxID
	r.nextTxID++
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	r.transactions = append(r.transactions, cloneTransaction(tx))
	return nil
}

func (r *memoryWalletRepository) UpdateTransaction(tx *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.transactions {
		if existing.TransactionID == tx.TransactionID {
			tx.ID = existing.ID
			tx.UpdatedAt = time.Now().UTC()
			r.transactions[i] = cloneTransaction(tx)
			return nil
		}
	}
	return ErrTransactionNotFound
}

func (r *memoryWalletRepository) GetTransactionByTransactionID(txID string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range r.transactions {
		if tx.TransactionID == txID {
			return cloneTransaction(tx), nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (r *memoryWalletRepository) GetTransactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := r.filter(func(tx *models.WalletTransaction) bool {
		return tx.WalletID == walletID
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if offset >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *memoryWalletRepository) GetRecentTransactions(ctx context.Context, walletID uint, since time.Time, limit int) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := r.filter(func(tx *models.WalletTransaction) bool {
		return tx.WalletID == walletID && !tx.CreatedAt.Before(since)
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *memoryWalletRepository) GetCompletedVolume(ctx context.Context, walletID uint, currency string, start, end time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, tx := range r.transactions {
		if tx.WalletID != walletID || tx.Currency != currency {
			continue
		}
		if tx.Status != models.TransactionStatusCompleted {
			continue
		}
		if tx.Type != models.TransactionTypePayment &&
			tx.Type != models.TransactionTypeWithdrawal &&
			tx.Type != models.TransactionTypeTransfer {
			continue
		}
		if tx.CreatedAt.Before(start) || !tx.CreatedAt.Before(end) {
			continue
		}
		total += tx.Amount
	}
	return total, nil
}

func (r *memoryWalletRepository) GetProviderVolume(ctx context.Context, walletID uint, providerID string, start, end time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, tx := range r.transactions {
		if tx.WalletID != walletID || tx.ProviderID != providerID {
			continue
		}
		switch tx.Status {
		case models.TransactionStatusCompleted, models.TransactionStatusProcessing, models.TransactionStatusPending:
		default:
			continue
		}
		if tx.CreatedAt.Before(start) || !tx.CreatedAt.Before(end) {
			continue
		}
		total += tx.Amount
	}
	return total, nil
}

func (r *memoryWalletRepository) CountTransactions(ctx context.Context, walletID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, tx := range r.transactions {
		if tx.WalletID == walletID {
			count++
		}
	}
	return count, nil
}

func (r *memoryWalletRepository) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := r.filter(func(tx *models.WalletTransaction) bool {
		if tx.PaymentMethodType == models.PaymentMethodInternal {
			return false
		}
		if tx.Status != models.TransactionStatusPending && tx.Status != models.TransactionStatusProcessing {
			return false
		}
		return tx.CreatedAt.Before(olderThan)
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *memoryWalletRepository) GetVolumeSince(ctx context.Context, walletID uint, since time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, tx := range r.transactions {
		if tx.WalletID == walletID &&
			tx.Status == models.TransactionStatusCompleted &&
			!tx.CreatedAt.Before(since) {
			total += tx.Amount
		}
	}
	return total, nil
}

// ExecuteInTransaction runs fn against the same store. The repository
// is already serialized by its mutex, so there is no rollback; tests
// that need failure injection wrap the repository instead.
func (r *memoryWalletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return fn(r)
}

// filter must be called with the mutex held.
func (r *memoryWalletRepository) filter(keep func(*models.WalletTransaction) bool) []models.WalletTransaction {
	var out []models.WalletTransaction
	for _, tx := range r.transactions {
		if keep(tx) {
			out = append(out, *cloneTransaction(tx))
		}
	}
	return out
}
