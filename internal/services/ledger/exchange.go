package ledger

import (
	"context"
	"time"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"

	"github.com/google/uuid"
)

// Exchange atomically debits the source currency and credits the
// destination, appending one exchange entry. Amounts arrive already
// resolved; the ledger only moves them.
func (s *service) Exchange(ctx context.Context, params ExchangeParams) (string, error) {
	if params.Amount <= 0 || params.ToAmount <= 0 {
		return "", domainerrors.ErrInvalidAmount
	}

	now := time.Now().UTC()
	cryptoAmount := params.ToAmount
	rate := params.Rate
	tx := &models.WalletTransaction{
		TransactionID:     "TXN-" + uuid.NewString(),
		UserID:            params.UserID,
		Type:              models.TransactionTypeExchange,
		Amount:            params.Amount,
		Currency:          params.From.Symbol,
		Status:            models.TransactionStatusCompleted,
		ExchangeRate:      &rate,
		PaymentMethodType: models.PaymentMethodInternal,
		Description:       params.From.Symbol + " to " + params.To.Symbol,
		Metadata: models.NewJSON(map[string]interface{}{
			"toCurrency": params.To.Symbol,
			"toAmount":   params.ToAmount,
			"slippage":   params.Slippage,
		}),
		CompletedAt: &now,
	}
	if params.To.Crypto {
		tx.CryptoAmount = &cryptoAmount
	}

	err := s.repo.ExecuteInTransaction(func(txRepo repositories.WalletRepository) error {
		wallet, err := txRepo.GetByUserID(params.UserID)
		if err != nil {
			if err == repositories.ErrWalletNotFound {
				return domainerrors.ErrWalletNotFound
			}
			return err
		}
		if wallet.Settings.IsBlocked || wallet.Status == models.WalletStatusBlocked {
			return domainerrors.ErrWalletBlocked
		}

		balance, _, err := balanceOf(wallet, params.From)
		if err != nil {
			return err
		}
		if *balance < params.Amount {
			return domainerrors.ErrInsufficientBalance
		}
		*balance -= params.Amount

		toBalance, _, err := balanceOf(wallet, params.To)
		if err == domainerrors.ErrUnknownCurrency {
			ensureCurrency(wallet, params.To)
			toBalance, _, err = balanceOf(wallet, params.To)
		}
		if err != nil {
			return err
		}
		*toBalance += params.ToAmount

		wallet.LastActivityAt = now
		if err := txRepo.UpdateWithVersion(wallet); err != nil {
			return err
		}

		tx.WalletID = wallet.ID
		return txRepo.CreateTransaction(tx)
	})
	if err != nil {
		s.metrics.RecordError("exchange", err.Error())
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateWallet(ctx, params.UserID)
	}

	s.metrics.RecordTransaction(models.TransactionTypeExchange, params.Amount)
	return tx.TransactionID, nil
}
