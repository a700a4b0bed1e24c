package ledger

import (
	"context"
	"log"
	"time"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"

	"github.com/google/uuid"
)

// Transfer atomically debits the sender and credits the recipient,
// appending a paired transfer/received entry to each ledger. Both
// wallets commit or neither does.
func (s *service) Transfer(ctx context.Context, params TransferParams) (string, string, error) {
	if params.Amount <= 0 {
		return "", "", domainerrors.ErrInvalidAmount
	}
	if params.FromUserID == params.ToUserID {
		return "", "", domainerrors.ErrInvalidAmount.WithDetail("cannot transfer to self")
	}

	// Ensure both wallets exist before entering the storage transaction.
	if _, err := s.GetOrCreateWallet(ctx, params.FromUserID); err != nil {
		return "", "", err
	}
	if _, err := s.GetOrCreateWallet(ctx, params.ToUserID); err != nil {
		return "", "", err
	}

	cur := Currency{Symbol: params.Currency}
	total := params.Amount + params.Fee
	now := time.Now().UTC()

	fromTx := &models.WalletTransaction{
		TransactionID:     "TXN-" + uuid.NewString(),
		UserID:            params.FromUserID,
		Type:              models.TransactionTypeTransfer,
		Amount:            params.Amount,
		Currency:          params.Currency,
		Status:            models.TransactionStatusCompleted,
		FeeAmount:         params.Fee,
		PaymentMethodType: models.PaymentMethodInternal,
		CounterpartyID:    &params.ToUserID,
		PropertyID:        params.PropertyID,
		Description:       params.Description,
		CompletedAt:       &now,
	}
	toTx := &models.WalletTransaction{
		TransactionID:     "TXN-" + uuid.NewString(),
		UserID:            params.ToUserID,
		Type:              models.TransactionTypeReceived,
		Amount:            params.Amount,
		Currency:          params.Currency,
		Status:            models.TransactionStatusCompleted,
		PaymentMethodType: models.PaymentMethodInternal,
		CounterpartyID:    &params.FromUserID,
		PropertyID:        params.PropertyID,
		Description:       params.Description,
		CompletedAt:       &now,
	}

	err := s.repo.ExecuteInTransaction(func(txRepo repositories.WalletRepository) error {
		sender, err := txRepo.GetByUserID(params.FromUserID)
		if err != nil {
			return err
		}
		recipient, err := txRepo.GetByUserID(params.ToUserID)
		if err != nil {
			return err
		}
		if sender.Settings.IsBlocked || sender.Status == models.WalletStatusBlocked {
			return domainerrors.ErrWalletBlocked
		}

		balance, _, err := balanceOf(sender, cur)
		if err != nil {
			return err
		}
		if *balance < total {
			return domainerrors.ErrInsufficientBalance
		}
		*balance -= total

		rBalance, _, err := balanceOf(recipient, cur)
		if err == domainerrors.ErrUnknownCurrency {
			ensureCurrency(recipient, cur)
			rBalance, _, err = balanceOf(recipient, cur)
		}
		if err != nil {
			return err
		}
		*rBalance += params.Amount

		sender.LastActivityAt = now
		recipient.LastActivityAt = now
		if err := txRepo.UpdateWithVersion(sender); err != nil {
			return err
		}
		if err := txRepo.UpdateWithVersion(recipient); err != nil {
			return err
		}

		fromTx.WalletID = sender.ID
		toTx.WalletID = recipient.ID
		if err := txRepo.CreateTransaction(fromTx); err != nil {
			return err
		}
		return txRepo.CreateTransaction(toTx)
	})
	if err != nil {
		s.metrics.RecordError("transfer", err.Error())
		return "", "", err
	}

	if s.cache != nil {
		if cerr := s.cache.InvalidateWallet(ctx, params.FromUserID); cerr != nil {
			log.Printf("failed to invalidate sender wallet cache: %v", cerr)
		}
		if cerr := s.cache.InvalidateWallet(ctx, params.ToUserID); cerr != nil {
			log.Printf("failed to invalidate recipient wallet cache: %v", cerr)
		}
	}

	s.metrics.RecordTransaction(models.TransactionTypeTransfer, params.Amount)
	return fromTx.TransactionID, toTx.TransactionID, nil
}
