package payment

import (
	"context"
	"fmt"
	"log"

	"easyrent/internal/models"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/notification"
)

// ConfirmMobileMoneyPayment completes a pending mobile money
// transaction once the user supplies the operator's confirmation
// code. A wrong code leaves the transaction untouched.
func (s *service) ConfirmMobileMoneyPayment(ctx context.Context, userID uint, transactionID, code string) (*Response, error) {
	tx, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return &Response{Success: false, Error: "transaction not found"}, nil
	}
	if tx.PaymentMethodType != models.PaymentMethodMobileMoney {
		return &Response{Success: false, Error: "transaction does not require confirmation"}, nil
	}
	if tx.Status != models.TransactionStatusPending {
		return &Response{Success: false, TransactionID: transactionID, Status: tx.Status, Error: "transaction is not awaiting confirmation"}, nil
	}

	expected := tx.Metadata.String("confirmationCode")
	if expected == "" {
		return &Response{Success: false, Error: "transaction does not require confirmation"}, nil
	}
	if code != expected {
		s.metrics.RecordError("confirm_mobile_money", "bad_code")
		return &Response{Success: false, TransactionID: transactionID, Status: tx.Status, Error: "invalid confirmation code"}, nil
	}

	if err := s.applyHeldFunds(ctx, tx); err != nil {
		return nil, err
	}
	if _, err := s.ledger.TransitionStatus(ctx, transactionID, models.TransactionStatusCompleted, ""); err != nil {
		return nil, err
	}

	s.notifyAsync(userID, notification.EventPaymentCompleted, map[string]interface{}{
		"transactionId": transactionID,
		"amount":        tx.Amount,
		"currency":      tx.Currency,
	})
	return &Response{
		Success:       true,
		TransactionID: transactionID,
		Status:        models.TransactionStatusCompleted,
		FeeAmount:     tx.FeeAmount,
	}, nil
}

// ConfirmCryptoPayment completes a pending crypto transaction once
// the chain watcher reports the broadcast with enough confirmations.
// The recorded reservation is captured; an insufficient confirmation
// count leaves the transaction pending.
func (s *service) ConfirmCryptoPayment(ctx context.Context, userID uint, transactionID, txHash string, confirmations int) (*Response, error) {
	tx, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return &Response{Success: false, Error: "transaction not found"}, nil
	}
	if tx.PaymentMethodType != models.PaymentMethodCryptoWallet {
		return &Response{Success: false, Error: "not a crypto transaction"}, nil
	}
	if tx.Status != models.TransactionStatusPending {
		return &Response{Success: false, TransactionID: transactionID, Status: tx.Status, Error: "transaction is not awaiting confirmations"}, nil
	}
	if txHash == "" {
		return &Response{Success: false, TransactionID: transactionID, Status: tx.Status, Error: "transaction hash is required"}, nil
	}
	if confirmations < tx.ConfirmationsRequired {
		return &Response{
			Success:       false,
			TransactionID: transactionID,
			Status:        tx.Status,
			Error:         fmt.Sprintf("awaiting confirmations (%d of %d)", confirmations, tx.ConfirmationsRequired),
		}, nil
	}

	tx.TxHash = txHash
	if err := s.ledger.UpdateTransactionDetails(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.applyHeldFunds(ctx, tx); err != nil {
		return nil, err
	}
	if _, err := s.ledger.TransitionStatus(ctx, transactionID, models.TransactionStatusCompleted, ""); err != nil {
		return nil, err
	}

	s.notifyAsync(userID, notification.EventPaymentCompleted, map[string]interface{}{
		"transactionId": transactionID,
		"txHash":        txHash,
	})
	return &Response{
		Success:       true,
		TransactionID: transactionID,
		Status:        models.TransactionStatusCompleted,
		FeeAmount:     tx.FeeAmount,
	}, nil
}

// applyHeldFunds finishes the balance side of a deferred transaction:
// captures the recorded reservation, or credits the wallet for a
// deposit that had none.
func (s *service) applyHeldFunds(ctx context.Context, tx *models.WalletTransaction) error {
	cur, amount, ok := reservationOf(tx)
	if ok {
		return s.ledger.ReleaseFunds(ctx, tx.UserID, cur, amount, true)
	}
	if tx.Type == models.TransactionTypeDeposit {
		return s.ledger.Credit(ctx, tx.UserID, s.currencyOf(tx.Currency, ""), tx.Amount-tx.FeeAmount)
	}
	log.Printf("transaction %s completed with no reservation on record", tx.TransactionID)
	return nil
}

// reservationOf recovers the reservation a rail recorded on the entry.
func reservationOf(tx *models.WalletTransaction) (ledger.Currency, float64, bool) {
	if tx.Metadata == nil {
		return ledger.Currency{}, 0, false
	}
	symbol := tx.Metadata.String("reservedSymbol")
	if symbol == "" {
		return ledger.Currency{}, 0, false
	}
	amount, _ := tx.Metadata["reservedAmount"].(float64)
	if amount <= 0 {
		return ledger.Currency{}, 0, false
	}
	crypto, _ := tx.Metadata["reservedCrypto"].(bool)
	return ledger.Currency{
		Symbol:  symbol,
		Network: tx.Metadata.String("reservedNetwork"),
		Crypto:  crypto,
	}, amount, true
}
