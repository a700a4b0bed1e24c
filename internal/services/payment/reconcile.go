package payment

import (
	"context"
	"log"
	"time"

	"easyrent/internal/models"
	"easyrent/internal/services/gateway"
	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/services/notification"
)

// ReconcilePending sweeps transactions stuck in pending or processing
// past their rail's window, polls the external party where one exists
// and settles the outcome. Rails with no poller (crypto awaiting
// confirmations, bank transfers awaiting a wire) are only flagged.
func (s *service) ReconcilePending(ctx context.Context, limit int) (*ReconcileReport, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("reconcile_pending", time.Since(started))
	}()

	if limit <= 0 {
		limit = 100
	}
	shortest := shortestStaleWindow()
	candidates, err := s.repo.GetStalePending(ctx, time.Now().Add(-shortest), limit)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{}
	for i := range candidates {
		tx := &candidates[i]
		window, ok := staleAfter[tx.PaymentMethodType]
		if !ok || time.Since(tx.CreatedAt) < window {
			continue
		}
		report.Scanned++

		status, err := s.pollRail(ctx, tx)
		if err != nil {
			log.Printf("reconcile: status poll for %s failed: %v", tx.TransactionID, err)
			report.Flagged++
			continue
		}

		switch status {
		case models.TransactionStatusCompleted:
			if err := s.applyHeldFunds(ctx, tx); err != nil {
				log.Printf("reconcile: settling %s failed: %v", tx.TransactionID, err)
				report.Flagged++
				continue
			}
			if _, err := s.ledger.TransitionStatus(ctx, tx.TransactionID, models.TransactionStatusCompleted, ""); err != nil {
				log.Printf("reconcile: completing %s failed: %v", tx.TransactionID, err)
				report.Flagged++
				continue
			}
			report.Completed++
			s.notifyAsync(tx.UserID, notification.EventPaymentCompleted, map[string]interface{}{"transactionId": tx.TransactionID})
		case models.TransactionStatusFailed:
			s.failStale(ctx, tx, "expired during reconciliation")
			report.Failed++
		default:
			report.Flagged++
		}
	}
	return report, nil
}

// pollRail asks the transaction's external party for its current
// status. An empty poller means the rail cannot be polled; such
// entries report failed once they exceed their window, except crypto
// which only flags.
func (s *service) pollRail(ctx context.Context, tx *models.WalletTransaction) (string, error) {
	switch tx.PaymentMethodType {
	case models.PaymentMethodBankCard, models.PaymentMethodStripe, models.PaymentMethodPayPal:
		client, ok := s.gateways[tx.PaymentMethodType]
		if !ok || tx.ExternalTransactionID == "" {
			return models.TransactionStatusFailed, nil
		}
		status, err := client.GetStatus(ctx, tx.ExternalTransactionID)
		if err != nil {
			return "", err
		}
		return normalizeGatewayStatus(status), nil
	case models.PaymentMethodMobileMoney:
		if tx.ExternalTransactionID == "" {
			return models.TransactionStatusFailed, nil
		}
		status, err := s.mobile.GetTransactionStatus(ctx, tx.ProviderID, tx.ExternalTransactionID)
		if err != nil {
			return "", err
		}
		return normalizeMobileMoneyStatus(status), nil
	case models.PaymentMethodBankTransfer:
		// no automated matching yet; expire after the window
		return models.TransactionStatusFailed, nil
	default:
		// crypto confirmations arrive out of band; keep waiting
		return tx.Status, nil
	}
}

// failStale marks a stale entry failed and returns any held funds.
func (s *service) failStale(ctx context.Context, tx *models.WalletTransaction, reason string) {
	if cur, amount, ok := reservationOf(tx); ok {
		if err := s.ledger.ReleaseFunds(ctx, tx.UserID, cur, amount, false); err != nil {
			log.Printf("reconcile: releasing reservation for %s failed: %v", tx.TransactionID, err)
		}
	}
	if _, err := s.ledger.TransitionStatus(ctx, tx.TransactionID, models.TransactionStatusFailed, reason); err != nil {
		log.Printf("reconcile: failing %s failed: %v", tx.TransactionID, err)
	}
	s.notifyAsync(tx.UserID, notification.EventPaymentFailed, map[string]interface{}{
		"transactionId": tx.TransactionID,
		"error":         reason,
	})
}

func normalizeGatewayStatus(status string) string {
	switch status {
	case gateway.StatusCompleted:
		return models.TransactionStatusCompleted
	case gateway.StatusFailed:
		return models.TransactionStatusFailed
	default:
		return models.TransactionStatusProcessing
	}
}

func normalizeMobileMoneyStatus(status string) string {
	switch status {
	case mobilemoney.StatusCompleted:
		return models.TransactionStatusCompleted
	case mobilemoney.StatusFailed:
		return models.TransactionStatusFailed
	default:
		return models.TransactionStatusProcessing
	}
}

func shortestStaleWindow() time.Duration {
	shortest := time.Duration(0)
	for _, w := range staleAfter {
		if shortest == 0 || w < shortest {
			shortest = w
		}
	}
	return shortest
}
