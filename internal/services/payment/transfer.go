package payment

import (
	"context"
	"time"

	"easyrent/internal/errors"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/notification"
)

// Transfer moves funds between two user wallets atomically and
// notifies both parties.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("transfer", time.Since(started))
	}()

	if req.Amount <= 0 {
		return &TransferResponse{Error: errors.ErrInvalidAmount.Error()}, nil
	}
	if req.FromUserID == req.ToUserID {
		return &TransferResponse{Error: "cannot transfer to yourself"}, nil
	}

	fromTxID, toTxID, err := s.ledger.Transfer(ctx, ledger.TransferParams{
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Fee:         req.Fee,
		Description: req.Description,
		PropertyID:  req.PropertyID,
	})
	if err != nil {
		if domainErr, ok := asDomain(err); ok {
			s.metrics.RecordError("transfer", domainErr.Code)
			return &TransferResponse{Error: domainErr.Error()}, nil
		}
		return nil, err
	}

	payload := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
	}
	s.notifyAsync(req.FromUserID, notification.EventTransferSent, payload)
	s.notifyAsync(req.ToUserID, notification.EventTransferReceived, payload)

	return &TransferResponse{
		Success:           true,
		TransactionID:     fromTxID,
		PairTransactionID: toTxID,
	}, nil
}
