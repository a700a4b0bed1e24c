package payment

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"easyrent/internal/errors"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/notification"
	"easyrent/internal/services/rates"
)

// Exchange converts between two currencies inside one wallet. The
// quote is resolved first, slippage protection applied, then the
// ledger executes both legs atomically.
func (s *service) Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResponse, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("exchange", time.Since(started))
	}()

	if req.Amount <= 0 {
		return &ExchangeResponse{Error: errors.ErrInvalidAmount.Error()}, nil
	}
	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)
	if from == to {
		return &ExchangeResponse{Error: "cannot exchange a currency for itself"}, nil
	}

	rate, err := s.rates.GetRate(ctx, from, to)
	if err != nil {
		if stderrors.Is(err, rates.ErrRateUnavailable) || stderrors.Is(err, rates.ErrUnknownCurrency) {
			s.metrics.RecordError("exchange", "rate_unavailable")
			return &ExchangeResponse{Error: err.Error()}, nil
		}
		return nil, err
	}

	slippage := req.Slippage
	if slippage <= 0 {
		slippage = s.cfg.DefaultSlippage
	}
	toAmount := req.Amount * rate * (1 - slippage)

	txID, err := s.ledger.Exchange(ctx, ledger.ExchangeParams{
		UserID:   req.UserID,
		From:     s.currencyOf(from, ""),
		To:       s.currencyOf(to, ""),
		Amount:   req.Amount,
		ToAmount: toAmount,
		Rate:     rate,
		Slippage: slippage,
	})
	if err != nil {
		if domainErr, ok := asDomain(err); ok {
			s.metrics.RecordError("exchange", domainErr.Code)
			return &ExchangeResponse{Error: domainErr.Error()}, nil
		}
		return nil, err
	}

	s.notifyAsync(req.UserID, notification.EventExchangeDone, map[string]interface{}{
		"transactionId": txID,
		"fromCurrency":  from,
		"toCurrency":    to,
		"toAmount":      toAmount,
	})

	return &ExchangeResponse{
		Success:       true,
		TransactionID: txID,
		ToAmount:      toAmount,
		Rate:          rate,
	}, nil
}
