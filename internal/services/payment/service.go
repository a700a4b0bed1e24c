// Package payment is the unified orchestrator over the wallet ledger
// and the external rails. One entry point, ProcessPayment, runs the
// same pipeline for every rail: resolve the instrument, price the
// fees, enforce wallet limits and risk policy, append a pending
// ledger entry, dispatch the rail, settle.
package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"
	"easyrent/internal/services/gateway"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/services/notification"
	"easyrent/internal/services/rates"
	"easyrent/internal/services/risk"
)

type service struct {
	ledger   ledger.Service
	repo     repositories.WalletRepository
	rates    Converter
	risk     *risk.Evaluator
	mobile   *mobilemoney.Service
	gateways map[string]gateway.Client
	notifier notification.Sink
	metrics  ledger.MetricsCollector
	cfg      Config
}

// NewService creates the orchestrator. gateways maps a payment method
// type (bank_card, stripe, paypal) to its external client; rails
// without an entry fail with a gateway error at dispatch time.
func NewService(
	ledgerSvc ledger.Service,
	repo repositories.WalletRepository,
	converter Converter,
	evaluator *risk.Evaluator,
	mobile *mobilemoney.Service,
	gateways map[string]gateway.Client,
	notifier notification.Sink,
	metrics ledger.MetricsCollector,
	cfg Config,
) Service {
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if repo == nil {
		panic("wallet repository is required")
	}
	if converter == nil {
		panic("rate converter is required")
	}
	if evaluator == nil {
		panic("risk evaluator is required")
	}
	if mobile == nil {
		panic("mobile money adapter is required")
	}
	if notifier == nil {
		notifier = notification.NewLogSink()
	}
	if metrics == nil {
		metrics = &ledger.NoopMetricsCollector{}
	}
	if cfg.DefaultSlippage == 0 {
		cfg.DefaultSlippage = DefaultSlippage
	}
	if cfg.CryptoNetworkFees == nil {
		cfg.CryptoNetworkFees = defaultNetworkFees
	}
	if cfg.RiskHistoryLimit == 0 {
		cfg.RiskHistoryLimit = DefaultRiskHistoryLimit
	}
	return &service{
		ledger:   ledgerSvc,
		repo:     repo,
		rates:    converter,
		risk:     evaluator,
		mobile:   mobile,
		gateways: gateways,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// ProcessPayment runs the unified pipeline. The ledger entry is
// appended before the rail is dispatched, so every attempt, including
// failed ones, leaves an auditable row.
func (s *service) ProcessPayment(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("process_payment", time.Since(started))
	}()

	if req.Type == "" {
		req.Type = models.TransactionTypePayment
	}
	if !models.IsValidTransactionType(req.Type) {
		return nil, fmt.Errorf("unsupported transaction type %q", req.Type)
	}
	if req.Amount <= 0 {
		return decline(errors.ErrInvalidAmount.WithDetail("amount must be positive")), nil
	}
	if req.Currency == "" {
		return decline(errors.ErrInvalidAmount.WithDetail("currency is required")), nil
	}

	wallet, err := s.ledger.GetOrCreateWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if wallet.Settings.IsBlocked || wallet.Status == models.WalletStatusBlocked {
		return decline(errors.ErrWalletBlocked), nil
	}

	method, resp := s.resolveMethod(wallet, &req)
	if resp != nil {
		return resp, nil
	}

	fee, resp, err := s.priceFees(ctx, wallet, method, req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	if resp := s.checkWalletLimits(ctx, wallet, req); resp != nil {
		return resp, nil
	}

	assessment, resp, err := s.assessRisk(ctx, wallet, method, req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	meta := models.NewJSON(req.Metadata)
	meta["riskScore"] = assessment.Score
	meta["riskLevel"] = assessment.Level
	if assessment.ShouldReview {
		meta["riskReview"] = true
	}
	if req.PhoneNumber != "" {
		meta["phoneNumber"] = req.PhoneNumber
	}

	entry := &models.WalletTransaction{
		UserID:            req.UserID,
		WalletID:          wallet.ID,
		Type:              req.Type,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            models.TransactionStatusPending,
		FeeAmount:         fee,
		PaymentMethodID:   method.ID,
		PaymentMethodType: method.Type,
		ProviderID:        req.ProviderID,
		PropertyID:        req.PropertyID,
		ReservationID:     req.ReservationID,
		Description:       req.Description,
		Metadata:          meta,
	}
	txID, err := s.ledger.AddTransaction(ctx, entry)
	if err != nil {
		return nil, err
	}

	result := s.dispatch(ctx, wallet, method, req, fee, entry)
	return s.settle(ctx, entry, txID, result)
}

// resolveMethod picks the payment instrument for the request: the
// explicit method id, a synthesized mobile money method when the
// request carries a provider, or the wallet's default.
func (s *service) resolveMethod(wallet *models.Wallet, req *Request) (*models.PaymentMethod, *Response) {
	if req.PaymentMethodID != "" {
		m := wallet.PaymentMethod(req.PaymentMethodID)
		if m == nil || !m.IsActive {
			return nil, decline(errors.ErrNoPaymentMethod.WithDetail("method %q not found or inactive", req.PaymentMethodID))
		}
		if m.Type == models.PaymentMethodMobileMoney && req.ProviderID == "" {
			req.ProviderID = m.Details.String("providerId")
		}
		return m, nil
	}
	if req.ProviderID != "" {
		return &models.PaymentMethod{
			ID:       "mm-" + req.ProviderID,
			Type:     models.PaymentMethodMobileMoney,
			Label:    "Mobile money",
			IsActive: true,
			Details:  models.NewJSON(map[string]interface{}{"providerId": req.ProviderID}),
		}, nil
	}
	if m := wallet.DefaultPaymentMethod(); m != nil {
		if m.Type == models.PaymentMethodMobileMoney {
			req.ProviderID = m.Details.String("providerId")
		}
		return m, nil
	}
	return nil, decline(errors.ErrNoPaymentMethod)
}

// priceFees computes the platform fee for the selected rail, always
// denominated in the request currency. Mobile money fees come from
// the provider schedule, everything else from the flat schedule in
// fees.go; the crypto rail adds its network fee converted from the
// asset into the request currency.
func (s *service) priceFees(ctx context.Context, wallet *models.Wallet, method *models.PaymentMethod, req Request) (float64, *Response, error) {
	if method.Type == models.PaymentMethodMobileMoney {
		fee, err := s.mobile.CalculateFees(req.ProviderID, req.Type, req.Amount)
		if err != nil {
			if domainErr, ok := asDomain(err); ok {
				return 0, decline(domainErr), nil
			}
			return 0, nil, err
		}
		return fee, nil, nil
	}

	symbol := method.Details.String("symbol")
	network := method.Details.String("network")
	if network == "" {
		network = defaultNetworks[symbol]
	}
	fee := s.CalculateFees(method.Type, req.Amount, network)

	if method.Type == models.PaymentMethodCryptoWallet {
		if symbol == "" {
			symbol = strings.ToUpper(req.Currency)
		}
		if nf := s.networkFee(network); nf > 0 {
			if strings.EqualFold(symbol, req.Currency) {
				fee += nf
			} else {
				rate, err := s.rates.GetRate(ctx, symbol, req.Currency)
				if err != nil {
					if stderrors.Is(err, rates.ErrRateUnavailable) || stderrors.Is(err, rates.ErrUnknownCurrency) {
						return 0, decline(errors.ErrRateUnavailable), nil
					}
					return 0, nil, err
				}
				fee += nf * rate
			}
		}
	}
	return fee, nil, nil
}

// checkWalletLimits enforces the wallet's own per-transaction and
// daily caps. The daily window starts at local midnight.
func (s *service) checkWalletLimits(ctx context.Context, wallet *models.Wallet, req Request) *Response {
	if max := wallet.Settings.MaxTransactionLimit; max > 0 && req.Amount > max {
		return decline(errors.ErrLimitExceeded.WithDetail("exceeds per-transaction limit %.2f", max))
	}
	max := wallet.Settings.MaxDailyLimit
	if max <= 0 {
		return nil
	}
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	volume, err := s.repo.GetCompletedVolume(ctx, wallet.ID, req.Currency, midnight, now)
	if err != nil {
		// the daily cap is a hard gate; fail closed
		log.Printf("daily volume lookup failed for wallet %d: %v", wallet.ID, err)
		return decline(errors.ErrLimitExceeded.WithDetail("daily spending could not be verified"))
	}
	if volume+req.Amount > max {
		return decline(errors.ErrLimitExceeded.WithDetail("exceeds daily limit %.2f", max))
	}
	return nil
}

// assessRisk runs the hard-limit gate and then the additive score.
func (s *service) assessRisk(ctx context.Context, wallet *models.Wallet, method *models.PaymentMethod, req Request) (risk.Assessment, *Response, error) {
	if err := s.risk.CheckHardLimits(req.Amount, wallet.Settings.IsVerified); err != nil {
		if domainErr, ok := asDomain(err); ok {
			return risk.Assessment{}, decline(domainErr), nil
		}
		return risk.Assessment{}, nil, err
	}

	history, err := s.repo.GetRecentTransactions(ctx, wallet.ID, time.Now().AddDate(0, -1, 0), s.cfg.RiskHistoryLimit)
	if err != nil {
		return risk.Assessment{}, nil, err
	}
	total, err := s.repo.CountTransactions(ctx, wallet.ID)
	if err != nil {
		return risk.Assessment{}, nil, err
	}

	assessment := s.risk.Evaluate(risk.Input{
		UserID:            req.UserID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		PaymentMethodType: method.Type,
		History:           history,
		TotalTransactions: total,
		IsVerified:        wallet.Settings.IsVerified,
	})
	if assessment.ShouldBlock {
		s.metrics.RecordError("process_payment", "risk_blocked")
		return assessment, decline(errors.ErrRiskBlocked.WithDetail("score %d", assessment.Score)), nil
	}
	return assessment, nil, nil
}

// settle records the rail outcome on the ledger entry and releases or
// captures any reservation the rail made.
func (s *service) settle(ctx context.Context, entry *models.WalletTransaction, txID string, res railResult) (*Response, error) {
	if res.err != nil || res.status == models.TransactionStatusFailed {
		msg := res.failureMsg
		if res.err != nil {
			msg = res.err.Error()
		}
		if msg == "" {
			msg = "payment failed"
		}
		if res.reserved {
			if relErr := s.ledger.ReleaseFunds(ctx, entry.UserID, res.reservedCur, res.reservedAmount, false); relErr != nil {
				log.Printf("failed to release reservation for %s: %v", txID, relErr)
			}
		}
		if _, trErr := s.ledger.TransitionStatus(ctx, txID, models.TransactionStatusFailed, msg); trErr != nil {
			log.Printf("failed to mark %s failed: %v", txID, trErr)
		}
		s.metrics.RecordError("process_payment", "rail_failure")
		s.notifyAsync(entry.UserID, notification.EventPaymentFailed, map[string]interface{}{
			"transactionId": txID,
			"error":         msg,
		})
		return &Response{Success: false, TransactionID: txID, Status: models.TransactionStatusFailed, FeeAmount: res.feeAmount, Error: msg}, nil
	}

	s.recordRailDetails(ctx, entry, txID, res)

	switch res.status {
	case models.TransactionStatusCompleted:
		if err := s.applyHeldFunds(ctx, entry); err != nil {
			return nil, err
		}
		if _, err := s.ledger.TransitionStatus(ctx, txID, models.TransactionStatusCompleted, ""); err != nil {
			return nil, err
		}
		s.notifyAsync(entry.UserID, notification.EventPaymentCompleted, map[string]interface{}{
			"transactionId": txID,
			"amount":        entry.Amount,
			"currency":      entry.Currency,
		})
	case models.TransactionStatusProcessing:
		if _, err := s.ledger.TransitionStatus(ctx, txID, models.TransactionStatusProcessing, ""); err != nil {
			return nil, err
		}
		s.notifyAsync(entry.UserID, notification.EventPaymentPending, map[string]interface{}{"transactionId": txID})
	default:
		// stays pending; confirmation or reconciliation moves it
		s.notifyAsync(entry.UserID, notification.EventPaymentPending, map[string]interface{}{"transactionId": txID})
	}

	status := res.status
	if status == "" {
		status = models.TransactionStatusPending
	}
	return &Response{
		Success:              true,
		TransactionID:        txID,
		Status:               status,
		FeeAmount:            res.feeAmount,
		ConfirmationRequired: res.confirmationRequired,
		ConfirmationCode:     res.confirmationCode,
		ExternalPaymentURL:   res.redirectURL,
		QRCodeData:           res.qrData,
		Instructions:         res.instructions,
	}, nil
}

// recordRailDetails persists external references and derived amounts,
// plus whatever the rail reserved so reconciliation can undo it.
func (s *service) recordRailDetails(ctx context.Context, entry *models.WalletTransaction, txID string, res railResult) {
	entry.ExternalTransactionID = res.externalID
	if res.reference != "" {
		entry.ExternalTransactionID = res.reference
	}
	entry.TxHash = res.txHash
	if res.providerID != "" {
		entry.ProviderID = res.providerID
	}
	entry.ConfirmationsRequired = res.confirmations
	entry.CryptoAmount = res.cryptoAmount
	entry.ExchangeRate = res.exchangeRate
	entry.FeeAmount = res.feeAmount
	if entry.Metadata == nil {
		entry.Metadata = models.NewJSON(nil)
	}
	if res.reserved {
		entry.Metadata["reservedSymbol"] = res.reservedCur.Symbol
		entry.Metadata["reservedNetwork"] = res.reservedCur.Network
		entry.Metadata["reservedCrypto"] = res.reservedCur.Crypto
		entry.Metadata["reservedAmount"] = res.reservedAmount
	}
	if res.confirmationCode != "" {
		entry.Metadata["confirmationCode"] = res.confirmationCode
	}
	if err := s.ledger.UpdateTransactionDetails(ctx, entry); err != nil {
		log.Printf("failed to record rail details for %s: %v", txID, err)
	}
}

func (s *service) notifyAsync(userID uint, eventType string, payload map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, userID, eventType, payload); err != nil {
			s.metrics.RecordNotificationFailure(eventType)
			log.Printf("notification %s for user %d failed: %v", eventType, userID, err)
		}
	}()
}

func decline(err *errors.DomainError) *Response {
	return &Response{Success: false, Error: err.Error()}
}

// asDomain unwraps a business failure from an error chain.
func asDomain(err error) (*errors.DomainError, bool) {
	var d *errors.DomainError
	if stderrors.As(err, &d) {
		return d, true
	}
	return nil, false
}
