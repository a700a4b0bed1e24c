package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"easyrent/internal/models"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/mobilemoney"
)

// dispatch routes the appended entry to its rail handler. Handlers
// never touch the ledger row; they report through railResult and
// settle applies the outcome.
func (s *service) dispatch(ctx context.Context, wallet *models.Wallet, method *models.PaymentMethod, req Request, fee float64, entry *models.WalletTransaction) railResult {
	switch method.Type {
	case models.PaymentMethodInternal:
		return s.railInternal(ctx, req, fee)
	case models.PaymentMethodCryptoWallet:
		return s.railCrypto(ctx, wallet, method, req, fee)
	case models.PaymentMethodBankCard, models.PaymentMethodStripe, models.PaymentMethodPayPal:
		return s.railGateway(ctx, method, req, fee, entry.TransactionID)
	case models.PaymentMethodBankTransfer:
		return s.railBankTransfer(req, fee, entry.TransactionID)
	case models.PaymentMethodMobileMoney:
		return s.railMobileMoney(ctx, wallet, req, fee, entry.TransactionID)
	default:
		return railResult{status: models.TransactionStatusFailed, failureMsg: fmt.Sprintf("unsupported payment method %q", method.Type)}
	}
}

// railInternal spends the wallet's own balance: reserve, then capture
// in the same call. No external party, no fee.
func (s *service) railInternal(ctx context.Context, req Request, fee float64) railResult {
	cur := s.currencyOf(req.Currency, "")
	if err := s.ledger.ReserveFunds(ctx, req.UserID, cur, req.Amount+fee); err != nil {
		return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
	}
	return railResult{
		status:         models.TransactionStatusCompleted,
		feeAmount:      fee,
		reserved:       true,
		reservedCur:    cur,
		reservedAmount: req.Amount + fee,
	}
}

// railCrypto converts the fiat amount into the method's crypto asset
// and reserves it. The entry starts pending; the chain watcher
// completes it through ConfirmCryptoPayment once the broadcast
// reaches the required confirmation count.
func (s *service) railCrypto(ctx context.Context, wallet *models.Wallet, method *models.PaymentMethod, req Request, fee float64) railResult {
	symbol := method.Details.String("symbol")
	if symbol == "" {
		symbol = strings.ToUpper(req.Currency)
	}
	network := method.Details.String("network")
	if network == "" {
		network = defaultNetworks[symbol]
	}
	if network == "" {
		return railResult{status: models.TransactionStatusFailed, failureMsg: fmt.Sprintf("no known network for %q", symbol), feeAmount: fee}
	}
	cur := ledger.Currency{Symbol: symbol, Network: network, Crypto: true}

	cryptoAmount := req.Amount
	var rate float64 = 1
	if !strings.EqualFold(req.Currency, symbol) {
		conv, err := s.rates.Convert(ctx, req.Currency, symbol, req.Amount)
		if err != nil {
			return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
		}
		cryptoAmount = conv.ToAmount
		rate = conv.Rate
	}
	total := cryptoAmount + s.networkFee(network)

	if err := s.ledger.ReserveFunds(ctx, req.UserID, cur, total); err != nil {
		return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
	}

	confirmations := 12
	if ledger.IsBitcoinFamily(network) {
		confirmations = 6
	}

	address := ""
	if entry := wallet.Crypto(symbol, network); entry != nil {
		address = entry.WalletAddress
	}
	if address == "" {
		address = ledger.DeriveAddress(req.UserID, symbol, network)
	}

	return railResult{
		status:         models.TransactionStatusPending,
		feeAmount:      fee,
		qrData:         fmt.Sprintf("%s:%s?amount=%.8f", network, address, cryptoAmount),
		cryptoAmount:   &cryptoAmount,
		exchangeRate:   &rate,
		confirmations:  confirmations,
		reserved:       true,
		reservedCur:    cur,
		reservedAmount: total,
	}
}

// railGateway hands the payment to an external processor. The entry
// stays processing until the processor's status is reconciled.
func (s *service) railGateway(ctx context.Context, method *models.PaymentMethod, req Request, fee float64, txID string) railResult {
	client, ok := s.gateways[method.Type]
	if !ok {
		return railResult{status: models.TransactionStatusFailed, failureMsg: fmt.Sprintf("no gateway configured for %s", method.Type), feeAmount: fee}
	}

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	intent, err := client.CreatePayment(callCtx, req.Amount+fee, req.Currency, map[string]string{
		"transactionId": txID,
		"userId":        fmt.Sprintf("%d", req.UserID),
	})
	if err != nil {
		return railResult{status: models.TransactionStatusFailed, failureMsg: "gateway error: " + err.Error(), feeAmount: fee}
	}

	status := models.TransactionStatusProcessing
	switch intent.Status {
	case models.TransactionStatusCompleted:
		status = models.TransactionStatusCompleted
	case models.TransactionStatusFailed:
		return railResult{status: models.TransactionStatusFailed, failureMsg: "payment declined by processor", externalID: intent.ExternalID, feeAmount: fee}
	}
	return railResult{
		status:      status,
		externalID:  intent.ExternalID,
		redirectURL: intent.RedirectURL,
		feeAmount:   fee,
	}
}

// railBankTransfer issues push-payment instructions. The entry stays
// pending until the incoming wire is matched by reference.
func (s *service) railBankTransfer(req Request, fee float64, txID string) railResult {
	return railResult{
		status:    models.TransactionStatusPending,
		feeAmount: fee,
		reference: txID,
		instructions: fmt.Sprintf(
			"Transfer %.2f %s to IBAN provided in your dashboard, reference %s. Funds clear within 1-3 business days.",
			req.Amount+fee, strings.ToUpper(req.Currency), txID,
		),
	}
}

// railMobileMoney validates the phone and provider limits, dispatches
// to the operator and applies the adapter's normalized outcome.
// Deposits credit the wallet net of fees; payments and withdrawals
// spend from a reservation.
func (s *service) railMobileMoney(ctx context.Context, wallet *models.Wallet, req Request, fee float64, txID string) railResult {
	provider, err := s.mobile.Provider(req.ProviderID)
	if err != nil {
		return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
	}

	phone := req.PhoneNumber
	if phone == "" {
		if acct := wallet.MobileMoneyAccount(req.ProviderID); acct != nil {
			phone = acct.PhoneNumber
		}
	}
	validation := s.mobile.ValidatePhoneNumber(phone, provider.CountryCode)
	if !validation.IsValid {
		return railResult{status: models.TransactionStatusFailed, failureMsg: "invalid phone number: " + validation.Error, feeAmount: fee}
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	daily, err := s.repo.GetProviderVolume(ctx, wallet.ID, req.ProviderID, midnight, now)
	if err != nil {
		return railResult{err: err}
	}
	monthly, err := s.repo.GetProviderVolume(ctx, wallet.ID, req.ProviderID, monthStart, now)
	if err != nil {
		return railResult{err: err}
	}
	check, err := s.mobile.ValidateTransactionLimits(req.ProviderID, req.Amount, daily, monthly)
	if err != nil {
		return railResult{err: err}
	}
	if !check.IsValid {
		return railResult{status: models.TransactionStatusFailed, failureMsg: check.Error, feeAmount: fee}
	}

	operation := mobilemoney.OperationPayment
	cur := s.currencyOf(provider.Currency, "")
	deposit := req.Type == models.TransactionTypeDeposit
	switch req.Type {
	case models.TransactionTypeDeposit:
		operation = mobilemoney.OperationDeposit
	case models.TransactionTypeWithdrawal:
		operation = mobilemoney.OperationWithdrawal
	}

	reservedAmount := 0.0
	if !deposit {
		reservedAmount = req.Amount + fee
		if err := s.ledger.ReserveFunds(ctx, req.UserID, cur, reservedAmount); err != nil {
			return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
		}
	}

	result, err := s.mobile.ProcessTransaction(ctx, mobilemoney.Request{
		ProviderID:  req.ProviderID,
		PhoneNumber: validation.FormattedNumber,
		Amount:      req.Amount,
		Currency:    provider.Currency,
		Operation:   operation,
		Metadata:    map[string]interface{}{"transaction_id": txID},
	})
	if err != nil {
		if !deposit {
			return railResult{
				status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee,
				reserved: true, reservedCur: cur, reservedAmount: reservedAmount,
			}
		}
		return railResult{status: models.TransactionStatusFailed, failureMsg: err.Error(), feeAmount: fee}
	}

	out := railResult{
		reference:            result.Reference,
		providerID:           req.ProviderID,
		feeAmount:            fee,
		confirmationRequired: result.ConfirmationRequired,
		confirmationCode:     result.ConfirmationCode,
	}
	if !deposit {
		out.reserved = true
		out.reservedCur = cur
		out.reservedAmount = reservedAmount
	}

	switch result.Status {
	case mobilemoney.StatusFailed:
		out.status = models.TransactionStatusFailed
		out.failureMsg = result.Error
		if out.failureMsg == "" {
			out.failureMsg = "declined by provider"
		}
	case mobilemoney.StatusCompleted:
		// settle credits completed deposits
		out.status = models.TransactionStatusCompleted
	case mobilemoney.StatusProcessing:
		out.status = models.TransactionStatusProcessing
	default:
		out.status = models.TransactionStatusPending
	}
	return out
}

// currencyOf classifies a symbol into a ledger currency key.
func (s *service) currencyOf(symbol, network string) ledger.Currency {
	symbol = strings.ToUpper(symbol)
	if s.rates.IsCrypto(symbol) {
		if network == "" {
			network = defaultNetworks[symbol]
		}
		return ledger.Currency{Symbol: symbol, Network: network, Crypto: true}
	}
	return ledger.Currency{Symbol: symbol}
}
