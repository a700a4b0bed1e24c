package payment

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"easyrent/internal/models"
	"easyrent/internal/repositories"
	"easyrent/internal/services/gateway"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/services/notification"
	"easyrent/internal/services/rates"
	"easyrent/internal/services/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	repo    repositories.WalletRepository
	ledger  ledger.Service
	service Service
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	repo := repositories.NewMemoryWalletRepository()
	converter := rates.NewService(&rates.StaticProvider{Prices: map[string]float64{
		"BTC/EUR": 40000,
		"BTC/USD": 43000,
		"ETH/EUR": 2500,
	}}, nil, rates.Config{})

	ledgerSvc := ledger.NewService(repo, nil, converter, ledger.Config{}, nil)
	evaluator := risk.NewEvaluator(risk.Limits{}, converter.IsCrypto)
	mobile := mobilemoney.NewService(&mobilemoney.SandboxClient{})

	sandbox := &gateway.SandboxClient{Prefix: "test"}
	gateways := map[string]gateway.Client{
		models.PaymentMethodBankCard: sandbox,
		models.PaymentMethodStripe:   sandbox,
		models.PaymentMethodPayPal:   sandbox,
	}

	svc := NewService(
		ledgerSvc, repo, converter, evaluator, mobile, gateways,
		notification.NewLogSink(), nil, Config{},
	)
	return &testEngine{repo: repo, ledger: ledgerSvc, service: svc}
}

// fundWallet creates the wallet, credits it and lifts the default
// limits so individual tests control exactly which gate fires.
func (e *testEngine) fundWallet(t *testing.T, userID uint, cur ledger.Currency, amount float64, verified bool) {
	t.Helper()
	ctx := context.Background()

	_, err := e.ledger.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	if amount > 0 {
		require.NoError(t, e.ledger.Credit(ctx, userID, cur, amount))
	}

	w, err := e.repo.GetByUserID(userID)
	require.NoError(t, err)
	w.Settings.IsVerified = verified
	w.Settings.MaxDailyLimit = 100000000
	w.Settings.MaxTransactionLimit = 10000000
	require.NoError(t, e.repo.Update(w))
}

func TestProcessPayment_InternalSuccess(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 500, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:   1,
		Amount:   100,
		Currency: "EUR",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusCompleted, resp.Status)
	assert.Zero(t, resp.FeeAmount, "internal rail carries no fee")

	w, err := e.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Fiat("EUR")
	assert.Equal(t, 400.0, entry.Balance)
	assert.Zero(t, entry.LockedBalance, "nothing stays locked after capture")

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, models.PaymentMethodInternal, tx.PaymentMethodType)
}

func TestProcessPayment_InternalInsufficientBalance(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 10, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:   1,
		Amount:   100,
		Currency: "EUR",
	})
	require.NoError(t, err, "business failures must not surface as errors")
	assert.False(t, resp.Success)
	assert.Equal(t, models.TransactionStatusFailed, resp.Status)
	assert.Contains(t, strings.ToUpper(resp.Error), "INSUFFICIENT")
	require.NotEmpty(t, resp.TransactionID, "failed attempts still leave a ledger entry")

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
	assert.NotEmpty(t, tx.Error)

	w, _ := e.ledger.GetWallet(ctx, 1)
	assert.Equal(t, 10.0, w.Fiat("EUR").Balance, "balance untouched")
}

func TestProcessPayment_HardLimitDeclinesBeforeLedger(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	// unverified account, default risk limits apply
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 5000, false)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:   1,
		Amount:   2000,
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.TransactionID, "hard-limit declines happen before any ledger write")
	assert.Contains(t, resp.Error, "unverified")

	txs, err := e.ledger.GetTransactions(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestProcessPayment_RiskBlock(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "BTC", Network: "bitcoin", Crypto: true}, 1, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:    "card-1",
		Type:  models.PaymentMethodBankCard,
		Label: "Visa ****4242",
	}))

	// four rapid small BTC entries: velocity +20, spike +25, new user
	// +15, card +15, crypto +5 puts the score at or past the block
	// threshold regardless of time of day
	for i := 0; i < 4; i++ {
		_, err := e.ledger.AddTransaction(ctx, &models.WalletTransaction{
			UserID:   1,
			Type:     models.TransactionTypePayment,
			Amount:   10,
			Currency: "BTC",
		})
		require.NoError(t, err)
	}

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "BTC",
		PaymentMethodID: "card-1",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, strings.ToUpper(resp.Error), "RISK")
}

func TestProcessPayment_NoPaymentMethod(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 500, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "does-not-exist",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "does-not-exist")
}

func TestProcessPayment_CardGoesProcessing(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:    "card-1",
		Type:  models.PaymentMethodBankCard,
		Label: "Visa ****4242",
	}))

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "card-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusProcessing, resp.Status)
	assert.InDelta(t, 100*0.029+0.30, resp.FeeAmount, 1e-9)
	assert.NotEmpty(t, resp.ExternalPaymentURL)

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusProcessing, tx.Status)
	assert.NotEmpty(t, tx.ExternalTransactionID)
}

// instantGateway approves every intent immediately and records the
// metadata it was handed.
type instantGateway struct {
	metadata map[string]string
}

func (g *instantGateway) CreatePayment(ctx context.Context, amount float64, currency string, metadata map[string]string) (*gateway.PaymentIntent, error) {
	g.metadata = metadata
	return &gateway.PaymentIntent{ExternalID: "inst_1", Status: gateway.StatusCompleted}, nil
}

func (g *instantGateway) GetStatus(ctx context.Context, externalID string) (string, error) {
	return gateway.StatusCompleted, nil
}

func TestProcessPayment_CardDepositCreditsOnInstantCompletion(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	instant := &instantGateway{}
	e.service.(*service).gateways[models.PaymentMethodBankCard] = instant

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:   "card-1",
		Type: models.PaymentMethodBankCard,
	}))

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Type:            models.TransactionTypeDeposit,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "card-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusCompleted, resp.Status)

	w, err := e.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Fiat("EUR")
	require.NotNil(t, entry)
	assert.InDelta(t, 100-resp.FeeAmount, entry.Balance, 1e-9, "instant deposits credit net of fees")

	require.NotNil(t, instant.metadata)
	assert.Equal(t, resp.TransactionID, instant.metadata["transactionId"], "ledger reference travels with the intent")
}

// volumeFailRepo simulates a broken daily-volume query.
type volumeFailRepo struct {
	repositories.WalletRepository
}

func (r *volumeFailRepo) GetCompletedVolume(ctx context.Context, walletID uint, currency string, start, end time.Time) (float64, error) {
	return 0, stderrors.New("connection reset")
}

func TestProcessPayment_DailyLimitFailsClosed(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 500, true)

	svc := e.service.(*service)
	svc.repo = &volumeFailRepo{WalletRepository: svc.repo}

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:   1,
		Amount:   100,
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success, "unverifiable daily spend must decline")
	assert.Empty(t, resp.TransactionID)

	w, _ := e.ledger.GetWallet(ctx, 1)
	assert.Equal(t, 500.0, w.Fiat("EUR").Balance)
}

func TestProcessPayment_BankTransferPendingWithInstructions(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:   "bank-1",
		Type: models.PaymentMethodBankTransfer,
	}))

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "bank-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)
	assert.InDelta(t, 1.0, resp.FeeAmount, 1e-9)
	assert.Contains(t, resp.Instructions, resp.TransactionID)
}

func TestProcessPayment_CryptoReservesAndAwaitsConfirmations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "BTC", Network: "bitcoin", Crypto: true}, 1, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:      "crypto-1",
		Type:    models.PaymentMethodCryptoWallet,
		Details: models.NewJSON(map[string]interface{}{"symbol": "BTC", "network": "bitcoin"}),
	}))

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "crypto-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusPending, resp.Status, "pending until the chain confirms")
	assert.Contains(t, resp.QRCodeData, "bitcoin:")
	// 1% of 100 EUR plus the 0.0001 BTC network fee at 40000
	assert.InDelta(t, 1.0+0.0001*40000, resp.FeeAmount, 1e-9, "fee reported in the request currency")

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 6, tx.ConfirmationsRequired, "bitcoin family settles at 6 confirmations")
	require.NotNil(t, tx.CryptoAmount)
	assert.InDelta(t, 100.0/40000, *tx.CryptoAmount, 1e-12)

	w, _ := e.ledger.GetWallet(ctx, 1)
	entry := w.Crypto("BTC", "bitcoin")
	require.NotNil(t, entry)
	assert.InDelta(t, 100.0/40000+0.0001, entry.LockedBalance, 1e-12, "converted amount plus network fee held")
}

func TestConfirmCryptoPayment_CapturesReservation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "BTC", Network: "bitcoin", Crypto: true}, 1, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:      "crypto-1",
		Type:    models.PaymentMethodCryptoWallet,
		Details: models.NewJSON(map[string]interface{}{"symbol": "BTC", "network": "bitcoin"}),
	}))
	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "crypto-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)

	// too few confirmations leaves the hold in place
	early, err := e.service.ConfirmCryptoPayment(ctx, 1, resp.TransactionID, "0xabc123", 3)
	require.NoError(t, err)
	assert.False(t, early.Success)
	assert.Contains(t, early.Error, "confirmations")

	ok, err := e.service.ConfirmCryptoPayment(ctx, 1, resp.TransactionID, "0xabc123", 6)
	require.NoError(t, err)
	require.True(t, ok.Success, ok.Error)
	assert.Equal(t, models.TransactionStatusCompleted, ok.Status)

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, "0xabc123", tx.TxHash)

	held := 100.0/40000 + 0.0001
	w, _ := e.ledger.GetWallet(ctx, 1)
	entry := w.Crypto("BTC", "bitcoin")
	require.NotNil(t, entry)
	assert.InDelta(t, 1-held, entry.Balance, 1e-12, "reservation captured, not released")
	assert.Zero(t, entry.LockedBalance)

	// a second confirmation attempt is rejected
	again, err := e.service.ConfirmCryptoPayment(ctx, 1, resp.TransactionID, "0xabc123", 6)
	require.NoError(t, err)
	assert.False(t, again.Success)
}

func TestProcessPayment_MobileMoneyConfirmationFlow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "XOF"}, 10000, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:      1,
		Amount:      5000,
		Currency:    "XOF",
		ProviderID:  "wave_ci",
		PhoneNumber: "0708123456",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)
	assert.True(t, resp.ConfirmationRequired)
	require.Len(t, resp.ConfirmationCode, 6)
	assert.InDelta(t, 25.0, resp.FeeAmount, 1e-9, "0.5%% of 5000 XOF")

	w, _ := e.ledger.GetWallet(ctx, 1)
	entry := w.Fiat("XOF")
	assert.Equal(t, 4975.0, entry.Balance)
	assert.Equal(t, 5025.0, entry.LockedBalance, "amount plus fee held until confirmation")

	// wrong code leaves everything untouched
	bad, err := e.service.ConfirmMobileMoneyPayment(ctx, 1, resp.TransactionID, "000000")
	require.NoError(t, err)
	if resp.ConfirmationCode != "000000" {
		assert.False(t, bad.Success)
	}

	ok, err := e.service.ConfirmMobileMoneyPayment(ctx, 1, resp.TransactionID, resp.ConfirmationCode)
	require.NoError(t, err)
	require.True(t, ok.Success, ok.Error)
	assert.Equal(t, models.TransactionStatusCompleted, ok.Status)

	w, _ = e.ledger.GetWallet(ctx, 1)
	entry = w.Fiat("XOF")
	assert.Equal(t, 4975.0, entry.Balance)
	assert.Zero(t, entry.LockedBalance)

	// confirming twice is rejected
	again, err := e.service.ConfirmMobileMoneyPayment(ctx, 1, resp.TransactionID, resp.ConfirmationCode)
	require.NoError(t, err)
	assert.False(t, again.Success)
}

func TestProcessPayment_MobileMoneyDepositCompletesImmediately(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "KES"}, 0, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:      1,
		Type:        models.TransactionTypeDeposit,
		Amount:      1000,
		Currency:    "KES",
		ProviderID:  "mpesa_ke",
		PhoneNumber: "0712345678",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, models.TransactionStatusCompleted, resp.Status)
	assert.False(t, resp.ConfirmationRequired, "M-Pesa settles without a code")

	w, _ := e.ledger.GetWallet(ctx, 1)
	entry := w.Fiat("KES")
	require.NotNil(t, entry)
	assert.InDelta(t, 1000-resp.FeeAmount, entry.Balance, 1e-9, "deposits credit net of fees")
}

func TestProcessPayment_MobileMoneyInvalidPhone(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "XOF"}, 10000, true)

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:      1,
		Amount:      5000,
		Currency:    "XOF",
		ProviderID:  "wave_ci",
		PhoneNumber: "1234",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "phone")

	w, _ := e.ledger.GetWallet(ctx, 1)
	assert.Equal(t, 10000.0, w.Fiat("XOF").Balance, "nothing reserved on validation failure")
}

func TestProcessPayment_WalletBlocked(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 500, true)

	w, err := e.repo.GetByUserID(1)
	require.NoError(t, err)
	w.Settings.IsBlocked = true
	require.NoError(t, e.repo.Update(w))

	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:   1,
		Amount:   100,
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.TransactionID)
}

func TestProcessPayment_InvalidRequests(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	resp, err := e.service.ProcessPayment(ctx, Request{UserID: 1, Amount: -5, Currency: "EUR"})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = e.service.ProcessPayment(ctx, Request{UserID: 1, Amount: 10})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	_, err = e.service.ProcessPayment(ctx, Request{UserID: 1, Type: "bogus", Amount: 10, Currency: "EUR"})
	assert.Error(t, err, "unknown transaction type is a programming error")
}

func TestTransfer_EndToEnd(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 100, true)

	resp, err := e.service.Transfer(ctx, TransferRequest{
		FromUserID: 1,
		ToUserID:   2,
		Amount:     40,
		Currency:   "EUR",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.NotEmpty(t, resp.TransactionID)
	assert.NotEmpty(t, resp.PairTransactionID)

	recipient, err := e.ledger.GetWallet(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 40.0, recipient.Fiat("EUR").Balance)
}

func TestTransfer_InsufficientIsDecline(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 10, true)

	resp, err := e.service.Transfer(ctx, TransferRequest{
		FromUserID: 1,
		ToUserID:   2,
		Amount:     40,
		Currency:   "EUR",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestExchange_EndToEnd(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 200, true)

	resp, err := e.service.Exchange(ctx, ExchangeRequest{
		UserID:       1,
		FromCurrency: "EUR",
		ToCurrency:   "BTC",
		Amount:       100,
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)
	assert.InDelta(t, 0.000025, resp.Rate, 1e-12)
	assert.InDelta(t, 0.002475, resp.ToAmount, 1e-12, "1%% default slippage applied")

	w, err := e.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, w.Fiat("EUR").Balance)
	entry := w.Crypto("BTC", "")
	require.NotNil(t, entry)
	assert.InDelta(t, 0.002475, entry.Balance, 1e-12)
}

func TestExchange_UnknownCurrencyIsDecline(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 200, true)

	resp, err := e.service.Exchange(ctx, ExchangeRequest{
		UserID:       1,
		FromCurrency: "EUR",
		ToCurrency:   "ZZZ",
		Amount:       100,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestReconcilePending_CompletesStaleCardPayment(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:   "card-1",
		Type: models.PaymentMethodBankCard,
	}))
	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "card-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)

	ageTransaction(t, e.repo, resp.TransactionID, 2*time.Hour)

	report, err := e.service.ReconcilePending(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Completed)

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
}

func TestReconcilePending_ExpiresStaleBankTransfer(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:   "bank-1",
		Type: models.PaymentMethodBankTransfer,
	}))
	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "bank-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)

	ageTransaction(t, e.repo, resp.TransactionID, 25*time.Hour)

	report, err := e.service.ReconcilePending(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
}

func TestReconcilePending_FreshEntriesUntouched(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.fundWallet(t, 1, ledger.Currency{Symbol: "EUR"}, 0, true)

	require.NoError(t, e.ledger.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		ID:   "card-1",
		Type: models.PaymentMethodBankCard,
	}))
	resp, err := e.service.ProcessPayment(ctx, Request{
		UserID:          1,
		Amount:          100,
		Currency:        "EUR",
		PaymentMethodID: "card-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)

	report, err := e.service.ReconcilePending(ctx, 50)
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)

	tx, err := e.ledger.GetTransaction(ctx, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusProcessing, tx.Status)
}

// ageTransaction back-dates a ledger entry so reconciliation treats it
// as stale.
func ageTransaction(t *testing.T, repo repositories.WalletRepository, txID string, age time.Duration) {
	t.Helper()
	tx, err := repo.GetTransactionByTransactionID(txID)
	require.NoError(t, err)
	tx.CreatedAt = time.Now().Add(-age)
	require.NoError(t, repo.UpdateTransaction(tx))
}

func TestCalculateFees_Schedule(t *testing.T) {
	e := newTestEngine(t)
	svc := e.service.(*service)

	tests := []struct {
		method  string
		amount  float64
		network string
		want    float64
	}{
		{models.PaymentMethodInternal, 100, "", 0},
		{models.PaymentMethodBankCard, 100, "", 100*0.029 + 0.30},
		{models.PaymentMethodStripe, 100, "", 100*0.029 + 0.30},
		{models.PaymentMethodPayPal, 100, "", 100*0.034 + 0.35},
		{models.PaymentMethodBankTransfer, 100, "", 1.0},
		// network fee is added after conversion in priceFees, not here
		{models.PaymentMethodCryptoWallet, 100, "bitcoin", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.network, func(t *testing.T) {
			got := svc.CalculateFees(tt.method, tt.amount, tt.network)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
