package ledger

import (
	"context"
	"strings"
	"sync"
	"testing"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedConverter struct {
	rates map[string]float64
}

func (c *fixedConverter) GetRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if r, ok := c.rates[from+"/"+to]; ok {
		return r, nil
	}
	return 0, domainerrors.ErrRateUnavailable
}

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(
		repositories.NewMemoryWalletRepository(),
		nil,
		&fixedConverter{rates: map[string]float64{}},
		Config{},
		nil,
	)
}

func eur() Currency { return Currency{Symbol: "EUR"} }

func btc() Currency { return Currency{Symbol: "BTC", Network: "bitcoin", Crypto: true} }

func TestGetOrCreateWallet_SeedsDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)

	require.Len(t, w.FiatCurrencies, 1)
	assert.Equal(t, "EUR", w.FiatCurrencies[0].Symbol)
	assert.True(t, w.FiatCurrencies[0].IsBaseCurrency)
	assert.Zero(t, w.FiatCurrencies[0].Balance)

	require.Len(t, w.PaymentMethods, 1)
	assert.Equal(t, models.PaymentMethodInternal, w.PaymentMethods[0].Type)
	assert.True(t, w.PaymentMethods[0].IsDefault)

	assert.Equal(t, models.WalletStatusActive, w.Status)
	assert.Equal(t, DefaultMaxDailyLimit, w.Settings.MaxDailyLimit)

	// second call returns the same wallet
	again, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, w.ID, again.ID)
}

func TestReserveAndCapture_ConservesTotal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))

	require.NoError(t, svc.ReserveFunds(ctx, 1, eur(), 40))

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Fiat("EUR")
	require.NotNil(t, entry)
	assert.Equal(t, 60.0, entry.Balance)
	assert.Equal(t, 40.0, entry.LockedBalance)

	// capture removes the locked funds permanently
	require.NoError(t, svc.ReleaseFunds(ctx, 1, eur(), 40, true))
	w, _ = svc.GetWallet(ctx, 1)
	entry = w.Fiat("EUR")
	assert.Equal(t, 60.0, entry.Balance)
	assert.Zero(t, entry.LockedBalance)
}

func TestReserveAndRelease_RestoresBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))
	require.NoError(t, svc.ReserveFunds(ctx, 1, eur(), 40))
	require.NoError(t, svc.ReleaseFunds(ctx, 1, eur(), 40, false))

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Fiat("EUR")
	assert.Equal(t, 100.0, entry.Balance)
	assert.Zero(t, entry.LockedBalance)
}

func TestReserveFunds_Insufficient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 10))

	err = svc.ReserveFunds(ctx, 1, eur(), 50)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	// locked funds are not spendable either
	require.NoError(t, svc.ReserveFunds(ctx, 1, eur(), 8))
	err = svc.ReserveFunds(ctx, 1, eur(), 5)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
}

func TestCredit_CreatesCryptoEntryWithAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, btc(), 0.5))

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Crypto("BTC", "bitcoin")
	require.NotNil(t, entry)
	assert.Equal(t, 0.5, entry.Balance)
	assert.True(t, strings.HasPrefix(entry.WalletAddress, "bc1q"))
}

func TestDebit_BlockedWallet(t *testing.T) {
	repo := repositories.NewMemoryWalletRepository()
	svc := NewService(repo, nil, &fixedConverter{}, Config{}, nil)
	ctx := context.Background()

	w, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))

	w, err = svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	w.Settings.IsBlocked = true
	require.NoError(t, repo.Update(w))

	err = svc.Debit(ctx, 1, eur(), 10)
	assert.ErrorIs(t, err, domainerrors.ErrWalletBlocked)
}

func TestAddTransactionAndTransitionStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	txID, err := svc.AddTransaction(ctx, &models.WalletTransaction{
		UserID:   1,
		Type:     models.TransactionTypePayment,
		Amount:   50,
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(txID, "TXN-"))

	tx, err := svc.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)

	tx, err = svc.TransitionStatus(ctx, txID, models.TransactionStatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusProcessing, tx.Status)

	tx, err = svc.TransitionStatus(ctx, txID, models.TransactionStatusCompleted, "")
	require.NoError(t, err)
	require.NotNil(t, tx.CompletedAt)
}

func TestTransitionStatus_RejectsIllegalEdges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	txID, err := svc.AddTransaction(ctx, &models.WalletTransaction{
		UserID:   1,
		Type:     models.TransactionTypePayment,
		Amount:   50,
		Currency: "EUR",
	})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, txID, models.TransactionStatusFailed, "declined")
	require.NoError(t, err)

	// failed is terminal
	_, err = svc.TransitionStatus(ctx, txID, models.TransactionStatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// refunded is reachable from completed only
	txID2, err := svc.AddTransaction(ctx, &models.WalletTransaction{
		UserID:   1,
		Type:     models.TransactionTypePayment,
		Amount:   10,
		Currency: "EUR",
	})
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, txID2, models.TransactionStatusRefunded, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateTransactionDetails_NeverMovesStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	txID, err := svc.AddTransaction(ctx, &models.WalletTransaction{
		UserID:   1,
		Type:     models.TransactionTypePayment,
		Amount:   50,
		Currency: "EUR",
	})
	require.NoError(t, err)

	update := &models.WalletTransaction{
		TransactionID:         txID,
		Status:                models.TransactionStatusCompleted, // must be ignored
		ExternalTransactionID: "ext_123",
		FeeAmount:             1.5,
	}
	require.NoError(t, svc.UpdateTransactionDetails(ctx, update))

	tx, err := svc.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, "ext_123", tx.ExternalTransactionID)
	assert.Equal(t, 1.5, tx.FeeAmount)
}

func TestTransfer_MovesFundsAndPairsEntries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))

	fromTxID, toTxID, err := svc.Transfer(ctx, TransferParams{
		FromUserID: 1,
		ToUserID:   2,
		Amount:     30,
		Currency:   "EUR",
		Fee:        1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, fromTxID, toTxID)

	sender, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 69.0, sender.Fiat("EUR").Balance)

	recipient, err := svc.GetWallet(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 30.0, recipient.Fiat("EUR").Balance)

	fromTx, err := svc.GetTransaction(ctx, fromTxID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeTransfer, fromTx.Type)
	assert.Equal(t, models.TransactionStatusCompleted, fromTx.Status)
	require.NotNil(t, fromTx.CounterpartyID)
	assert.Equal(t, uint(2), *fromTx.CounterpartyID)

	toTx, err := svc.GetTransaction(ctx, toTxID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeReceived, toTx.Type)
	require.NotNil(t, toTx.CounterpartyID)
	assert.Equal(t, uint(1), *toTx.CounterpartyID)
}

func TestTransfer_InsufficientBalanceLeavesBothUntouched(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 10))

	_, _, err = svc.Transfer(ctx, TransferParams{
		FromUserID: 1,
		ToUserID:   2,
		Amount:     30,
		Currency:   "EUR",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	sender, _ := svc.GetWallet(ctx, 1)
	assert.Equal(t, 10.0, sender.Fiat("EUR").Balance)
	recipient, _ := svc.GetWallet(ctx, 2)
	assert.Zero(t, recipient.Fiat("EUR").Balance)

	txs, err := svc.GetTransactions(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransfer_ToSelfRejected(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Transfer(context.Background(), TransferParams{
		FromUserID: 1,
		ToUserID:   1,
		Amount:     10,
		Currency:   "EUR",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
}

func TestExchange_FiatToCrypto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 200))

	// 100 EUR at 0.000025 BTC/EUR with 1% slippage
	txID, err := svc.Exchange(ctx, ExchangeParams{
		UserID:   1,
		From:     eur(),
		To:       btc(),
		Amount:   100,
		ToAmount: 100 * 0.000025 * 0.99,
		Rate:     0.000025,
		Slippage: 0.01,
	})
	require.NoError(t, err)

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, w.Fiat("EUR").Balance)
	entry := w.Crypto("BTC", "bitcoin")
	require.NotNil(t, entry)
	assert.InDelta(t, 0.002475, entry.Balance, 1e-12)

	tx, err := svc.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeExchange, tx.Type)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	require.NotNil(t, tx.CryptoAmount)
	assert.InDelta(t, 0.002475, *tx.CryptoAmount, 1e-12)
	assert.Equal(t, "BTC", tx.Metadata.String("toCurrency"))
}

func TestExchange_InsufficientBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Exchange(ctx, ExchangeParams{
		UserID:   1,
		From:     eur(),
		To:       btc(),
		Amount:   100,
		ToAmount: 0.0025,
		Rate:     0.000025,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
}

func TestRegisterPaymentMethod_DefaultHandling(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPaymentMethod(ctx, 1, models.PaymentMethod{
		Type:      models.PaymentMethodBankCard,
		Label:     "Visa ****4242",
		IsDefault: true,
	}))

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	require.Len(t, w.PaymentMethods, 2)

	defaults := 0
	for _, m := range w.PaymentMethods {
		if m.IsDefault {
			defaults++
			assert.Equal(t, models.PaymentMethodBankCard, m.Type)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default at a time")
}

func TestReserveFunds_NoDoubleSpendUnderConcurrency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))

	const contenders = 8
	results := make(chan error, contenders)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < contenders; i++ {
		go func() {
			start.Wait()
			results <- svc.ReserveFunds(ctx, 1, eur(), 100)
		}()
	}
	start.Done()

	wins := 0
	for i := 0; i < contenders; i++ {
		if err := <-results; err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "the full balance can be reserved exactly once")

	w, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	entry := w.Fiat("EUR")
	assert.Zero(t, entry.Balance)
	assert.Equal(t, 100.0, entry.LockedBalance, "funds conserved across contenders")
}

func TestDeriveAddress_Shape(t *testing.T) {
	btcAddr := DeriveAddress(7, "BTC", "bitcoin")
	assert.True(t, strings.HasPrefix(btcAddr, "bc1q"))

	ethAddr := DeriveAddress(7, "ETH", "ethereum")
	assert.True(t, strings.HasPrefix(ethAddr, "0x"))
	assert.Len(t, ethAddr, 42)

	// deterministic per (user, symbol, network)
	assert.Equal(t, btcAddr, DeriveAddress(7, "BTC", "bitcoin"))
	assert.NotEqual(t, btcAddr, DeriveAddress(8, "BTC", "bitcoin"))
}

func TestGetTotalBalance_ConvertsEverything(t *testing.T) {
	repo := repositories.NewMemoryWalletRepository()
	converter := &fixedConverter{rates: map[string]float64{
		"BTC/EUR": 40000,
		"USD/EUR": 0.9,
	}}
	svc := NewService(repo, nil, converter, Config{}, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateWallet(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Credit(ctx, 1, eur(), 100))
	require.NoError(t, svc.Credit(ctx, 1, Currency{Symbol: "USD"}, 50))
	require.NoError(t, svc.Credit(ctx, 1, btc(), 0.001))
	require.NoError(t, svc.ReserveFunds(ctx, 1, eur(), 20))

	total, err := svc.GetTotalBalance(ctx, 1, "EUR")
	require.NoError(t, err)
	// 100 EUR (80 free + 20 locked) + 50 USD * 0.9 + 0.001 BTC * 40000
	assert.InDelta(t, 100+45+40, total, 1e-9)
}
