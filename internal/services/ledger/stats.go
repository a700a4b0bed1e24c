package ledger

import (
	"context"
	"log"
	"time"

	"easyrent/internal/models"
)

// GetTotalBalance converts every fiat and crypto balance into the
// requested currency at current rates and sums them. Display and
// statistics only, never enforcement.
func (s *service) GetTotalBalance(ctx context.Context, userID uint, currency string) (float64, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range wallet.FiatCurrencies {
		entry := &wallet.FiatCurrencies[i]
		rate, err := s.rates.GetRate(ctx, entry.Symbol, currency)
		if err != nil {
			return 0, err
		}
		total += (entry.Balance + entry.LockedBalance) * rate
	}
	for i := range wallet.CryptoCurrencies {
		entry := &wallet.CryptoCurrencies[i]
		rate, err := s.rates.GetRate(ctx, entry.Symbol, currency)
		if err != nil {
			return 0, err
		}
		total += (entry.Balance + entry.LockedBalance) * rate
	}
	return total, nil
}

// UpdateStats recomputes the derived stats view. Idempotent; safe to
// run at any time.
func (s *service) UpdateStats(ctx context.Context, userID uint) error {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return err
	}

	base := wallet.BaseCurrency()
	if base == "" {
		base = s.config.BaseCurrency
	}

	var fiatValue, cryptoValue float64
	for i := range wallet.FiatCurrencies {
		entry := &wallet.FiatCurrencies[i]
		rate, err := s.rates.GetRate(ctx, entry.Symbol, base)
		if err != nil {
			return err
		}
		fiatValue += (entry.Balance + entry.LockedBalance) * rate
	}
	for i := range wallet.CryptoCurrencies {
		entry := &wallet.CryptoCurrencies[i]
		rate, err := s.rates.GetRate(ctx, entry.Symbol, base)
		if err != nil {
			log.Printf("stats: no rate for %s/%s, skipping entry: %v", entry.Symbol, base, err)
			continue
		}
		cryptoValue += (entry.Balance + entry.LockedBalance) * rate
	}

	count, err := s.repo.CountTransactions(ctx, wallet.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := midnight.AddDate(0, 0, -int(midnight.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	volumes := make([]float64, 4)
	for i, since := range []time.Time{midnight, weekStart, monthStart, yearStart} {
		v, err := s.repo.GetVolumeSince(ctx, wallet.ID, since)
		if err != nil {
			return err
		}
		volumes[i] = v
	}

	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		w.Stats = models.WalletStats{
			TotalBalance:     fiatValue + cryptoValue,
			TotalFiatValue:   fiatValue,
			TotalCryptoValue: cryptoValue,
			StatsCurrency:    base,
			TransactionCount: count,
			VolumeToday:      volumes[0],
			VolumeThisWeek:   volumes[1],
			VolumeThisMonth:  volumes[2],
			VolumeThisYear:   volumes[3],
			LastRecomputedAt: now,
		}
		return nil
	})
}
