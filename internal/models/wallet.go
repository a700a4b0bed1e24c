package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet statuses
const (
	WalletStatusActive  = "active"
	WalletStatusBlocked = "blocked"
)

// FiatBalance is one fiat currency entry inside a wallet.
// Field names are part of the durable document contract; other
// subsystems read them directly.
type FiatBalance struct {
	Symbol         string  `json:"symbol"`
	Balance        float64 `json:"balance"`
	LockedBalance  float64 `json:"lockedBalance"`
	IsBaseCurrency bool    `json:"isBaseCurrency"`
	ExchangeRate   float64 `json:"exchangeRate"`
}

// CryptoBalance is one crypto currency entry inside a wallet,
// unique per (symbol, network).
type CryptoBalance struct {
	Symbol        string  `json:"symbol"`
	Network       string  `json:"network"`
	Balance       float64 `json:"balance"`
	LockedBalance float64 `json:"lockedBalance"`
	WalletAddress string  `json:"walletAddress"`
	CurrentPrice  float64 `json:"currentPrice"`
}

// WalletSettings holds per-wallet limits and verification state.
type WalletSettings struct {
	MaxDailyLimit       float64 `json:"maxDailyLimit"`
	MaxTransactionLimit float64 `json:"maxTransactionLimit"`
	KYCLevel            string  `json:"kycLevel"`
	IsVerified          bool    `json:"isVerified"`
	IsBlocked           bool    `json:"isBlocked"`
}

// WalletStats is a derived view over the ledger. It is recomputed,
// never the source of truth.
type WalletStats struct {
	TotalBalance      float64 `json:"totalBalance"`
	TotalFiatValue    float64 `json:"totalFiatValue"`
	TotalCryptoValue  float64 `json:"totalCryptoValue"`
	StatsCurrency     string  `json:"statsCurrency"`
	TransactionCount  int64   `json:"transactionCount"`
	VolumeToday       float64 `json:"volumeToday"`
	VolumeThisWeek    float64 `json:"volumeThisWeek"`
	VolumeThisMonth   float64 `json:"volumeThisMonth"`
	VolumeThisYear    float64 `json:"volumeThisYear"`
	LastRecomputedAt  time.Time `json:"lastRecomputedAt"`
}

// Wallet is the per-user aggregate: balances, payment methods,
// mobile money accounts and settings. The transaction log lives in
// its own table (see WalletTransaction) but is owned by the wallet.
type Wallet struct {
	ID                  uint                 `gorm:"primarykey" json:"id"`
	UserID              uint                 `gorm:"uniqueIndex;not null" json:"userId"`
	FiatCurrencies      []FiatBalance        `gorm:"type:jsonb;serializer:json" json:"fiatCurrencies"`
	CryptoCurrencies    []CryptoBalance      `gorm:"type:jsonb;serializer:json" json:"cryptoCurrencies"`
	PaymentMethods      []PaymentMethod      `gorm:"type:jsonb;serializer:json" json:"paymentMethods"`
	MobileMoneyAccounts []MobileMoneyAccount `gorm:"type:jsonb;serializer:json" json:"mobileMoneyAccounts"`
	Settings            WalletSettings       `gorm:"type:jsonb;serializer:json" json:"settings"`
	Stats               WalletStats          `gorm:"type:jsonb;serializer:json" json:"stats"`
	Status              string               `gorm:"default:'active'" json:"status"`
	StatusReason        string               `gorm:"default:''" json:"statusReason"`
	Version             uint                 `gorm:"default:0" json:"-"`
	LastActivityAt      time.Time            `json:"lastActivityAt"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.LastActivityAt.IsZero() {
		w.LastActivityAt = time.Now().UTC()
	}
	return nil
}

// Fiat returns the fiat entry for symbol, or nil.
func (w *Wallet) Fiat(symbol string) *FiatBalance {
	for i := range w.FiatCurrencies {
		if w.FiatCurrencies[i].Symbol == symbol {
			return &w.FiatCurrencies[i]
		}
	}
	return nil
}

// Crypto returns the crypto entry for symbol, or nil. When network is
// empty the first entry matching the symbol wins.
func (w *Wallet) Crypto(symbol, network string) *CryptoBalance {
	for i := range w.CryptoCurrencies {
		if w.CryptoCurrencies[i].Symbol != symbol {
			continue
		}
		if network == "" || w.CryptoCurrencies[i].Network == network {
			return &w.CryptoCurrencies[i]
		}
	}
	return nil
}

// BaseCurrency returns the wallet's base fiat symbol.
func (w *Wallet) BaseCurrency() string {
	for i := range w.FiatCurrencies {
		if w.FiatCurrencies[i].IsBaseCurrency {
			return w.FiatCurrencies[i].Symbol
		}
	}
	if len(w.FiatCurrencies) > 0 {
		return w.FiatCurrencies[0].Symbol
	}
	return ""
}

// PaymentMethod returns the method with the given id, or nil.
func (w *Wallet) PaymentMethod(id string) *PaymentMethod {
	for i := range w.PaymentMethods {
		if w.PaymentMethods[i].ID == id {
			return &w.PaymentMethods[i]
		}
	}
	return nil
}

// DefaultPaymentMethod returns the active default method, or nil.
func (w *Wallet) DefaultPaymentMethod() *PaymentMethod {
	for i := range w.PaymentMethods {
		if w.PaymentMethods[i].IsDefault && w.PaymentMethods[i].IsActive {
			return &w.PaymentMethods[i]
		}
	}
	return nil
}

// MobileMoneyAccount returns the account registered for providerID, or nil.
func (w *Wallet) MobileMoneyAccount(providerID string) *MobileMoneyAccount {
	for i := range w.MobileMoneyAccounts {
		if w.MobileMoneyAccounts[i].ProviderID == providerID {
			return &w.MobileMoneyAccounts[i]
		}
	}
	return nil
}
