package models

import "time"

// Payment method types
const (
	PaymentMethodInternal     = "internal"
	PaymentMethodCryptoWallet = "crypto_wallet"
	PaymentMethodBankCard     = "bank_card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodStripe       = "stripe"
	PaymentMethodMobileMoney  = "mobile_money"
)

// PaymentMethod is one payment instrument attached to a wallet.
// Details carries the type-specific fields (card last4, crypto
// network, paypal email, mobile money provider id).
type PaymentMethod struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	IsDefault bool      `json:"isDefault"`
	IsActive  bool      `json:"isActive"`
	Details   JSON      `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MobileMoneyLimits tracks the per-provider schedule and the user's
// rolling usage against it.
type MobileMoneyLimits struct {
	Daily               float64 `json:"daily"`
	Monthly             float64 `json:"monthly"`
	CurrentDailyUsage   float64 `json:"currentDailyUsage"`
	CurrentMonthlyUsage float64 `json:"currentMonthlyUsage"`
}

// MobileMoneyAccount is a phone-number-addressed e-money account
// registered on the wallet for one provider.
type MobileMoneyAccount struct {
	ID          string            `json:"id"`
	ProviderID  string            `json:"providerId"`
	PhoneNumber string            `json:"phoneNumber"`
	CountryCode string            `json:"countryCode"`
	Currency    string            `json:"currency"`
	Limits      MobileMoneyLimits `json:"limits"`
	FeePercent  float64           `json:"feePercent"`
	IsVerified  bool              `json:"isVerified"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// IsValidPaymentMethodType reports whether t is a known rail.
func IsValidPaymentMethodType(t string) bool {
	switch t {
	case PaymentMethodInternal, PaymentMethodCryptoWallet, PaymentMethodBankCard,
		PaymentMethodBankTransfer, PaymentMethodPayPal, PaymentMethodStripe,
		PaymentMethodMobileMoney:
		return true
	}
	return false
}
