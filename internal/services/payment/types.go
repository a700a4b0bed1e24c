package payment

import (
	"easyrent/internal/services/ledger"
)

// Request is one unified payment request. Type selects the ledger
// entry kind; it defaults to "payment".
type Request struct {
	UserID          uint                   `json:"-"`
	Type            string                 `json:"type,omitempty"`
	Amount          float64                `json:"amount"`
	Currency        string                 `json:"currency"`
	PaymentMethodID string                 `json:"payment_method_id,omitempty"`
	Description     string                 `json:"description,omitempty"`
	PropertyID      string                 `json:"property_id,omitempty"`
	ReservationID   string                 `json:"reservation_id,omitempty"`
	PhoneNumber     string                 `json:"phone_number,omitempty"`
	CountryCode     string                 `json:"country_code,omitempty"`
	ProviderID      string                 `json:"provider_id,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// Response is the orchestrator's public contract. Business failures
// come back as Success=false with a retained transaction id whenever a
// ledger entry was created.
type Response struct {
	Success              bool    `json:"success"`
	TransactionID        string  `json:"transactionId,omitempty"`
	Status               string  `json:"status,omitempty"`
	FeeAmount            float64 `json:"feeAmount"`
	ConfirmationRequired bool    `json:"confirmationRequired,omitempty"`
	ConfirmationCode     string  `json:"confirmationCode,omitempty"`
	ExternalPaymentURL   string  `json:"externalPaymentUrl,omitempty"`
	QRCodeData           string  `json:"qrCodeData,omitempty"`
	Instructions         string  `json:"instructions,omitempty"`
	Error                string  `json:"error,omitempty"`
}

// TransferRequest moves funds between two user wallets.
type TransferRequest struct {
	FromUserID  uint    `json:"-"`
	ToUserID    uint    `json:"to_user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Fee         float64 `json:"fee,omitempty"`
	Description string  `json:"description,omitempty"`
	PropertyID  string  `json:"property_id,omitempty"`
}

// TransferResponse reports the paired ledger entries.
type TransferResponse struct {
	Success           bool   `json:"success"`
	TransactionID     string `json:"transactionId,omitempty"`
	PairTransactionID string `json:"pairTransactionId,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ExchangeRequest converts between two currencies inside one wallet.
type ExchangeRequest struct {
	UserID       uint    `json:"-"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
	Slippage     float64 `json:"slippage,omitempty"`
}

// ExchangeResponse reports the executed conversion.
type ExchangeResponse struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transactionId,omitempty"`
	ToAmount      float64 `json:"toAmount,omitempty"`
	Rate          float64 `json:"rate,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Config tunes the orchestrator.
type Config struct {
	BaseCurrency      string
	DefaultSlippage   float64
	CryptoNetworkFees map[string]float64
	RiskHistoryLimit  int
}

// railResult is the normalized outcome of one rail handler.
type railResult struct {
	status               string
	externalID           string
	txHash               string
	redirectURL          string
	qrData               string
	instructions         string
	reference            string
	confirmationRequired bool
	confirmationCode     string
	cryptoAmount         *float64
	exchangeRate         *float64
	confirmations        int
	providerID           string
	feeAmount            float64
	failureMsg           string

	// reservation made by the handler, released on failure
	reserved       bool
	reservedCur    ledger.Currency
	reservedAmount float64

	err error
}
