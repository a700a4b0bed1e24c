package mobilemoney

import "time"

// Operation types
const (
	OperationDeposit    = "deposit"
	OperationWithdrawal = "withdrawal"
	OperationPayment    = "payment"
)

// Transaction statuses reported by the adapter. These are the only
// values ProcessTransaction may return.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Provider is one country x operator configuration.
type Provider struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	CountryCode          string   `json:"countryCode"`
	Currency             string   `json:"currency"`
	FeePercent           float64  `json:"feePercent"`
	FeeMinimum           float64  `json:"feeMinimum"`
	FeeMaximum           float64  `json:"feeMaximum"`
	MinAmount            float64  `json:"minAmount"`
	MaxAmount            float64  `json:"maxAmount"`
	DailyLimit           float64  `json:"dailyLimit"`
	MonthlyLimit         float64  `json:"monthlyLimit"`
	PhonePrefixes        []string `json:"phonePrefixes"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
}

// PhoneValidation is the outcome of a format check. A valid result
// does not guarantee the number is live, only well formed.
type PhoneValidation struct {
	IsValid             bool   `json:"isValid"`
	FormattedNumber     string `json:"formattedNumber,omitempty"`
	SuggestedProviderID string `json:"suggestedProviderId,omitempty"`
	Error               string `json:"error,omitempty"`
}

// LimitCheck reports the first failing limit, if any.
type LimitCheck struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// Request is the normalized transaction request handed to a provider.
type Request struct {
	ProviderID  string                 `json:"providerId"`
	PhoneNumber string                 `json:"phoneNumber"`
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	Operation   string                 `json:"operation"`
	Reference   string                 `json:"reference,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Result is the normalized provider response, identical across
// operators.
type Result struct {
	Success              bool      `json:"success"`
	Reference            string    `json:"reference"`
	Status               string    `json:"status"`
	ConfirmationRequired bool      `json:"confirmationRequired"`
	ConfirmationCode     string    `json:"confirmationCode,omitempty"`
	Error                string    `json:"error,omitempty"`
	ProcessedAt          time.Time `json:"processedAt"`
}
