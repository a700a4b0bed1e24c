package rates

import "time"

// Conversion is the result of one currency conversion.
type Conversion struct {
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	FromAmount   float64   `json:"fromAmount"`
	ToAmount     float64   `json:"toAmount"`
	Rate         float64   `json:"rate"`
	Timestamp    time.Time `json:"timestamp"`
}

// Config holds converter tuning.
type Config struct {
	PivotCurrency string
	CacheTTL      time.Duration
	LookupTimeout time.Duration
}
