package rates

import "errors"

// Service errors
var (
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidAmount   = errors.New("invalid conversion amount")
)
