package rates

import "time"

// Default configuration values
const (
	DefaultPivotCurrency = "USD"
	DefaultCacheTTL      = 5 * time.Minute
	DefaultLookupTimeout = 10 * time.Second
)

// cryptoSymbols are the recognized crypto currencies.
var cryptoSymbols = map[string]bool{
	"BTC":   true,
	"ETH":   true,
	"USDT":  true,
	"USDC":  true,
	"BNB":   true,
	"SOL":   true,
	"MATIC": true,
	"ADA":   true,
	"XRP":   true,
	"DOT":   true,
}

// staticFiatRates is the fallback fiat table, pivoted on EUR. Using it
// for fiat-to-fiat pairs is an accepted approximation, not an error.
var staticFiatRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.08,
	"GBP": 0.86,
	"CHF": 0.95,
	"CAD": 1.47,
	"XOF": 655.96,
	"XAF": 655.96,
	"KES": 139.0,
	"GHS": 13.1,
	"NGN": 1650.0,
	"UGX": 4050.0,
	"TZS": 2750.0,
	"MAD": 10.9,
	"ZAR": 20.3,
}
