package payment

import "time"

const (
	// DefaultSlippage protects exchange quotes from drift between the
	// cached rate and execution.
	DefaultSlippage = 0.01

	// DefaultRiskHistoryLimit bounds how much recent history the risk
	// evaluator sees.
	DefaultRiskHistoryLimit = 50
)

// defaultNetworkFees are flat per-network withdrawal fees, denominated
// in the crypto asset itself.
var defaultNetworkFees = map[string]float64{
	"bitcoin":  0.0001,
	"ethereum": 0.002,
	"polygon":  0.01,
	"solana":   0.00025,
	"cardano":  0.2,
	"ripple":   0.0002,
	"polkadot": 0.01,
	"bsc":      0.0005,
}

// defaultNetworks maps a crypto symbol to the network used when the
// payment method does not carry one.
var defaultNetworks = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "ethereum",
	"USDC":  "ethereum",
	"BNB":   "bsc",
	"SOL":   "solana",
	"MATIC": "polygon",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
}

// staleAfter is how long a pending transaction on each rail may sit
// before reconciliation flags it.
var staleAfter = map[string]time.Duration{
	"crypto_wallet": time.Hour,
	"mobile_money":  15 * time.Minute,
	"bank_card":     30 * time.Minute,
	"stripe":        30 * time.Minute,
	"paypal":        30 * time.Minute,
	"bank_transfer": 24 * time.Hour,
}
