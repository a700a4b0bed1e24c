package risk

// Default hard-limit gate values, in the wallet's base currency.
const (
	DefaultMinAmount           = 0.01
	DefaultMaxAmount           = 100000.0
	DefaultUnverifiedMaxAmount = 1000.0
)
