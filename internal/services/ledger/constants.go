package ledger

// Default configuration values
const (
	DefaultBaseCurrency        = "EUR"
	DefaultMaxDailyLimit       = 10000.0
	DefaultMaxTransactionLimit = 5000.0
)

// maxWriteRetries bounds the optimistic-lock retry loop on wallet
// writes.
const maxWriteRetries = 3

// bitcoinFamily networks use 6 confirmations; everything else 12.
var bitcoinFamily = map[string]bool{
	"bitcoin":      true,
	"litecoin":     true,
	"dogecoin":     true,
	"bitcoin-cash": true,
}

// IsBitcoinFamily reports whether network settles like Bitcoin.
func IsBitcoinFamily(network string) bool {
	return bitcoinFamily[network]
}
