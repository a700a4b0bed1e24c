package rates

import (
	"context"
	"time"

	"easyrent/internal/repositories/cache"
)

// RateProvider is the external market-data dependency. Implementations
// must honor ctx cancellation; the converter wraps every call in a
// lookup timeout.
type RateProvider interface {
	GetPrice(ctx context.Context, symbol, vsCurrency string) (float64, error)
}

// QuoteCache stores resolved (from,to) rates. Satisfied by
// repositories/cache.CacheService.
type QuoteCache interface {
	GetRate(ctx context.Context, from, to string) (*cache.RateQuote, bool, error)
	SetRate(ctx context.Context, quote *cache.RateQuote, ttl time.Duration) error
}

// Converter resolves conversions between fiat and crypto currencies.
type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64) (*Conversion, error)
	GetRate(ctx context.Context, from, to string) (float64, error)
	IsCrypto(symbol string) bool
}
