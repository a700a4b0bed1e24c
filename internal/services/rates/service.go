// Package rates resolves conversions between fiat and crypto
// currencies. Crypto pairs route through live market-data lookups
// pivoted on one fiat currency; fiat-to-fiat pairs resolve against a
// static table. Resolved rates are cached per (from,to) pair.
package rates

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"easyrent/internal/repositories/cache"
)

type service struct {
	provider RateProvider
	cache    QuoteCache
	config   Config
}

// NewService creates a new rate converter.
func NewService(provider RateProvider, quoteCache QuoteCache, config Config) Converter {
	if provider == nil {
		panic("rate provider is required")
	}
	if config.PivotCurrency == "" {
		config.PivotCurrency = DefaultPivotCurrency
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.LookupTimeout == 0 {
		config.LookupTimeout = DefaultLookupTimeout
	}

	return &service{
		provider: provider,
		cache:    quoteCache,
		config:   config,
	}
}

func (s *service) IsCrypto(symbol string) bool {
	return cryptoSymbols[strings.ToUpper(symbol)]
}

func (s *service) Convert(ctx context.Context, from, to string, amount float64) (*Conversion, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	rate, err := s.GetRate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		FromCurrency: strings.ToUpper(from),
		ToCurrency:   strings.ToUpper(to),
		FromAmount:   amount,
		ToAmount:     amount * rate,
		Rate:         rate,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (s *service) GetRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return 1, nil
	}

	// Cache hit short-circuits provider calls.
	if s.cache != nil {
		if quote, found, err := s.cache.GetRate(ctx, from, to); err == nil && found {
			return quote.Rate, nil
		}
	}

	rate, err := s.resolveRate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		quote := &cache.RateQuote{From: from, To: to, Rate: rate, Timestamp: time.Now().UTC()}
		if err := s.cache.SetRate(ctx, quote, s.config.CacheTTL); err != nil {
			log.Printf("failed to cache rate %s/%s: %v", from, to, err)
		}
	}

	return rate, nil
}

func (s *service) resolveRate(ctx context.Context, from, to string) (float64, error) {
	fromCrypto := s.IsCrypto(from)
	toCrypto := s.IsCrypto(to)

	switch {
	case fromCrypto && toCrypto:
		// Crypto to crypto goes through the pivot fiat.
		fromPrice, err := s.lookupPrice(ctx, from, s.config.PivotCurrency)
		if err != nil {
			return 0, err
		}
		toPrice, err := s.lookupPrice(ctx, to, s.config.PivotCurrency)
		if err != nil {
			return 0, err
		}
		if toPrice == 0 {
			return 0, fmt.Errorf("%w: zero pivot price for %s", ErrRateUnavailable, to)
		}
		return fromPrice / toPrice, nil

	case fromCrypto:
		return s.lookupPrice(ctx, from, to)

	case toCrypto:
		price, err := s.lookupPrice(ctx, to, from)
		if err != nil {
			return 0, err
		}
		if price == 0 {
			return 0, fmt.Errorf("%w: zero price for %s", ErrRateUnavailable, to)
		}
		return 1 / price, nil

	default:
		return s.fiatRate(from, to)
	}
}

func (s *service) lookupPrice(ctx context.Context, symbol, vsCurrency string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	price, err := s.provider.GetPrice(ctx, symbol, vsCurrency)
	if err != nil {
		return 0, fmt.Errorf("%w: %s/%s: %v", ErrRateUnavailable, symbol, vsCurrency, err)
	}
	return price, nil
}

// fiatRate resolves fiat pairs against the static table pivoted on EUR.
func (s *service) fiatRate(from, to string) (float64, error) {
	fromRate, ok := staticFiatRates[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := staticFiatRates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	return toRate / fromRate, nil
}
