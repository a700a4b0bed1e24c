package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// coinIDs maps ticker symbols to the market-data API's coin ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"MATIC": "matic-network",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
}

// MarketDataClient fetches crypto prices from a CoinGecko-compatible
// simple-price endpoint.
type MarketDataClient struct {
	baseURL string
	client  *http.Client
}

// NewMarketDataClient creates a market-data client. An empty baseURL
// uses the public CoinGecko API.
func NewMarketDataClient(baseURL string) *MarketDataClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &MarketDataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultLookupTimeout},
	}
}

func (c *MarketDataClient) GetPrice(ctx context.Context, symbol, vsCurrency string) (float64, error) {
	coinID, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("unsupported crypto symbol %q", symbol)
	}
	vs := strings.ToLower(vsCurrency)

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(coinID), url.QueryEscape(vs))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("market data returned status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode market data response: %w", err)
	}

	price, ok := payload[coinID][vs]
	if !ok {
		return 0, fmt.Errorf("no price for %s/%s in response", coinID, vs)
	}
	return price, nil
}

// StaticProvider serves prices from a fixed table. Used in tests and
// as an offline fallback provider.
type StaticProvider struct {
	Prices map[string]float64 // key: "SYMBOL/VS"
}

// NewStaticProvider creates a static provider seeded with approximate
// USD prices for the supported cryptos. Suitable for development only.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{Prices: map[string]float64{
		"BTC/USD":   40000,
		"ETH/USD":   2500,
		"USDT/USD":  1,
		"USDC/USD":  1,
		"BNB/USD":   300,
		"SOL/USD":   100,
		"MATIC/USD": 0.8,
		"ADA/USD":   0.5,
		"XRP/USD":   0.6,
		"DOT/USD":   7,
	}}
}

func (p *StaticProvider) GetPrice(ctx context.Context, symbol, vsCurrency string) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	key := strings.ToUpper(symbol) + "/" + strings.ToUpper(vsCurrency)
	price, ok := p.Prices[key]
	if !ok {
		return 0, fmt.Errorf("no static price for %s", key)
	}
	return price, nil
}

var _ RateProvider = (*MarketDataClient)(nil)
var _ RateProvider = (*StaticProvider)(nil)
