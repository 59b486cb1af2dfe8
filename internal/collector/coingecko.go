package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const coinGeckoBaseURL = "https://api.coingecko.com"

// CoinGeckoFetcher reads the spot price from the CoinGecko simple price API.
type CoinGeckoFetcher struct {
	client *resty.Client
}

// NewCoinGeckoFetcher creates a fetcher. An empty baseURL uses the public API.
func NewCoinGeckoFetcher(baseURL, proxyURL string, timeout time.Duration) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoFetcher{client: newHTTPClient(baseURL, proxyURL, timeout)}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

func (f *CoinGeckoFetcher) FetchClose(ctx context.Context) (decimal.Decimal, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           "bitcoin",
			"vs_currencies": "usd",
		}).
		Get("/api/v3/simple/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var result map[string]map[string]json.Number
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko decode: %w", err)
	}
	raw, ok := result["bitcoin"]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: no bitcoin/usd price in response")
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko price %q: %w", raw, err)
	}
	return price, nil
}
