package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

const binanceSymbol = "BTCUSDT"

// BinanceFetcher reads the BTCUSDT spot price from Binance public endpoints.
type BinanceFetcher struct {
	client *binance.Client
}

// NewBinanceFetcher creates a keyless spot client. An empty baseURL keeps the
// library default.
func NewBinanceFetcher(baseURL string, timeout time.Duration) *BinanceFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &BinanceFetcher{client: client}
}

func (f *BinanceFetcher) Name() string { return "binance" }

func (f *BinanceFetcher) FetchClose(ctx context.Context) (decimal.Decimal, error) {
	prices, err := f.client.NewListPricesService().Symbol(binanceSymbol).Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return decimal.Zero, fmt.Errorf("binance api error %d: %s", apiErr.Code, apiErr.Message)
		}
		return decimal.Zero, fmt.Errorf("binance fetch: %w", err)
	}
	for _, p := range prices {
		if p.Symbol != binanceSymbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("binance price %q: %w", p.Price, err)
		}
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("binance: no %s price returned", binanceSymbol)
}
