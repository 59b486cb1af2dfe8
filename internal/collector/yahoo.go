package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher reads the last daily close from the Yahoo Finance chart API.
type YahooFetcher struct {
	client *resty.Client
	Ticker string
}

// NewYahooFetcher creates a Yahoo Finance fetcher for BTC-USD.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooFetcher{
		client: newHTTPClient(baseURL, proxyURL, timeout),
		Ticker: "BTC-USD",
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the part of the chart API response we read.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchClose(ctx context.Context) (decimal.Decimal, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"interval": "1d", "range": "5d"}).
		Get("/v8/finance/chart/" + url.PathEscape(f.Ticker))
	if err != nil {
		return decimal.Zero, fmt.Errorf("yahoo fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return decimal.Zero, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return decimal.Zero, fmt.Errorf("yahoo: no data returned")
	}

	// Walk back past null bars to the most recent close.
	closes := chart.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return decimal.NewFromFloat(*closes[i]), nil
		}
	}
	return decimal.Zero, fmt.Errorf("yahoo: no price data")
}
