package collector

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Fetcher returns today's closing (latest) BTC/USD price from one source.
type Fetcher interface {
	FetchClose(ctx context.Context) (decimal.Decimal, error)
	Name() string
}

// newHTTPClient builds the resty client shared by the HTTP fetchers.
func newHTTPClient(baseURL, proxyURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return client
}

// MockFetcher returns a fixed price, or Err when set.
type MockFetcher struct {
	Price decimal.Decimal
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchClose(_ context.Context) (decimal.Decimal, error) {
	m.Calls++
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	return m.Price, nil
}
