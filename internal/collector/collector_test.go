package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/series"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSV(t *testing.T) (string, *series.CSVStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bitcoin.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Close\n01-01-2025,50000\n"), 0o644))
	return path, series.NewCSVStore(path)
}

func TestCollector_UpdateToday(t *testing.T) {
	path, store := newCSV(t)
	fetcher := &MockFetcher{Price: decimal.RequireFromString("50300.25")}
	rec := metrics.New()
	c := NewCollector(fetcher, store, nil, rec)
	c.Now = func() time.Time { return time.Date(2025, 1, 2, 18, 30, 0, 0, time.UTC) }

	p, ok, err := c.UpdateToday(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "02-01-2025", p.DateKey())

	_, ok, err = c.UpdateToday(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "second run on the same day must not append")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Close\n01-01-2025,50000\n02-01-2025,50300.25\n", string(raw))
	assert.Equal(t, 2, fetcher.Calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Appends("appended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Appends("skipped")))
}

func TestCollector_FetchError(t *testing.T) {
	_, store := newCSV(t)
	c := NewCollector(&MockFetcher{Err: errors.New("boom")}, store, nil, nil)

	_, _, err := c.UpdateToday(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCollector_RejectsNonPositive(t *testing.T) {
	_, store := newCSV(t)
	c := NewCollector(&MockFetcher{Price: decimal.Zero}, store, nil, nil)

	_, _, err := c.UpdateToday(context.Background())
	assert.Error(t, err)
}

func TestCollector_StorageError(t *testing.T) {
	store := series.NewCSVStore(filepath.Join(t.TempDir(), "missing.csv"))
	c := NewCollector(&MockFetcher{Price: decimal.NewFromInt(1)}, store, nil, nil)

	_, _, err := c.UpdateToday(context.Background())
	assert.ErrorIs(t, err, series.ErrStorageUnavailable)
}

func TestCoinGeckoFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":97123.45}}`))
	}))
	defer srv.Close()

	price, err := NewCoinGeckoFetcher(srv.URL, "", time.Second).FetchClose(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("97123.45")))
}

func TestCoinGeckoFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"missing price", http.StatusOK, `{"ethereum":{"usd":1}}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewCoinGeckoFetcher(srv.URL, "", time.Second).FetchClose(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestYahooFetcher_SkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BTC-USD", r.URL.Path)
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1,2,3],
			"indicators":{"quote":[{"close":[100.5,101.25,null]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	price, err := NewYahooFetcher(srv.URL, "", time.Second).FetchClose(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("101.25")))
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahooFetcher(srv.URL, "", time.Second).FetchClose(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestBinanceFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"96000.01000000"}`))
	}))
	defer srv.Close()

	price, err := NewBinanceFetcher(srv.URL, time.Second).FetchClose(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("96000.01")))
}

func TestNewFetcher(t *testing.T) {
	for source, name := range map[string]string{"": "coingecko", "coingecko": "coingecko", "yahoo": "yahoo", "binance": "binance"} {
		f, err := NewFetcher(Config{Source: source})
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}
	_, err := NewFetcher(Config{Source: "kraken"})
	assert.Error(t, err)
}

func TestCollector_Summary(t *testing.T) {
	_, store := newCSV(t)
	c := NewCollector(&MockFetcher{Price: decimal.NewFromInt(51000)}, store, nil, nil)
	c.Now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	_, _, err := c.UpdateToday(context.Background())
	require.NoError(t, err)

	sum, err := c.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Latest.Close.Equal(decimal.NewFromInt(51000)))
	assert.True(t, sum.Low30.Equal(decimal.NewFromInt(50000)))
	assert.False(t, sum.HasSMA7)
}
