package collector

import (
	"context"
	"fmt"
	"time"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/series"
)

// Config selects the price source used by the daily update.
type Config struct {
	Source   string        `yaml:"source" default:"coingecko" validate:"oneof=coingecko yahoo binance"`
	BaseURL  string        `yaml:"base_url"`
	ProxyURL string        `yaml:"proxy_url"`
	Timeout  time.Duration `yaml:"timeout" default:"30s"`
}

// NewFetcher returns the fetcher named by cfg.Source.
func NewFetcher(cfg Config) (Fetcher, error) {
	switch cfg.Source {
	case "", "coingecko":
		return NewCoinGeckoFetcher(cfg.BaseURL, cfg.ProxyURL, cfg.Timeout), nil
	case "yahoo":
		return NewYahooFetcher(cfg.BaseURL, cfg.ProxyURL, cfg.Timeout), nil
	case "binance":
		return NewBinanceFetcher(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Source)
	}
}

// Collector appends the current day's close to the historical series.
type Collector struct {
	Fetcher Fetcher
	Store   series.Store
	Now     func() time.Time

	log     *logger.Logger
	metrics *metrics.Recorder
}

// NewCollector creates a Collector. log and rec may be nil.
func NewCollector(fetcher Fetcher, store series.Store, log *logger.Logger, rec *metrics.Recorder) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		Fetcher: fetcher,
		Store:   store,
		Now:     time.Now,
		log:     log.With("collector"),
		metrics: rec,
	}
}

// UpdateToday fetches the latest price and stores it under today's UTC date.
// It returns the point and whether it was written; an existing date is left as is.
func (c *Collector) UpdateToday(ctx context.Context) (model.PricePoint, bool, error) {
	p := model.PricePoint{Date: model.Day(c.Now().UTC())}

	price, err := c.Fetcher.FetchClose(ctx)
	if err != nil {
		c.metrics.RecordError("price_fetch")
		return p, false, fmt.Errorf("fetch close from %s: %w", c.Fetcher.Name(), err)
	}
	if !price.IsPositive() {
		c.metrics.RecordError("price_fetch")
		return p, false, fmt.Errorf("fetch close from %s: non-positive price %s", c.Fetcher.Name(), price)
	}
	p.Close = price

	ok, err := c.Store.AppendIfAbsent(ctx, p)
	if err != nil {
		c.metrics.RecordError("storage_unavailable")
		return p, false, err
	}

	if ok {
		c.metrics.RecordAppend("appended")
		c.log.Info("series updated",
			logger.String("date", p.DateKey()),
			logger.String("close", price.String()),
			logger.String("source", c.Fetcher.Name()))
	} else {
		c.metrics.RecordAppend("skipped")
		c.log.Info("data for today already exists", logger.String("date", p.DateKey()))
	}
	return p, ok, nil
}

// Summary reads the stored series and computes its recent statistics.
func (c *Collector) Summary(ctx context.Context) (calculator.Summary, error) {
	points, err := c.Store.Read(ctx)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(points)
}
