package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"PriceSentinel/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://api.nixtla.io"
	isoDay         = "2006-01-02"
)

// Config holds the TimeGPT endpoint settings.
type Config struct {
	BaseURL string        `yaml:"base_url" default:"https://api.nixtla.io"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout" default:"60s"`
}

// TimeGPTClient calls the Nixtla TimeGPT forecast endpoint.
type TimeGPTClient struct {
	client *resty.Client
}

// NewTimeGPTClient creates a client. The resty client never retries.
func NewTimeGPTClient(cfg Config) *TimeGPTClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(0)
	client.SetAuthToken(cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	return &TimeGPTClient{client: client}
}

type timeGPTRequest struct {
	FH    int                `json:"fh"`
	Level []int              `json:"level,omitempty"`
	Freq  string             `json:"freq"`
	Y     map[string]float64 `json:"y"`
}

type timeGPTResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

func (c *TimeGPTClient) Forecast(ctx context.Context, req model.ForecastRequest) ([]model.ForecastStep, error) {
	if err := CheckRequest(req); err != nil {
		return nil, err
	}

	body := timeGPTRequest{
		FH:    req.Horizon,
		Level: req.Levels,
		Freq:  "D",
		Y:     make(map[string]float64, len(req.Series)),
	}
	for _, p := range req.Series {
		body.Y[p.Date.Format(isoDay)] = p.Close.InexactFloat64()
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/timegpt")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrForecastUnavailable, resp.StatusCode(), resp.String())
	}

	var out timeGPTResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrForecastUnavailable, err)
	}
	steps, err := decodeSteps(out.Data, req.Horizon, req.Levels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}
	return steps, nil
}

// decodeSteps turns the columnar response into steps and validates them.
func decodeSteps(data map[string]json.RawMessage, horizon int, levels []int) ([]model.ForecastStep, error) {
	if data == nil {
		return nil, fmt.Errorf("missing data")
	}

	var stamps []string
	if err := column(data, "timestamp", &stamps); err != nil {
		return nil, err
	}
	var values []*decimal.Decimal
	if err := column(data, "value", &values); err != nil {
		return nil, err
	}
	if len(stamps) != horizon || len(values) != horizon {
		return nil, fmt.Errorf("expected %d steps, got %d timestamps and %d values", horizon, len(stamps), len(values))
	}

	steps := make([]model.ForecastStep, horizon)
	for i := range steps {
		date, err := parseStamp(stamps[i])
		if err != nil {
			return nil, fmt.Errorf("timestamp %d: %w", i, err)
		}
		if values[i] == nil {
			return nil, fmt.Errorf("step %d: missing point estimate", i)
		}
		steps[i] = model.ForecastStep{
			Date:      date,
			Point:     *values[i],
			Intervals: make(map[int]model.Interval, len(levels)),
		}
	}

	for _, lvl := range levels {
		var lo, hi []*decimal.Decimal
		if err := column(data, "lo-"+strconv.Itoa(lvl), &lo); err != nil {
			return nil, err
		}
		if err := column(data, "hi-"+strconv.Itoa(lvl), &hi); err != nil {
			return nil, err
		}
		if len(lo) != horizon || len(hi) != horizon {
			return nil, fmt.Errorf("level %d: expected %d bounds", lvl, horizon)
		}
		for i := range steps {
			if lo[i] == nil || hi[i] == nil {
				return nil, fmt.Errorf("step %d: missing %d%% bound", i, lvl)
			}
			steps[i].Intervals[lvl] = model.Interval{Low: *lo[i], High: *hi[i]}
		}
	}

	if err := Validate(steps, levels); err != nil {
		return nil, err
	}
	return steps, nil
}

func column(data map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := data[key]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("missing %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

var stampLayouts = []string{isoDay, "2006-01-02 15:04:05", time.RFC3339}

func parseStamp(s string) (time.Time, error) {
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable %q", s)
}
