package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Wire keys of the next-step record. They mirror the forecaster's column names.
const (
	KeyDate  = "ds"
	KeyPoint = "TimeGPT"

	lowPrefix  = KeyPoint + "-lo-"
	highPrefix = KeyPoint + "-hi-"
	dsLayout   = "2006-01-02"
)

// ErrMalformedPayload means a prediction payload is missing or has bad fields.
var ErrMalformedPayload = errors.New("malformed prediction payload")

// LowKey returns the wire key of the lower bound at level, e.g. "TimeGPT-lo-50".
func LowKey(level int) string { return lowPrefix + strconv.Itoa(level) }

// HighKey returns the wire key of the upper bound at level, e.g. "TimeGPT-hi-50".
func HighKey(level int) string { return highPrefix + strconv.Itoa(level) }

// Payload is the JSON body served by GET /predict.
type Payload struct {
	LatestDate        string                 `json:"latest_date"`
	LatestPrice       json.Number            `json:"latest_price"`
	NextDayPrediction map[string]interface{} `json:"next_day_prediction"`
	Signal            string                 `json:"signal"`
}

// EncodePayload renders an artifact with its wire keys.
func EncodePayload(a *model.PredictionArtifact) Payload {
	next := map[string]interface{}{
		KeyDate:  a.NextStep.Date.Format(dsLayout),
		KeyPoint: number(a.NextStep.Point),
	}
	for lvl, band := range a.NextStep.Intervals {
		next[LowKey(lvl)] = number(band.Low)
		next[HighKey(lvl)] = number(band.High)
	}
	return Payload{
		LatestDate:        a.LatestDate.Format(model.DateLayout),
		LatestPrice:       number(a.LatestPrice),
		NextDayPrediction: next,
		Signal:            string(a.Signal),
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type rawPayload struct {
	LatestDate        *string                    `json:"latest_date"`
	LatestPrice       *decimal.Decimal           `json:"latest_price"`
	NextDayPrediction map[string]json.RawMessage `json:"next_day_prediction"`
	Signal            *string                    `json:"signal"`
}

// DecodePayload parses and validates a prediction payload. The point
// estimate and the 50% band are required; other levels are taken as present.
func DecodePayload(data []byte) (*model.PredictionArtifact, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("decode: %v", err)
	}
	if raw.LatestDate == nil || raw.LatestPrice == nil || raw.Signal == nil || raw.NextDayPrediction == nil {
		return nil, malformed("missing top-level field")
	}

	latestDate, err := model.ParseDateKey(*raw.LatestDate)
	if err != nil {
		return nil, malformed("latest_date %q", *raw.LatestDate)
	}
	signal := model.Signal(strings.ToLower(*raw.Signal))
	if signal != model.SignalBuy && signal != model.SignalHold {
		return nil, malformed("unknown signal %q", *raw.Signal)
	}

	step, levels, err := decodeStep(raw.NextDayPrediction)
	if err != nil {
		return nil, err
	}
	if err := forecast.Validate([]model.ForecastStep{step}, levels); err != nil {
		return nil, malformed("%v", err)
	}

	return &model.PredictionArtifact{
		LatestDate:  latestDate,
		LatestPrice: *raw.LatestPrice,
		NextStep:    step,
		Signal:      signal,
	}, nil
}

func decodeStep(fields map[string]json.RawMessage) (model.ForecastStep, []int, error) {
	var step model.ForecastStep

	var ds string
	if err := json.Unmarshal(fields[KeyDate], &ds); err != nil {
		return step, nil, malformed("missing %s", KeyDate)
	}
	date, err := time.ParseInLocation(dsLayout, ds, time.UTC)
	if err != nil {
		return step, nil, malformed("%s %q", KeyDate, ds)
	}
	point, err := decimalField(fields, KeyPoint)
	if err != nil {
		return step, nil, err
	}

	step = model.ForecastStep{Date: date, Point: point, Intervals: map[int]model.Interval{}}
	for key := range fields {
		if !strings.HasPrefix(key, lowPrefix) {
			continue
		}
		lvl, err := strconv.Atoi(strings.TrimPrefix(key, lowPrefix))
		if err != nil {
			return step, nil, malformed("bad level key %q", key)
		}
		low, err := decimalField(fields, key)
		if err != nil {
			return step, nil, err
		}
		high, err := decimalField(fields, HighKey(lvl))
		if err != nil {
			return step, nil, err
		}
		step.Intervals[lvl] = model.Interval{Low: low, High: high}
	}
	if _, ok := step.Intervals[50]; !ok {
		return step, nil, malformed("missing %s", LowKey(50))
	}

	levels := make([]int, 0, len(step.Intervals))
	for lvl := range step.Intervals {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	return step, levels, nil
}

func decimalField(fields map[string]json.RawMessage, key string) (decimal.Decimal, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return decimal.Zero, malformed("missing %s", key)
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, malformed("%s: %v", key, err)
	}
	return d, nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
