package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastRequest is the input to the forecasting capability.
type ForecastRequest struct {
	Series  []PricePoint
	Horizon int
	Levels  []int // confidence percentages, e.g. 50, 80, 90
}

// Interval is a (low, high) band for one confidence level.
type Interval struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// Contains reports whether other lies inside i.
func (i Interval) Contains(other Interval) bool {
	return i.Low.LessThanOrEqual(other.Low) && i.High.GreaterThanOrEqual(other.High)
}

// ForecastStep is one future step returned by the forecaster.
type ForecastStep struct {
	Date      time.Time
	Point     decimal.Decimal
	Intervals map[int]Interval // keyed by confidence level
}
