package calculator

import (
	"errors"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Range returns the highest and lowest close over the last days points.
// A shorter series is scanned in full.
func Range(points []model.PricePoint, days int) (high, low decimal.Decimal, err error) {
	if days <= 0 {
		return decimal.Zero, decimal.Zero, errors.New("days must be positive")
	}
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero, ErrNotEnoughData
	}
	start := len(points) - days
	if start < 0 {
		start = 0
	}
	high, low = points[start].Close, points[start].Close
	for _, p := range points[start+1:] {
		high = decimal.Max(high, p.Close)
		low = decimal.Min(low, p.Close)
	}
	return high, low, nil
}

// Position returns where current sits within [low, high], clamped to 0..1.
func Position(current, high, low decimal.Decimal) (float64, error) {
	if high.Equal(low) {
		return 0.5, nil
	}
	if high.LessThan(low) {
		return 0, errors.New("high must be >= low")
	}
	pos := current.Sub(low).Div(high.Sub(low)).InexactFloat64()
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
