package calculator

import (
	"errors"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNotEnoughData is returned when the series is shorter than the window.
var ErrNotEnoughData = errors.New("not enough data")

// SMA computes the simple moving average of the last period closes.
func SMA(points []model.PricePoint, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, errors.New("period must be positive")
	}
	if len(points) < period {
		return decimal.Zero, ErrNotEnoughData
	}
	sum := decimal.Zero
	for _, p := range points[len(points)-period:] {
		sum = sum.Add(p.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(period))), nil
}
