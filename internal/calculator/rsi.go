package calculator

import (
	"errors"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RSI computes the Wilder-smoothed relative strength index of the closes.
// Fewer than period+1 points give the neutral 50; a window without losses
// gives 100.
func RSI(points []model.PricePoint, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(points) < period+1 {
		return 50, nil
	}

	n := decimal.NewFromInt(int64(period))
	avgGain, avgLoss := decimal.Zero, decimal.Zero
	for i := 1; i <= period; i++ {
		gain, loss := move(points[i-1], points[i])
		avgGain = avgGain.Add(gain)
		avgLoss = avgLoss.Add(loss)
	}
	avgGain = avgGain.Div(n)
	avgLoss = avgLoss.Div(n)

	keep := n.Sub(decimal.NewFromInt(1))
	for i := period + 1; i < len(points); i++ {
		gain, loss := move(points[i-1], points[i])
		avgGain = avgGain.Mul(keep).Add(gain).Div(n)
		avgLoss = avgLoss.Mul(keep).Add(loss).Div(n)
	}

	if avgLoss.IsZero() {
		return 100, nil
	}
	rs := avgGain.Div(avgLoss)
	return hundred.Sub(hundred.Div(rs.Add(decimal.NewFromInt(1)))).InexactFloat64(), nil
}

// move splits the close-to-close change into its gain and loss parts.
func move(prev, cur model.PricePoint) (gain, loss decimal.Decimal) {
	change := cur.Close.Sub(prev.Close)
	if change.IsPositive() {
		return change, decimal.Zero
	}
	return decimal.Zero, change.Neg()
}
