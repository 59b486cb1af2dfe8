package calculator

import (
	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

const (
	smaPeriod = 7
	rangeDays = 30
	rsiPeriod = 14
)

// Summary describes the recent shape of the series for the daily report.
type Summary struct {
	Latest     model.PricePoint
	SMA7       decimal.Decimal
	HasSMA7    bool
	High30     decimal.Decimal
	Low30      decimal.Decimal
	Position30 float64
	RSI14      float64
}

// Summarize computes a Summary over a non-empty series.
func Summarize(points []model.PricePoint) (Summary, error) {
	if len(points) == 0 {
		return Summary{}, ErrNotEnoughData
	}
	s := Summary{Latest: points[len(points)-1]}

	if sma, err := SMA(points, smaPeriod); err == nil {
		s.SMA7, s.HasSMA7 = sma, true
	}

	high, low, err := Range(points, rangeDays)
	if err != nil {
		return Summary{}, err
	}
	s.High30, s.Low30 = high, low
	if s.Position30, err = Position(s.Latest.Close, high, low); err != nil {
		return Summary{}, err
	}

	if s.RSI14, err = RSI(points, rsiPeriod); err != nil {
		return Summary{}, err
	}
	return s, nil
}
