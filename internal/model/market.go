package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the dataset date key format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// PricePoint is one daily close in the historical series.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// DateKey returns the dataset key for the point's date.
func (p PricePoint) DateKey() string {
	return p.Date.Format(DateLayout)
}

// Day truncates t to a UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDateKey parses a DD-MM-YYYY dataset key.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
