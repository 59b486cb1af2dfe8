package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Signal is the discrete trading recommendation.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalHold Signal = "hold"
)

// Title returns the capitalized signal word ("Buy", "Hold").
func (s Signal) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + strings.ToLower(string(s[1:]))
}

// PredictionArtifact is assembled fresh on every prediction request.
type PredictionArtifact struct {
	LatestDate  time.Time
	LatestPrice decimal.Decimal
	NextStep    ForecastStep
	Signal      Signal
}
