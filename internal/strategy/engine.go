package strategy

import (
	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// BuyThreshold is the ratio the next-step forecast must exceed over the
// latest close to produce a buy (0.5% above).
var BuyThreshold = decimal.RequireFromString("1.005")

// DetermineSignal maps the latest close and the next-step point estimate to a
// signal. Only buy and hold exist; a falling forecast is a hold.
func DetermineSignal(latest, next decimal.Decimal) model.Signal {
	if next.GreaterThan(latest.Mul(BuyThreshold)) {
		return model.SignalBuy
	}
	return model.SignalHold
}
