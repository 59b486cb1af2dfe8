package strategy

import (
	"testing"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDetermineSignal(t *testing.T) {
	cases := []struct {
		latest, next string
		want         model.Signal
	}{
		{"100", "100.5", model.SignalHold}, // exactly at threshold
		{"100", "100.51", model.SignalBuy},
		{"100", "99", model.SignalHold},
		{"100", "100", model.SignalHold},
		{"50000", "50250", model.SignalHold},
		{"50000", "50300", model.SignalBuy},
		{"0.1", "0.1005", model.SignalHold},
		{"0.1", "0.10051", model.SignalBuy},
	}
	for _, c := range cases {
		got := DetermineSignal(d(c.latest), d(c.next))
		if got != c.want {
			t.Errorf("DetermineSignal(%s, %s) = %s, want %s", c.latest, c.next, got, c.want)
		}
	}
}

// A collapsing forecast still yields hold: there is no sell signal.
func TestDetermineSignal_NoSellSignal(t *testing.T) {
	for _, next := range []string{"99.49", "50", "0.01"} {
		got := DetermineSignal(d("100"), d(next))
		if got != model.SignalHold {
			t.Errorf("DetermineSignal(100, %s) = %s, want hold", next, got)
		}
	}
}

func TestSignalTitle(t *testing.T) {
	if got := model.SignalBuy.Title(); got != "Buy" {
		t.Errorf("Title() = %q, want Buy", got)
	}
	if got := model.SignalHold.Title(); got != "Hold" {
		t.Errorf("Title() = %q, want Hold", got)
	}
}
