package notifier

import (
	"fmt"
	"strings"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"
)

// FormatDailyUpdate renders the report sent after the scheduled series update.
func FormatDailyUpdate(p model.PricePoint, appended bool, err error) string {
	var b strings.Builder
	b.WriteString("Daily Bitcoin series update\n")
	fmt.Fprintf(&b, "- Date: %s\n", p.DateKey())
	switch {
	case err != nil:
		fmt.Fprintf(&b, "- Status: failed (%v)", err)
	case appended:
		fmt.Fprintf(&b, "- Close: $%s\n", p.Close.StringFixed(2))
		b.WriteString("- Status: updated")
	default:
		b.WriteString("- Status: already up to date")
	}
	return b.String()
}

// FormatSeriesSummary renders the recent statistics appended to the daily report.
func FormatSeriesSummary(s calculator.Summary) string {
	var b strings.Builder
	b.WriteString("Series overview\n")
	fmt.Fprintf(&b, "- Last close: $%s (%s)\n", s.Latest.Close.StringFixed(2), s.Latest.DateKey())
	if s.HasSMA7 {
		fmt.Fprintf(&b, "- 7-day average: $%s\n", s.SMA7.StringFixed(2))
	}
	fmt.Fprintf(&b, "- 30-day range: $%s - $%s (position %.0f%%)\n",
		s.Low30.StringFixed(2), s.High30.StringFixed(2), s.Position30*100)
	fmt.Fprintf(&b, "- RSI(14): %.1f", s.RSI14)
	return b.String()
}
