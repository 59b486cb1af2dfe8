package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"PriceSentinel/internal/model"
)

var (
	// ErrForecastUnavailable covers transport failures, timeouts and
	// responses that fail validation.
	ErrForecastUnavailable = errors.New("forecast unavailable")
	// ErrInvalidRequest means the request broke a precondition and was not sent.
	ErrInvalidRequest = errors.New("invalid forecast request")
)

// Client produces horizon steps for a price series. Implementations do not retry.
type Client interface {
	Forecast(ctx context.Context, req model.ForecastRequest) ([]model.ForecastStep, error)
}

// CheckRequest validates the request preconditions.
func CheckRequest(req model.ForecastRequest) error {
	if len(req.Series) == 0 {
		return fmt.Errorf("%w: empty series", ErrInvalidRequest)
	}
	for i := 1; i < len(req.Series); i++ {
		if !req.Series[i].Date.After(req.Series[i-1].Date) {
			return fmt.Errorf("%w: series not ascending at %s", ErrInvalidRequest, req.Series[i].DateKey())
		}
	}
	if req.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d", ErrInvalidRequest, req.Horizon)
	}
	for _, lvl := range req.Levels {
		if lvl <= 0 || lvl >= 100 {
			return fmt.Errorf("%w: level %d outside (0,100)", ErrInvalidRequest, lvl)
		}
	}
	return nil
}

// Validate checks every step carries a band for each level, that each band
// contains the point estimate, and that wider levels contain narrower ones.
func Validate(steps []model.ForecastStep, levels []int) error {
	sorted := append([]int(nil), levels...)
	sort.Ints(sorted)

	for i, step := range steps {
		if step.Date.IsZero() {
			return fmt.Errorf("step %d: missing date", i)
		}
		var prev *model.Interval
		for _, lvl := range sorted {
			band, ok := step.Intervals[lvl]
			if !ok {
				return fmt.Errorf("step %d: missing %d%% interval", i, lvl)
			}
			if band.Low.GreaterThan(step.Point) || band.High.LessThan(step.Point) {
				return fmt.Errorf("step %d: %d%% interval [%s, %s] excludes point %s",
					i, lvl, band.Low, band.High, step.Point)
			}
			if prev != nil && !band.Contains(*prev) {
				return fmt.Errorf("step %d: %d%% interval narrower than lower level", i, lvl)
			}
			b := band
			prev = &b
		}
	}
	return nil
}
