package prediction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/series"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForecaster struct {
	point decimal.Decimal
	err   error
	got   model.ForecastRequest
}

func (s *stubForecaster) Forecast(_ context.Context, req model.ForecastRequest) ([]model.ForecastStep, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	last := req.Series[len(req.Series)-1].Date
	steps := make([]model.ForecastStep, req.Horizon)
	for i := range steps {
		steps[i] = stepAt(last.AddDate(0, 0, i+1), s.point)
	}
	return steps, nil
}

func stepAt(date time.Time, point decimal.Decimal) model.ForecastStep {
	bands := map[int]model.Interval{}
	for _, lvl := range Levels {
		w := decimal.NewFromInt(int64(lvl * 2))
		bands[lvl] = model.Interval{Low: point.Sub(w), High: point.Add(w)}
	}
	return model.ForecastStep{Date: date, Point: point, Intervals: bands}
}

type stubStore struct {
	points []model.PricePoint
	err    error
}

func (s *stubStore) Read(context.Context) ([]model.PricePoint, error) { return s.points, s.err }
func (s *stubStore) AppendIfAbsent(context.Context, model.PricePoint) (bool, error) {
	return false, errors.New("read-only")
}
func (s *stubStore) Close() error { return nil }

func TestService_OneRowSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcoin.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Close\n01-01-2025,50000\n"), 0o644))

	fc := &stubForecaster{point: decimal.NewFromInt(50300)}
	rec := metrics.New()
	svc := NewService(series.NewCSVStore(path), fc, nil, rec)

	a, err := svc.GetPrediction(context.Background())
	require.NoError(t, err)

	// 50300 > 50000 * 1.005 = 50250
	assert.Equal(t, model.SignalBuy, a.Signal)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), a.LatestDate)
	assert.True(t, a.LatestPrice.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), a.NextStep.Date)

	assert.Equal(t, Horizon, fc.got.Horizon)
	assert.Equal(t, []int{50, 80, 90}, fc.got.Levels)
	assert.Len(t, fc.got.Series, 1)

	assert.Equal(t, 50000.0, testutil.ToFloat64(rec.LatestPrice()))
}

func TestService_HoldAtBoundary(t *testing.T) {
	store := &stubStore{points: []model.PricePoint{
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(50000)},
	}}
	svc := NewService(store, &stubForecaster{point: decimal.NewFromInt(50250)}, nil, nil)

	a, err := svc.GetPrediction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SignalHold, a.Signal)
}

func TestService_UsesLastPoint(t *testing.T) {
	store := &stubStore{points: []model.PricePoint{
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(10)},
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(100)},
	}}
	svc := NewService(store, &stubForecaster{point: decimal.NewFromInt(100)}, nil, nil)

	a, err := svc.GetPrediction(context.Background())
	require.NoError(t, err)
	assert.True(t, a.LatestPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, model.SignalHold, a.Signal)
}

func TestService_Errors(t *testing.T) {
	storageErr := fmt.Errorf("%w: open: no such file", series.ErrStorageUnavailable)
	forecastErr := fmt.Errorf("%w: status 500", forecast.ErrForecastUnavailable)
	one := []model.PricePoint{{Date: time.Now().UTC(), Close: decimal.NewFromInt(1)}}

	tests := []struct {
		name  string
		store *stubStore
		fc    *stubForecaster
		want  error
		kind  string
	}{
		{"empty series", &stubStore{}, &stubForecaster{}, ErrInsufficientHistory, "insufficient_history"},
		{"storage", &stubStore{err: storageErr}, &stubForecaster{}, series.ErrStorageUnavailable, "storage_unavailable"},
		{"forecast", &stubStore{points: one}, &stubForecaster{err: forecastErr}, forecast.ErrForecastUnavailable, "forecast_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := metrics.New()
			svc := NewService(tt.store, tt.fc, nil, rec)

			a, err := svc.GetPrediction(context.Background())
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, ErrorKind(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(rec.Errors(tt.kind)))
		})
	}
}
