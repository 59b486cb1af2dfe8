package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/series"
	"PriceSentinel/internal/strategy"
)

// Horizon is the number of daily steps requested from the forecaster.
const Horizon = 7

// Levels are the confidence levels requested from the forecaster.
var Levels = []int{50, 80, 90}

// ErrInsufficientHistory means the series holds no points to forecast from.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Source yields a prediction artifact, either computed locally or fetched
// from a remote prediction service.
type Source interface {
	GetPrediction(ctx context.Context) (*model.PredictionArtifact, error)
}

// Service assembles predictions from the series store, the forecaster and the
// signal engine. It holds no state between calls.
type Service struct {
	store      series.Store
	forecaster forecast.Client
	log        *logger.Logger
	metrics    *metrics.Recorder
}

// NewService wires a Service. log and rec may be nil.
func NewService(store series.Store, forecaster forecast.Client, log *logger.Logger, rec *metrics.Recorder) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:      store,
		forecaster: forecaster,
		log:        log.With("prediction"),
		metrics:    rec,
	}
}

func (s *Service) GetPrediction(ctx context.Context) (*model.PredictionArtifact, error) {
	start := time.Now()
	artifact, err := s.predict(ctx)
	s.metrics.RecordLatency("predict", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError(ErrorKind(err))
		s.log.Error("prediction failed", logger.Error(err), logger.Duration("elapsed_ms", time.Since(start)))
		return nil, err
	}

	s.metrics.RecordPrediction(string(artifact.Signal))
	s.metrics.RecordLatestPrice(artifact.LatestPrice.InexactFloat64())
	s.log.Info("prediction ready",
		logger.String("latest_date", artifact.LatestDate.Format(model.DateLayout)),
		logger.String("latest_price", artifact.LatestPrice.String()),
		logger.String("next_point", artifact.NextStep.Point.String()),
		logger.String("signal", string(artifact.Signal)),
		logger.Duration("elapsed_ms", time.Since(start)))
	return artifact, nil
}

func (s *Service) predict(ctx context.Context) (*model.PredictionArtifact, error) {
	points, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrInsufficientHistory
	}
	latest := points[len(points)-1]

	steps, err := s.forecaster.Forecast(ctx, model.ForecastRequest{
		Series:  points,
		Horizon: Horizon,
		Levels:  Levels,
	})
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("forecast: %w: no steps returned", forecast.ErrForecastUnavailable)
	}
	next := steps[0]

	return &model.PredictionArtifact{
		LatestDate:  latest.Date,
		LatestPrice: latest.Close,
		NextStep:    next,
		Signal:      strategy.DetermineSignal(latest.Close, next.Point),
	}, nil
}

// ErrorKind names the failure class of err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, series.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, forecast.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, forecast.ErrForecastUnavailable):
		return "forecast_unavailable"
	default:
		return "internal"
	}
}
