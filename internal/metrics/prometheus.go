package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the pipeline's Prometheus metrics on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	intents     *prometheus.CounterVec
	appends     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	latestPrice prometheus.Gauge
}

// New creates a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_predictions_total",
				Help: "Predictions served, by signal",
			},
			[]string{"signal"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_errors_total",
				Help: "Errors encountered, by kind",
			},
			[]string{"kind"},
		),
		intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_intents_total",
				Help: "Classified conversational messages, by intent",
			},
			[]string{"intent"},
		),
		appends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_series_appends_total",
				Help: "Daily series update attempts, by result",
			},
			[]string{"result"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		latestPrice: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_latest_price",
				Help: "Latest observed closing price",
			},
		),
	}
}

// Nop returns nil; every Recorder method is safe on a nil receiver.
func Nop() *Recorder { return nil }

func (r *Recorder) RecordPrediction(signal string) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(signal).Inc()
}

func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordIntent(intent string) {
	if r == nil {
		return
	}
	r.intents.WithLabelValues(intent).Inc()
}

func (r *Recorder) RecordAppend(result string) {
	if r == nil {
		return
	}
	r.appends.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordLatestPrice(price float64) {
	if r == nil {
		return
	}
	r.latestPrice.Set(price)
}

// Gatherer returns the registry for tests and exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

// Errors returns the error counter for kind. On a nil Recorder it returns
// a detached counter that stays at zero.
func (r *Recorder) Errors(kind string) prometheus.Counter {
	if r == nil {
		return detachedCounter("sentinel_errors_total")
	}
	return r.errorsTotal.WithLabelValues(kind)
}

// Intents returns the intent counter for intent.
func (r *Recorder) Intents(intent string) prometheus.Counter {
	if r == nil {
		return detachedCounter("sentinel_intents_total")
	}
	return r.intents.WithLabelValues(intent)
}

// Appends returns the series append counter for result.
func (r *Recorder) Appends(result string) prometheus.Counter {
	if r == nil {
		return detachedCounter("sentinel_series_appends_total")
	}
	return r.appends.WithLabelValues(result)
}

// LatestPrice returns the latest price gauge.
func (r *Recorder) LatestPrice() prometheus.Gauge {
	if r == nil {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: "sentinel_latest_price"})
	}
	return r.latestPrice
}

func detachedCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: name})
}
