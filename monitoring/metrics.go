// Package monitoring exposes service metrics and watches the loaded model artifact.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	predictions       *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	requests          *prometheus.CounterVec
	modelLoaded       prometheus.Gauge
	loadWarnings      prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartrisk",
			Name:      "predictions_total",
			Help:      "Predictions served, by risk label.",
		}, []string{"label"}),
		predictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartrisk",
			Name:      "prediction_errors_total",
			Help:      "Rejected or failed prediction requests, by reason.",
		}, []string{"reason"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heartrisk",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in the classifier.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartrisk",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
		modelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "heartrisk",
			Name:      "model_loaded",
			Help:      "1 when a classifier is loaded, 0 when halted.",
		}),
		loadWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heartrisk",
			Name:      "model_load_warnings_total",
			Help:      "Model candidates that existed but failed to load.",
		}),
	}

	m.registry.MustRegister(
		m.predictions,
		m.predictionErrors,
		m.predictionLatency,
		m.requests,
		m.modelLoaded,
		m.loadWarnings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction records a successful prediction.
func (m *Metrics) ObservePrediction(label string, elapsed time.Duration) {
	m.predictions.WithLabelValues(label).Inc()
	m.predictionLatency.Observe(elapsed.Seconds())
}

// ObservePredictionError records a rejected or failed request.
func (m *Metrics) ObservePredictionError(reason string) {
	m.predictionErrors.WithLabelValues(reason).Inc()
}

// ObserveRequest records one HTTP response.
func (m *Metrics) ObserveRequest(method string, code int) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// SetModelState records the locator outcome.
func (m *Metrics) SetModelState(loaded bool, warnings int) {
	if loaded {
		m.modelLoaded.Set(1)
	} else {
		m.modelLoaded.Set(0)
	}
	m.loadWarnings.Add(float64(warnings))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
