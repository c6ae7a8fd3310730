// Package metrics provides Prometheus metrics for the Entur departures client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
)

// Metrics holds all Prometheus metrics for one client instance.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance.
	// It is nil when the collectors were attached to a caller's registerer.
	Registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Normalization metrics
	PlacesNormalized      prometheus.Counter
	NormalizationFailures prometheus.Counter

	// LastSuccessfulUpdate is the Unix time of the last successful departures update.
	LastSuccessfulUpdate prometheus.Gauge
}

// New creates and registers all client metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := newMetrics()
	m.Registry = registry
	m.mustRegister(registry)
	return m
}

// NewWithRegisterer creates the client metrics and registers them with reg.
// Registration errors (e.g. two clients on one registry) are returned.
func NewWithRegisterer(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return New(), nil
	}
	m := newMetrics()
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enturclient_requests_total",
				Help: "Total number of GraphQL requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "enturclient_request_duration_seconds",
				Help:    "GraphQL request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		PlacesNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enturclient_places_normalized_total",
			Help: "Number of place records normalized from responses",
		}),
		NormalizationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enturclient_normalization_failures_total",
			Help: "Number of place records skipped because a required field was missing",
		}),
		LastSuccessfulUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enturclient_last_successful_update_timestamp_seconds",
			Help: "Unix time of the last successful departures update",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.PlacesNormalized,
		m.NormalizationFailures,
		m.LastSuccessfulUpdate,
	}
}

func (m *Metrics) mustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.collectors()...)
}

// ObserveRequest records one finished request. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind, outcome).Inc()
	m.RequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveNormalization records the result of normalizing one response.
func (m *Metrics) ObserveNormalization(accepted, rejected int) {
	if m == nil {
		return
	}
	m.PlacesNormalized.Add(float64(accepted))
	m.NormalizationFailures.Add(float64(rejected))
}

// MarkUpdated sets the last successful update gauge.
func (m *Metrics) MarkUpdated(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccessfulUpdate.Set(float64(at.Unix()))
}
