package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom collector of the service.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Store Metrics
	StoreOperationDuration *prometheus.HistogramVec
	StoreOperationErrors   *prometheus.CounterVec

	// Event Metrics
	EventsPublishedTotal *prometheus.CounterVec
	EventsConsumedTotal  *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg. Pass prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Duration of document store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"entity", "operation"},
		),

		StoreOperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operation_errors_total",
				Help: "Total number of failed document store operations",
			},
			[]string{"entity", "operation"},
		),

		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Total number of change events published to the queue",
			},
			[]string{"type", "result"},
		),

		EventsConsumedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_consumed_total",
				Help: "Total number of change events consumed from the queue",
			},
			[]string{"type", "result"},
		),
	}
}

// ObserveStore records one store call. Safe on a nil receiver.
func (m *Metrics) ObserveStore(entity, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StoreOperationDuration.WithLabelValues(entity, operation).Observe(seconds)
	if err != nil {
		m.StoreOperationErrors.WithLabelValues(entity, operation).Inc()
	}
}
