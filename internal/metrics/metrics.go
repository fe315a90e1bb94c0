package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Identity resolution outcomes.
const (
	OutcomeEmail    = "email"
	OutcomeUsername = "username"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for the server.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Identity resolution outcomes by the candidate kind that matched
	IdentityResolutions *prometheus.CounterVec

	// Number of documents returned per document request
	DocumentsServed prometheus.Histogram
}

// New creates and registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "documite_http_requests_total",
			Help: "Total HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "documite_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),

		IdentityResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "documite_identity_resolutions_total",
			Help: "Identity resolution outcomes by matching claim kind",
		}, []string{"outcome"}), // outcome: "email", "username", "not_found", "error"

		DocumentsServed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "documite_documents_served",
			Help:    "Number of documents returned per document request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
}

// NewWithRuntime creates a registry with Go runtime and process collectors
// and registers the application metrics on it.
func NewWithRuntime() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncResolution records an identity resolution outcome.
func (m *Metrics) IncResolution(outcome string) {
	if m != nil {
		m.IdentityResolutions.WithLabelValues(outcome).Inc()
	}
}

// ObserveDocumentsServed records how many documents a request returned.
func (m *Metrics) ObserveDocumentsServed(n int) {
	if m != nil {
		m.DocumentsServed.Observe(float64(n))
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
