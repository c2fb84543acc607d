package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geo_explorer"

// Gateway request outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for upstream lookups and imports.
type Metrics struct {
	// Upstream gateway metrics.
	GatewayRequests *prometheus.CounterVec   // labels: provider, operation, outcome={success,not_found,error}
	GatewayDuration *prometheus.HistogramVec // labels: provider, operation

	// Import pipeline metrics.
	Imports               *prometheus.CounterVec // labels: kind={continent,country,city}, outcome={created,duplicate,not_found,error}
	ContinentsAutoCreated prometheus.Counter
	CountriesAutoCreated  prometheus.Counter

	// Lookup metrics.
	Searches *prometheus.CounterVec // labels: kind={region,country,city,not_found}

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route
}

// NewMetrics creates all collectors and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Upstream gateway requests by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Upstream gateway request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "operation"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Import requests by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		ContinentsAutoCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "continents_auto_created_total",
			Help:      "Continents created as a side effect of a country or city import.",
		}),
		CountriesAutoCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "countries_auto_created_total",
			Help:      "Countries created as a side effect of a city import.",
		}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Free-text searches by resulting classification.",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.GatewayRequests,
		m.GatewayDuration,
		m.Imports,
		m.ContinentsAutoCreated,
		m.CountriesAutoCreated,
		m.Searches,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// Import outcomes.
const (
	ImportCreated   = "created"
	ImportDuplicate = "duplicate"
	ImportNotFound  = "not_found"
	ImportError     = "error"
)

// ObserveImport records one import request. Safe on a nil receiver.
func (m *Metrics) ObserveImport(kind, outcome string) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(kind, outcome).Inc()
}

// ObserveAutoCreated records an ancestor created as a side effect of an import.
// Safe on a nil receiver.
func (m *Metrics) ObserveAutoCreated(kind string) {
	if m == nil {
		return
	}
	switch kind {
	case "continent":
		m.ContinentsAutoCreated.Inc()
	case "country":
		m.CountriesAutoCreated.Inc()
	}
}

// ObserveSearch records the classification of one free-text search.
// Safe on a nil receiver.
func (m *Metrics) ObserveSearch(kind string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(kind).Inc()
}

// ObserveHTTP records one served HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
