package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/geo-explorer/internal/config"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Search *SearchHandler
	Local  *LocalHandler
	Health *HealthHandler

	CORS    config.CORSConfig
	Metrics config.MetricsConfig
	// Gatherer serves the metrics endpoint; nil disables it.
	Gatherer  prometheus.Gatherer
	Collector *observability.Metrics
	Logger    *slog.Logger
}

// NewRouter builds the HTTP API:
//
//	/api/search/...   lookup and weather
//	/api/local/...    stored catalog and imports
//	/live /ready /health
//	metrics path      prometheus exposition
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Stack(d.Logger, d.Collector, d.CORS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)

	if d.Metrics.Enabled && d.Gatherer != nil {
		r.Method(http.MethodGet, d.Metrics.Path, promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/search", d.Search.Register)
	r.Route("/api/local", d.Local.Register)

	return r
}
