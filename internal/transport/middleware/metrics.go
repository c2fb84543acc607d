package middleware

import (
	"net/http"
	"time"

	"github.com/heartmarshall/geo-explorer/internal/observability"
)

// unmatchedRoute labels requests that matched no route, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics returns middleware that records request counts and durations per
// route pattern. m may be nil.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := routePattern(r)
			if route == "" {
				route = unmatchedRoute
			}
			m.ObserveHTTP(r.Method, route, sw.status, time.Since(start).Seconds())
		})
	}
}
