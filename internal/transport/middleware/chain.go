package middleware

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/geo-explorer/internal/config"
	"github.com/heartmarshall/geo-explorer/internal/observability"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middleware into a single Middleware.
// Middleware are applied in the order given: Chain(mw1, mw2)(handler)
// results in mw1(mw2(handler)), so mw1 executes first (outermost).
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// Stack is the middleware every API request passes through:
// RequestID, Logger, Metrics, Recovery, CORS. Recovery sits inside Logger
// and Metrics so a recovered panic is logged and counted as a 500.
// m may be nil.
func Stack(logger *slog.Logger, m *observability.Metrics, cors config.CORSConfig) Middleware {
	return Chain(
		RequestID(),
		Logger(logger),
		Metrics(m),
		Recovery(logger),
		CORS(cors),
	)
}
