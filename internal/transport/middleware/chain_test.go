package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/heartmarshall/geo-explorer/internal/config"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/pkg/ctxutil"
)

func TestChain_OuterRunsFirst(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+":"+ctxutil.RequestIDFromCtx(r.Context()))
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/search/Europa", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	Chain(tag("before"), RequestID(), tag("after"))(handler).ServeHTTP(httptest.NewRecorder(), req)

	expected := []string{"before:", "after:req-7", "handler"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("order = %v, want %v", order, expected)
	}
}

func TestStack_PanicKeepsRequestIDAndIsObserved(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	m := observability.NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Stack(logger, m, config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET", AllowedHeaders: "Content-Type"}))
	r.Post("/api/local/add-city", func(w http.ResponseWriter, r *http.Request) {
		panic("cascade exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/local/add-city", strings.NewReader(`{}`))
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("%s = %q, want req-42", RequestIDHeader, got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if !strings.Contains(rec.Body.String(), `"internal server error"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	out := logs.String()
	if !strings.Contains(out, "panic recovered") {
		t.Errorf("expected panic log, got %s", out)
	}
	if strings.Count(out, "request_id=req-42") != 2 {
		t.Errorf("expected request id on panic and access log lines, got %s", out)
	}
	if !strings.Contains(out, "status=500") {
		t.Errorf("access log should record status 500, got %s", out)
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/api/local/add-city", "500"))
	if got != 1 {
		t.Errorf("expected the recovered panic counted as 500, got %v", got)
	}
}

func TestStack_NilMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := Stack(logger, nil, config.CORSConfig{AllowedOrigins: "*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/local/cities/1", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("request id header should be generated")
	}
}
