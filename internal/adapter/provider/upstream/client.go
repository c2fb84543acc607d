// Package upstream is the shared JSON-over-HTTP client used by the gateway
// adapters. It performs a single GET per call (no retries) and records every
// request in the gateway metrics.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/heartmarshall/geo-explorer/internal/observability"
)

// ErrNoMatch is returned when the upstream answers 404 or an empty result.
var ErrNoMatch = errors.New("upstream: no match")

// StatusError is returned for any non-2xx, non-404 response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: unexpected status %d", e.StatusCode)
}

// Client issues instrumented GET requests against one upstream provider.
type Client struct {
	provider   string
	httpClient *http.Client
	metrics    *observability.Metrics
	log        *slog.Logger
}

// NewClient creates a Client labelled with the provider name.
func NewClient(provider string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		log:        logger.With("adapter", provider),
	}
}

// GetJSON fetches endpoint with the given query and decodes the body into out.
// The operation name is used only for logs and metric labels.
func (c *Client) GetJSON(ctx context.Context, operation, endpoint string, query url.Values, out any) error {
	reqURL := endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	start := time.Now()
	err := c.get(ctx, reqURL, out)
	c.metrics.GatewayDuration.WithLabelValues(c.provider, operation).Observe(time.Since(start).Seconds())

	outcome := observability.OutcomeSuccess
	switch {
	case errors.Is(err, ErrNoMatch):
		outcome = observability.OutcomeNotFound
		c.log.DebugContext(ctx, "upstream no match",
			slog.String("operation", operation),
			slog.String("url", reqURL),
		)
	case err != nil:
		outcome = observability.OutcomeError
		c.log.WarnContext(ctx, "upstream request failed",
			slog.String("operation", operation),
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
	}
	c.metrics.GatewayRequests.WithLabelValues(c.provider, operation, outcome).Inc()

	return err
}

func (c *Client) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoMatch
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// PathJoin appends an escaped path segment to a base URL.
func PathJoin(base string, segments ...string) string {
	for _, s := range segments {
		base += "/" + url.PathEscape(s)
	}
	return base
}
