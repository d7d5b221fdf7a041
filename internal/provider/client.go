// Package provider talks to third-party music catalogs (Spotify, Genius).
//
// Each call is a single GET with a bearer token. There is no caching and no
// retry; a non-2xx answer is returned to the caller as Unavailable with the
// upstream status. Every provider sits behind its own circuit breaker so a
// provider that keeps failing is skipped quickly instead of holding requests
// for the full timeout.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/metrics"
)

// maxBody bounds how much of an upstream response is read.
const maxBody = 4 << 20

// UpstreamError is a non-2xx answer from a provider.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Status)
}

// client is the shared HTTP plumbing of every provider.
type client struct {
	name    string
	baseURL string
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     *slog.Logger
}

func newClient(name, baseURL, token string, timeout time.Duration, log *slog.Logger) *client {
	c := &client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("provider", name),
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // Allow 3 requests in half-open state
		Interval:    time.Minute,      // Reset counts after 1 minute in closed state
		Timeout:     30 * time.Second, // Wait before transitioning from open to half-open

		// Opens after 5 consecutive failures
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		// Client mistakes (bad query, expired token) say nothing about the
		// provider's health
		IsSuccessful: func(err error) bool {
			var up *UpstreamError
			if errors.As(err, &up) {
				return up.Status < 500 && up.Status != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Info("circuit breaker state transition", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return c
}

func (c *client) configured() bool {
	return c.token != "" && c.baseURL != ""
}

// get performs GET baseURL+path?query and decodes the JSON answer into out.
func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.configured() {
		return svcErr.Unavailable(c.name + " is not configured")
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path, query)
	})
	metrics.ProviderRequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		var up *UpstreamError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.ProviderRequests.WithLabelValues(c.name, "rejected").Inc()
			return svcErr.Unavailable(c.name + " is temporarily unavailable")
		case errors.As(err, &up):
			metrics.ProviderRequests.WithLabelValues(c.name, "failure").Inc()
			c.log.Warn("upstream error", "status", up.Status, "path", path)
			return svcErr.Unavailable(up.Error())
		default:
			metrics.ProviderRequests.WithLabelValues(c.name, "failure").Inc()
			c.log.Warn("request failed", "path", path, "err", err)
			if ctx.Err() != nil {
				return svcErr.Map(ctx.Err())
			}
			return svcErr.Unavailable(c.name + " request failed")
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.ProviderRequests.WithLabelValues(c.name, "failure").Inc()
		c.log.Warn("undecodable response", "path", path, "err", err)
		return svcErr.Unavailable(c.name + " returned an unreadable response")
	}
	metrics.ProviderRequests.WithLabelValues(c.name, "success").Inc()
	return nil
}

func (c *client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Provider: c.name, Status: resp.StatusCode}
	}
	return body, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
