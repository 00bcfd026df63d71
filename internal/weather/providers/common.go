package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultUserAgent identifies outbound requests; Nominatim and NWS both reject anonymous clients.
const DefaultUserAgent = "weather-lookup/1.0 (+https://github.com/i474232898/weather-lookup)"

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client    *http.Client
	UserAgent string
	Backoff   BackoffConfig
}

var defaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("upstream server error")
	errClientStatus = errors.New("upstream rejected request")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoClient     = errors.New("http client not configured")
	errBadBackoff   = errors.New("invalid backoff configuration")
)

// permanentError marks failures that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func newHTTPConfig(client *http.Client, userAgent string) HTTPClientConfig {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return HTTPClientConfig{
		Client:    client,
		UserAgent: userAgent,
		Backoff:   defaultBackoff,
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			// A 4xx is the caller's problem, not the upstream's.
			var perm permanentError
			return err == nil || errors.As(err, &perm)
		},
	})
}

func (b BackoffConfig) validate() error {
	if b.MaxRetries < 0 || b.InitialInterval <= 0 {
		return errBadBackoff
	}
	return nil
}

// wait returns the pause before retry n (zero based), capped at MaxInterval.
func (b BackoffConfig) wait(n int) time.Duration {
	d := time.Duration(float64(b.InitialInterval) * math.Pow(2, float64(n)))
	if b.MaxInterval > 0 && d > b.MaxInterval {
		return b.MaxInterval
	}
	return d
}

// sleepCtx blocks for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fetch issues one GET through the breaker and classifies the status code.
func fetch(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, permanentError{err}
	}
	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	out, err := cb.Execute(func() (interface{}, error) {
		resp, err := cfg.Client.Do(req)
		if err != nil {
			observe(cb, observability.OutcomeTransport)
			return nil, err
		}

		code := resp.StatusCode
		if code >= 200 && code < 300 {
			observe(cb, observability.OutcomeOK)
			return resp, nil
		}
		drainAndClose(resp)

		switch {
		case code == http.StatusTooManyRequests:
			observe(cb, observability.OutcomeRateLimited)
			return nil, errRateLimited
		case code >= 500:
			observe(cb, observability.OutcomeServerError)
			return nil, fmt.Errorf("%w: %d", errServerError, code)
		default:
			observe(cb, observability.OutcomeClientError)
			return nil, permanentError{fmt.Errorf("%w: %d", errClientStatus, code)}
		}
	})
	if err != nil {
		return nil, err
	}
	return out.(*http.Response), nil
}

// getWithRetry retries fetch with exponential backoff. Every failure it
// returns wraps weather.ErrServiceUnavailable unless ctx ended first.
func getWithRetry(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, rawURL string) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoClient
	}
	if err := cfg.Backoff.validate(); err != nil {
		return nil, err
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fetch(ctx, cfg, cb, rawURL)
		if err == nil {
			return resp, nil
		}

		var perm permanentError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			observe(cb, observability.OutcomeCircuitOpen)
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrServiceUnavailable, errCircuitOpen, err)
		case errors.As(err, &perm):
			return nil, fmt.Errorf("%w: %w", weather.ErrServiceUnavailable, perm.err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case n >= cfg.Backoff.MaxRetries:
			return nil, fmt.Errorf("%w: %s after %d attempts: %w", weather.ErrServiceUnavailable, cb.Name(), n+1, err)
		}

		log.Printf("DEBUG: %s attempt %d failed: %v", cb.Name(), n+1, err)
		if err := sleepCtx(ctx, cfg.Backoff.wait(n)); err != nil {
			return nil, err
		}
	}
}

// getJSON performs a resilient GET and decodes the body into out.
// Undecodable bodies wrap weather.ErrMalformedResponse.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, rawURL string, out any) error {
	resp, err := getWithRetry(ctx, cfg, cb, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", weather.ErrMalformedResponse, cb.Name(), err)
	}
	return nil
}

func observe(cb *gobreaker.CircuitBreaker, outcome string) {
	observability.UpstreamRequests.WithLabelValues(cb.Name(), outcome).Inc()
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
