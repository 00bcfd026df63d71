package observability

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookup_http_requests_total",
			Help: "Total API requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	// UpstreamRequests counts every attempt against a geocoder or forecast
	// provider, retries included.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookup_upstream_requests_total",
			Help: "Upstream HTTP attempts by upstream and outcome.",
		},
		[]string{"upstream", "outcome"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookup_cache_lookups_total",
			Help: "Search and forecast cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)

	StaleSuggestions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_lookup_stale_suggestions_total",
			Help: "Suggestion requests dropped because a newer one arrived.",
		},
	)
)

// Upstream outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeServerError = "server_error"
	OutcomeClientError = "client_error"
	OutcomeTransport   = "transport_error"
	OutcomeCircuitOpen = "circuit_open"
)

func init() {
	prometheus.MustRegister(RequestCounter, UpstreamRequests, CacheLookups, StaleSuggestions)
}

// CacheResult records one cache lookup.
func CacheResult(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(kind, result).Inc()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware counts requests per matched route. The route pattern is
// used instead of the raw path to keep label cardinality bounded.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		RequestCounter.WithLabelValues(c.Route().Path, c.Method(), strconv.Itoa(status)).Inc()
		return err
	}
}
