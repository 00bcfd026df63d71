package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareCountsRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(MetricsMiddleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })
	app.Get("/broken", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "upstream") })
	app.Get("/metrics", adaptor.HTTPHandler(Handler()))

	for _, target := range []string{"/items/1", "/items/2", "/broken"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
	}

	if got := testutil.ToFloat64(RequestCounter.WithLabelValues("/items/:id", "GET", "200")); got != 2 {
		t.Fatalf("expected 2 requests on the route pattern, got %v", got)
	}
	if got := testutil.ToFloat64(RequestCounter.WithLabelValues("/broken", "GET", "502")); got != 1 {
		t.Fatalf("expected the error status to be recorded, got %v", got)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "weather_lookup_http_requests_total") {
		t.Fatalf("metrics endpoint does not expose the request counter")
	}
}

func TestCacheResult(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues("test", "hit"))
	CacheResult("test", true)
	CacheResult("test", false)

	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("test", "hit")); got != before+1 {
		t.Fatalf("expected hit counter to grow by one, got %v", got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("test", "miss")); got != 1 {
		t.Fatalf("expected one miss, got %v", got)
	}
}

func TestSetupTracingWithoutExporter(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "weather-lookup-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
