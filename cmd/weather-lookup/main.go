package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), "weather-lookup", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("ERROR: tracing shutdown: %v", err)
		}
	}()

	// Shared HTTP client for outbound geocoder and provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Saved-locations store: Redis, SQLite or memory depending on config.
	kv, err := store.Open(cfg.RedisURL, cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer kv.Close()

	// Providers with resilience (backoff + circuit breaker).
	provs := []weather.ForecastProvider{
		providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL, cfg.UserAgent),
		providers.NewNWSProvider(httpClient, cfg.NWSBaseURL, cfg.UserAgent),
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey, cfg.UserAgent))
	} else {
		log.Printf("INFO: WEATHERAPI_API_KEY not set; weatherapi provider disabled")
	}

	geocoder := providers.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL, cfg.UserAgent)

	// Core service orchestrating resolver, providers and cache.
	service, err := weather.NewService(weather.NewResolver(geocoder), provs, cfg.ForecastProvider, cfg.SearchLimit, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("failed to create weather service: %v", err)
	}

	saved := weather.NewSavedLocations(kv, cfg.StorageKey)
	app := weather.NewApp(service, saved, cfg.ForecastProvider)
	suggester := weather.NewSuggester(service, clock.NewClock(), cfg.SuggestDebounce, cfg.SearchLimit)

	log.Printf("INFO: default provider %s, available %v, %d saved locations",
		cfg.ForecastProvider, service.Providers(), len(app.Saved()))

	// Scheduler that keeps saved locations warm in the forecast cache.
	sched := scheduler.New(app, service, suggester, cfg.RefreshInterval, cfg.SessionIdle)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	server := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	server.Use(logger.New())
	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Accept,Content-Type",
		MaxAge:       300,
	}))
	server.Use(observability.MetricsMiddleware())

	// Basic health endpoint
	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	server.Get("/metrics", adaptor.HTTPHandler(observability.Handler()))

	// API routes.
	httpapi.RegisterRoutes(server, httpapi.Deps{
		Service:   service,
		App:       app,
		Suggester: suggester,
	})

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: weather-lookup listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
