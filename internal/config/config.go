package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration
	UserAgent   string

	// ForecastProvider is the default provider: openmeteo, nws or weatherapi.
	ForecastProvider string

	NominatimBaseURL  string
	OpenMeteoBaseURL  string
	NWSBaseURL        string
	WeatherAPIBaseURL string
	WeatherAPIKey     string

	SearchLimit     int
	SuggestDebounce time.Duration
	SessionIdle     time.Duration
	CacheTTL        time.Duration

	// RefreshInterval controls how often saved locations are re-fetched (0 = never).
	RefreshInterval time.Duration

	// Saved-locations persistence. RedisURL wins over StorePath; with neither
	// set the list is kept in memory.
	RedisURL   string
	StorePath  string
	StorageKey string

	// CORSOrigins is a comma-separated allow list for browser clients.
	CORSOrigins string

	// OTLPEndpoint receives trace spans over OTLP/HTTP when set.
	OTLPEndpoint string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.UserAgent = os.Getenv("USER_AGENT")
	cfg.ForecastProvider = strings.ToLower(getenvDefault("FORECAST_PROVIDER", "openmeteo"))

	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.OpenMeteoBaseURL = os.Getenv("OPEN_METEO_BASE_URL")
	cfg.NWSBaseURL = os.Getenv("NWS_BASE_URL")
	cfg.WeatherAPIBaseURL = os.Getenv("WEATHERAPI_BASE_URL")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.SearchLimit = getenvInt("SEARCH_LIMIT", 5)
	if cfg.SearchLimit < 1 || cfg.SearchLimit > 50 {
		return nil, fmt.Errorf("invalid SEARCH_LIMIT: %d (want 1-50)", cfg.SearchLimit)
	}

	if cfg.SuggestDebounce, err = getenvDuration("SUGGEST_DEBOUNCE", "300ms"); err != nil {
		return nil, err
	}
	if cfg.SessionIdle, err = getenvDuration("SESSION_IDLE", "30m"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.StorePath = os.Getenv("STORE_PATH")
	cfg.StorageKey = getenvDefault("STORAGE_KEY", weather.DefaultStorageKey)

	cfg.CORSOrigins = getenvDefault("CORS_ORIGINS", "*")
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if cfg.ForecastProvider == "weatherapi" && cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("FORECAST_PROVIDER=weatherapi requires WEATHERAPI_API_KEY")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", key)
	}
	return d, nil
}
