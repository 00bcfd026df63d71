package weather

import (
	"context"
)

// Geocoder abstracts a free-text place search (e.g. Nominatim).
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// ForecastProvider abstracts a weather data source (e.g. Open-Meteo, NWS, WeatherAPI).
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error)
}

// Store is the key-value contract saved locations are persisted through.
// Get returns store.ErrNotFound-compatible errors for missing keys; callers
// treat any Get failure as "nothing stored".
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}
