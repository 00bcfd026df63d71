package weather

import (
	"time"
)

const (
	// MaxHourlyPeriods and MaxDailyPeriods bound every normalized forecast.
	MaxHourlyPeriods = 24
	MaxDailyPeriods  = 10
)

// Location is a resolved U.S. place.
// DisplayName is "City, State" (or the bare city) and is the uniqueness key.
type Location struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores and caches.
func (l Location) Key() string {
	return l.DisplayName
}

// Place is a raw geocoder record before U.S. filtering and naming.
type Place struct {
	DisplayName string
	CountryCode string
	City        string
	Town        string
	Village     string
	Hamlet      string
	County      string
	State       string
	Region      string
	Lat         float64
	Lon         float64
}

// HourlyPeriod is one hourly forecast sample.
type HourlyPeriod struct {
	StartTime                time.Time `json:"startTime"`
	Temperature              float64   `json:"temperature"` // °F
	Humidity                 *float64  `json:"humidity"`
	PrecipitationProbability *float64  `json:"precipitationProbability"`
	WeatherCode              int       `json:"weatherCode"`
	Condition                string    `json:"condition"`
	WindSpeed                float64   `json:"windSpeed"` // mph
	WindDirection            string    `json:"windDirection"`
}

// DailyPeriod is one daily forecast aggregate.
type DailyPeriod struct {
	Name                     string    `json:"name"`
	Date                     time.Time `json:"date"`
	WeatherCode              int       `json:"weatherCode"`
	Condition                string    `json:"condition"`
	HighTemp                 float64   `json:"highTemp"`
	LowTemp                  float64   `json:"lowTemp"`
	PrecipitationProbability *float64  `json:"precipitationProbability"`
	WindSpeed                float64   `json:"windSpeed"`
}

// Forecast holds the normalized hourly and daily sequences from one provider.
// Hourly is ordered by StartTime ascending, Daily by Date ascending.
type Forecast struct {
	Provider string         `json:"provider"`
	Hourly   []HourlyPeriod `json:"hourly"`
	Daily    []DailyPeriod  `json:"daily"`
}

// Truncate enforces the hourly/daily length bounds.
func (f Forecast) Truncate() Forecast {
	if len(f.Hourly) > MaxHourlyPeriods {
		f.Hourly = f.Hourly[:MaxHourlyPeriods]
	}
	if len(f.Daily) > MaxDailyPeriods {
		f.Daily = f.Daily[:MaxDailyPeriods]
	}
	return f
}

// Report is everything a lookup produces for one location.
type Report struct {
	Location     Location `json:"location"`
	Forecast     Forecast `json:"forecast"`
	HoursSummary string   `json:"hoursSummary"`
	DaysSummary  string   `json:"daysSummary"`
	MapEmbedURL  string   `json:"mapEmbedUrl"`
}

// DailyDateLabel formats a day the way daily cards are titled.
func DailyDateLabel(t time.Time) string {
	return t.Format("Mon, Jan 2")
}
