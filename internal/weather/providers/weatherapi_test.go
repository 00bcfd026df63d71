package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func weatherAPIPayload(start time.Time) map[string]any {
	days := make([]map[string]any, 0, 2)
	for d := 0; d < 2; d++ {
		dayStart := start.Add(time.Duration(d*24) * time.Hour)
		hours := make([]map[string]any, 0, 24)
		for h := 0; h < 24; h++ {
			hours = append(hours, map[string]any{
				"time_epoch":     dayStart.Add(time.Duration(h) * time.Hour).Unix(),
				"temp_f":         55.0 + float64(h),
				"humidity":       70,
				"chance_of_rain": 20,
				"chance_of_snow": 0,
				"wind_mph":       7.5,
				"wind_degree":    200,
				"condition":      map[string]any{"text": "Patchy rain possible"},
			})
		}
		days = append(days, map[string]any{
			"date": dayStart.UTC().Format("2006-01-02"),
			"day": map[string]any{
				"maxtemp_f":            78.1,
				"mintemp_f":            55.0,
				"maxwind_mph":          12.3,
				"daily_chance_of_rain": 80,
				"daily_chance_of_snow": 0,
				"condition":            map[string]any{"text": "Partly cloudy"},
			},
			"hour": hours,
		})
	}
	return map[string]any{
		"location": map[string]any{"tz_id": "UTC"},
		"forecast": map[string]any{"forecastday": days},
	}
}

func TestWeatherAPIFetchForecast(t *testing.T) {
	now := time.Now().Truncate(time.Hour)
	payload := weatherAPIPayload(now.Add(-2 * time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v1/forecast.json" || q.Get("key") != "secret" || q.Get("days") != "10" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	f, err := NewWeatherAPIProvider(srv.Client(), srv.URL, "secret", "").FetchForecast(context.Background(), 39.799, -89.644)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Hourly) != 24 {
		t.Fatalf("expected 24 hourly periods, got %d", len(f.Hourly))
	}
	if f.Hourly[0].StartTime.Before(now) {
		t.Errorf("hourly window starts in the past: %v < %v", f.Hourly[0].StartTime, now)
	}
	h := f.Hourly[0]
	if h.WeatherCode != 61 || h.WindDirection != "S" || h.PrecipitationProbability == nil || *h.PrecipitationProbability != 20 {
		t.Errorf("unexpected hourly period %+v", h)
	}

	if len(f.Daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(f.Daily))
	}
	d := f.Daily[0]
	if d.HighTemp != 78.1 || d.LowTemp != 55 || d.WeatherCode != 2 || d.WindSpeed != 12.3 {
		t.Errorf("unexpected daily period %+v", d)
	}
}

func TestWeatherAPIRequiresKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected without an api key")
	}))
	defer srv.Close()

	if _, err := NewWeatherAPIProvider(srv.Client(), srv.URL, "", "").FetchForecast(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected an error without an api key")
	}
}

func TestMapWeatherAPICondition(t *testing.T) {
	cases := map[string]int{
		"Sunny":                          0,
		"Clear":                          0,
		"Partly cloudy":                  2,
		"Overcast":                       3,
		"Mist":                           45,
		"Light drizzle":                  51,
		"Moderate rain":                  61,
		"Torrential rain shower":         65,
		"Light rain shower":              80,
		"Moderate or heavy snow showers": 75,
		"Light snow":                     71,
		"Light sleet":                    66,
		"Thundery outbreaks possible":    95,
		"":                               -1,
	}
	for text, want := range cases {
		if got := mapWeatherAPICondition(text); got != want {
			t.Errorf("mapWeatherAPICondition(%q) = %d, want %d", text, got, want)
		}
	}
}
