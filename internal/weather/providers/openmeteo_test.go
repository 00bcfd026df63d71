package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func hourlyTimes(n int) []string {
	start := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	out := make([]string, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
	}
	return out
}

func dailyTimes(n int) []string {
	start := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	out := make([]string, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return out
}

func series(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func openMeteoHourlyPayload(n int) map[string]any {
	return map[string]any{
		"time":                      hourlyTimes(n),
		"temperature_2m":            series(n, 61.5),
		"relative_humidity_2m":      series(n, 40),
		"precipitation_probability": series(n, 15),
		"weather_code":              series(n, 3),
		"wind_speed_10m":            series(n, 9),
		"wind_direction_10m":        series(n, 44),
	}
}

func openMeteoDailyPayload(n int) map[string]any {
	return map[string]any{
		"time":                          dailyTimes(n),
		"weather_code":                  series(n, 61),
		"temperature_2m_max":            series(n, 72),
		"temperature_2m_min":            series(n, 51),
		"precipitation_probability_max": series(n, 60),
		"wind_speed_10m_max":            series(n, 14),
	}
}

// openMeteoServer answers hourly and daily requests from the given sections.
func openMeteoServer(t *testing.T, hourly, daily map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("temperature_unit") != "fahrenheit" || q.Get("wind_speed_unit") != "mph" {
			t.Errorf("unexpected units in %s", r.URL.RawQuery)
		}

		body := map[string]any{"utc_offset_seconds": -18000}
		switch {
		case q.Get("hourly") != "":
			if q.Get("forecast_hours") != "24" {
				t.Errorf("expected forecast_hours=24, got %q", q.Get("forecast_hours"))
			}
			if hourly != nil {
				body["hourly"] = hourly
			}
		case q.Get("daily") != "":
			if q.Get("forecast_days") != "10" {
				t.Errorf("expected forecast_days=10, got %q", q.Get("forecast_days"))
			}
			if daily != nil {
				body["daily"] = daily
			}
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestOpenMeteoFetchForecast(t *testing.T) {
	srv := openMeteoServer(t, openMeteoHourlyPayload(48), openMeteoDailyPayload(16))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, "")
	f, err := p.FetchForecast(context.Background(), 39.799, -89.644)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Provider != "openmeteo" {
		t.Errorf("unexpected provider %q", f.Provider)
	}
	if len(f.Hourly) != weather.MaxHourlyPeriods {
		t.Fatalf("expected %d hourly periods, got %d", weather.MaxHourlyPeriods, len(f.Hourly))
	}
	if len(f.Daily) != weather.MaxDailyPeriods {
		t.Fatalf("expected %d daily periods, got %d", weather.MaxDailyPeriods, len(f.Daily))
	}

	h := f.Hourly[0]
	if h.Temperature != 61.5 || h.WindSpeed != 9 || h.WindDirection != "N" {
		t.Errorf("unexpected hourly period %+v", h)
	}
	if h.Condition != "Overcast" || h.Humidity == nil || *h.Humidity != 40 {
		t.Errorf("unexpected hourly condition/humidity %+v", h)
	}
	if _, offset := h.StartTime.Zone(); offset != -18000 {
		t.Errorf("expected local offset -18000, got %d", offset)
	}
	if !f.Hourly[1].StartTime.After(h.StartTime) {
		t.Errorf("hourly periods are not ascending")
	}

	d := f.Daily[0]
	if d.HighTemp != 72 || d.LowTemp != 51 || d.Condition != "Slight rain" || d.Name != "Sun, Oct 18" {
		t.Errorf("unexpected daily period %+v", d)
	}
}

func TestOpenMeteoMisalignedColumnsTruncate(t *testing.T) {
	hourly := openMeteoHourlyPayload(6)
	hourly["temperature_2m"] = series(4, 50)
	hourly["precipitation_probability"] = []any{10, nil, 30, 40, 50, 60}

	srv := openMeteoServer(t, hourly, openMeteoDailyPayload(3))
	defer srv.Close()

	f, err := NewOpenMeteoProvider(srv.Client(), srv.URL, "").FetchForecast(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Hourly) != 4 {
		t.Fatalf("expected 4 aligned periods, got %d", len(f.Hourly))
	}
	if f.Hourly[1].PrecipitationProbability != nil {
		t.Fatalf("expected null precipitation to stay nil")
	}
}

func TestOpenMeteoMissingSectionIsMalformed(t *testing.T) {
	srv := openMeteoServer(t, nil, openMeteoDailyPayload(3))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(srv.Client(), srv.URL, "").FetchForecast(context.Background(), 1, 2)
	if !errors.Is(err, weather.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenMeteoMissingRequiredColumnIsMalformed(t *testing.T) {
	daily := openMeteoDailyPayload(3)
	delete(daily, "temperature_2m_min")

	srv := openMeteoServer(t, openMeteoHourlyPayload(3), daily)
	defer srv.Close()

	_, err := NewOpenMeteoProvider(srv.Client(), srv.URL, "").FetchForecast(context.Background(), 1, 2)
	if !errors.Is(err, weather.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenMeteoHTTPErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":true,"reason":"bad latitude"}`)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(srv.Client(), srv.URL, "").FetchForecast(context.Background(), 999, 2)
	if !errors.Is(err, weather.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestOpenMeteoNullRequiredValueTruncates(t *testing.T) {
	hourly := openMeteoHourlyPayload(4)
	hourly["temperature_2m"] = []any{95, 95, nil, nil}
	hourly["weather_code"] = series(4, 0)
	daily := openMeteoDailyPayload(3)
	daily["temperature_2m_min"] = []any{70, nil, 68}

	srv := openMeteoServer(t, hourly, daily)
	defer srv.Close()

	f, err := NewOpenMeteoProvider(srv.Client(), srv.URL, "").FetchForecast(context.Background(), 33.45, -112.07)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Hourly) != 2 {
		t.Fatalf("expected rows before the null only, got %d", len(f.Hourly))
	}
	for _, h := range f.Hourly {
		if h.Temperature != 95 {
			t.Fatalf("null temperature leaked into %+v", h)
		}
	}
	if len(f.Daily) != 1 || f.Daily[0].LowTemp != 70 {
		t.Fatalf("expected one complete day, got %+v", f.Daily)
	}

	got := weather.Summarize(f, weather.HorizonHours, "Phoenix, Arizona")
	if !strings.Contains(got, "strenuous midday activity") || !strings.Contains(got, "breathable layers") {
		t.Fatalf("expected heat advice from the real readings, got %q", got)
	}
}
