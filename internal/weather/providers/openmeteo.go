package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// OpenMeteoProvider implements the weather.ForecastProvider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL, userAgent string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: newHTTPConfig(client, userAgent),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoHourly struct {
	Time                     []string   `json:"time"`
	Temperature2m            []*float64 `json:"temperature_2m"`
	RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	WeatherCode              []*float64 `json:"weather_code"`
	WindSpeed10m             []*float64 `json:"wind_speed_10m"`
	WindDirection10m         []*float64 `json:"wind_direction_10m"`
}

type openMeteoDaily struct {
	Time                        []string   `json:"time"`
	WeatherCode                 []*float64 `json:"weather_code"`
	Temperature2mMax            []*float64 `json:"temperature_2m_max"`
	Temperature2mMin            []*float64 `json:"temperature_2m_min"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	WindSpeed10mMax             []*float64 `json:"wind_speed_10m_max"`
}

type openMeteoResponse struct {
	UTCOffsetSeconds int              `json:"utc_offset_seconds"`
	Hourly           *openMeteoHourly `json:"hourly"`
	Daily            *openMeteoDaily  `json:"daily"`
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	return weather.FetchBoth(ctx, p.name,
		func(ctx context.Context) ([]weather.HourlyPeriod, error) { return p.fetchHourly(ctx, lat, lon) },
		func(ctx context.Context) ([]weather.DailyPeriod, error) { return p.fetchDaily(ctx, lat, lon) },
	)
}

func (p *OpenMeteoProvider) forecastURL(lat, lon float64, extra url.Values) string {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "mph")
	values.Set("timezone", "auto")
	for k, v := range extra {
		values[k] = v
	}
	return fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, values.Encode())
}

func (p *OpenMeteoProvider) fetchHourly(ctx context.Context, lat, lon float64) ([]weather.HourlyPeriod, error) {
	u := p.forecastURL(lat, lon, url.Values{
		"hourly":         {"temperature_2m,relative_humidity_2m,precipitation_probability,weather_code,wind_speed_10m,wind_direction_10m"},
		"forecast_hours": {strconv.Itoa(weather.MaxHourlyPeriods)},
	})

	var payload openMeteoResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return nil, fmt.Errorf("openmeteo hourly: %w", err)
	}
	if payload.Hourly == nil {
		return nil, fmt.Errorf("openmeteo hourly: %w: no hourly section", weather.ErrMalformedResponse)
	}
	return normalizeOpenMeteoHourly(payload.Hourly, time.FixedZone("", payload.UTCOffsetSeconds))
}

func (p *OpenMeteoProvider) fetchDaily(ctx context.Context, lat, lon float64) ([]weather.DailyPeriod, error) {
	u := p.forecastURL(lat, lon, url.Values{
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max"},
		"forecast_days": {strconv.Itoa(weather.MaxDailyPeriods)},
	})

	var payload openMeteoResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return nil, fmt.Errorf("openmeteo daily: %w", err)
	}
	if payload.Daily == nil {
		return nil, fmt.Errorf("openmeteo daily: %w: no daily section", weather.ErrMalformedResponse)
	}
	return normalizeOpenMeteoDaily(payload.Daily, time.FixedZone("", payload.UTCOffsetSeconds))
}

func normalizeOpenMeteoHourly(h *openMeteoHourly, loc *time.Location) ([]weather.HourlyPeriod, error) {
	n, err := alignColumns("hourly", len(h.Time),
		col("temperature_2m", len(h.Temperature2m), true),
		col("weather_code", len(h.WeatherCode), true),
		col("wind_speed_10m", len(h.WindSpeed10m), true),
		col("relative_humidity_2m", len(h.RelativeHumidity2m), false),
		col("precipitation_probability", len(h.PrecipitationProbability), false),
		col("wind_direction_10m", len(h.WindDirection10m), false),
	)
	if err != nil {
		return nil, err
	}
	n = completeRows("hourly", n,
		nullable("temperature_2m", h.Temperature2m),
		nullable("weather_code", h.WeatherCode),
		nullable("wind_speed_10m", h.WindSpeed10m),
	)
	if n > weather.MaxHourlyPeriods {
		n = weather.MaxHourlyPeriods
	}

	periods := make([]weather.HourlyPeriod, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: hourly.time[%d]: %v", weather.ErrMalformedResponse, i, err)
		}

		code := int(atOr(h.WeatherCode, i, -1))
		periods = append(periods, weather.HourlyPeriod{
			StartTime:                ts,
			Temperature:              atOr(h.Temperature2m, i, 0),
			Humidity:                 at(h.RelativeHumidity2m, i),
			PrecipitationProbability: at(h.PrecipitationProbability, i),
			WeatherCode:              code,
			Condition:                weather.DescribeCode(code),
			WindSpeed:                atOr(h.WindSpeed10m, i, 0),
			WindDirection:            weather.WindDirectionOfPtr(at(h.WindDirection10m, i)),
		})
	}
	return periods, nil
}

func normalizeOpenMeteoDaily(d *openMeteoDaily, loc *time.Location) ([]weather.DailyPeriod, error) {
	n, err := alignColumns("daily", len(d.Time),
		col("weather_code", len(d.WeatherCode), true),
		col("temperature_2m_max", len(d.Temperature2mMax), true),
		col("temperature_2m_min", len(d.Temperature2mMin), true),
		col("wind_speed_10m_max", len(d.WindSpeed10mMax), true),
		col("precipitation_probability_max", len(d.PrecipitationProbabilityMax), false),
	)
	if err != nil {
		return nil, err
	}
	n = completeRows("daily", n,
		nullable("weather_code", d.WeatherCode),
		nullable("temperature_2m_max", d.Temperature2mMax),
		nullable("temperature_2m_min", d.Temperature2mMin),
		nullable("wind_speed_10m_max", d.WindSpeed10mMax),
	)
	if n > weather.MaxDailyPeriods {
		n = weather.MaxDailyPeriods
	}

	periods := make([]weather.DailyPeriod, 0, n)
	for i := 0; i < n; i++ {
		day, err := time.ParseInLocation("2006-01-02", d.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: daily.time[%d]: %v", weather.ErrMalformedResponse, i, err)
		}

		code := int(atOr(d.WeatherCode, i, -1))
		periods = append(periods, weather.DailyPeriod{
			Name:                     weather.DailyDateLabel(day),
			Date:                     day,
			WeatherCode:              code,
			Condition:                weather.DescribeCode(code),
			HighTemp:                 atOr(d.Temperature2mMax, i, 0),
			LowTemp:                  atOr(d.Temperature2mMin, i, 0),
			PrecipitationProbability: at(d.PrecipitationProbabilityMax, i),
			WindSpeed:                atOr(d.WindSpeed10mMax, i, 0),
		})
	}
	return periods, nil
}
