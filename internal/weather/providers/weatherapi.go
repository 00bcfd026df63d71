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

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// WeatherAPIProvider implements the weather.ForecastProvider interface for WeatherAPI.com.
// Its payload is row-oriented: one record per day, each with its hours.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, baseURL, apiKey, userAgent string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com"
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: newHTTPConfig(client, userAgent),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

type weatherAPIHour struct {
	TimeEpoch    int64               `json:"time_epoch"`
	TempF        float64             `json:"temp_f"`
	Humidity     *float64            `json:"humidity"`
	ChanceOfRain *float64            `json:"chance_of_rain"`
	ChanceOfSnow *float64            `json:"chance_of_snow"`
	WindMph      float64             `json:"wind_mph"`
	WindDegree   *float64            `json:"wind_degree"`
	Condition    weatherAPICondition `json:"condition"`
}

type weatherAPIForecastDay struct {
	DateEpoch int64 `json:"date_epoch"`
	Date      string `json:"date"`
	Day       struct {
		MaxTempF          float64             `json:"maxtemp_f"`
		MinTempF          float64             `json:"mintemp_f"`
		MaxWindMph        float64             `json:"maxwind_mph"`
		DailyChanceOfRain *float64            `json:"daily_chance_of_rain"`
		DailyChanceOfSnow *float64            `json:"daily_chance_of_snow"`
		Condition         weatherAPICondition `json:"condition"`
	} `json:"day"`
	Hour []weatherAPIHour `json:"hour"`
}

type weatherAPIResponse struct {
	Location *struct {
		TzID string `json:"tz_id"`
	} `json:"location"`
	Forecast *struct {
		ForecastDay []weatherAPIForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

// FetchForecast loads one payload that carries both halves; the hourly
// window starts at the current hour.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", fmt.Sprintf("%f,%f", lat, lon))
	values.Set("days", strconv.Itoa(weather.MaxDailyPeriods))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	u := fmt.Sprintf("%s/v1/forecast.json?%s", p.baseURL, values.Encode())

	var payload weatherAPIResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast: %w", err)
	}
	if payload.Forecast == nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast: %w: no forecast section", weather.ErrMalformedResponse)
	}

	tz := time.UTC
	if payload.Location != nil && payload.Location.TzID != "" {
		if l, err := time.LoadLocation(payload.Location.TzID); err == nil {
			tz = l
		}
	}

	now := time.Now().Truncate(time.Hour)
	return weather.Forecast{
		Provider: p.name,
		Hourly:   normalizeWeatherAPIHourly(payload.Forecast.ForecastDay, now, tz),
		Daily:    normalizeWeatherAPIDaily(payload.Forecast.ForecastDay, tz),
	}.Truncate(), nil
}

func normalizeWeatherAPIHourly(days []weatherAPIForecastDay, from time.Time, tz *time.Location) []weather.HourlyPeriod {
	out := make([]weather.HourlyPeriod, 0, weather.MaxHourlyPeriods)
	for _, d := range days {
		for _, h := range d.Hour {
			if len(out) == weather.MaxHourlyPeriods {
				return out
			}
			ts := time.Unix(h.TimeEpoch, 0).In(tz)
			if ts.Before(from) {
				continue
			}

			code := mapWeatherAPICondition(h.Condition.Text)
			out = append(out, weather.HourlyPeriod{
				StartTime:                ts,
				Temperature:              h.TempF,
				Humidity:                 h.Humidity,
				PrecipitationProbability: maxPtr(h.ChanceOfRain, h.ChanceOfSnow),
				WeatherCode:              code,
				Condition:                conditionText(code, h.Condition.Text),
				WindSpeed:                h.WindMph,
				WindDirection:            weather.WindDirectionOfPtr(h.WindDegree),
			})
		}
	}
	return out
}

func normalizeWeatherAPIDaily(days []weatherAPIForecastDay, tz *time.Location) []weather.DailyPeriod {
	out := make([]weather.DailyPeriod, 0, len(days))
	for _, d := range days {
		date, err := time.ParseInLocation("2006-01-02", d.Date, tz)
		if err != nil {
			date = time.Unix(d.DateEpoch, 0).In(tz)
		}

		code := mapWeatherAPICondition(d.Day.Condition.Text)
		out = append(out, weather.DailyPeriod{
			Name:                     weather.DailyDateLabel(date),
			Date:                     date,
			WeatherCode:              code,
			Condition:                conditionText(code, d.Day.Condition.Text),
			HighTemp:                 d.Day.MaxTempF,
			LowTemp:                  d.Day.MinTempF,
			PrecipitationProbability: maxPtr(d.Day.DailyChanceOfRain, d.Day.DailyChanceOfSnow),
			WindSpeed:                d.Day.MaxWindMph,
		})
	}
	return out
}

// mapWeatherAPICondition maps WeatherAPI condition text onto the WMO table.
func mapWeatherAPICondition(text string) int {
	switch {
	case text == "":
		return -1
	case common.HasAny(text, "thunder", "storm"):
		return 95
	case common.HasAny(text, "freezing", "sleet", "ice pellets"):
		return 66
	case common.HasAny(text, "blizzard", "heavy snow"):
		return 75
	case common.HasAny(text, "snow"):
		return 71
	case common.HasAny(text, "torrential", "heavy rain"):
		return 65
	case common.HasAny(text, "shower"):
		return 80
	case common.HasAny(text, "drizzle"):
		return 51
	case common.HasAny(text, "rain"):
		return 61
	case common.HasAny(text, "fog", "mist"):
		return 45
	case common.HasAny(text, "partly cloudy"):
		return 2
	case common.HasAny(text, "cloud", "overcast"):
		return 3
	case common.HasAny(text, "sunny", "clear"):
		return 0
	default:
		return -1
	}
}
