package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// NWSProvider implements the weather.ForecastProvider interface for api.weather.gov.
// Forecasts are reached through the /points indirection.
type NWSProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNWSProvider(client *http.Client, baseURL, userAgent string) *NWSProvider {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	return &NWSProvider{
		name:    "nws",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: newHTTPConfig(client, userAgent),
		circuit: newCircuitBreaker("nws"),
	}
}

func (p *NWSProvider) Name() string {
	return p.name
}

type nwsPoint struct {
	Properties *struct {
		Forecast       string `json:"forecast"`
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type nwsValue struct {
	Value *float64 `json:"value"`
}

type nwsPeriod struct {
	Name                       string    `json:"name"`
	StartTime                  time.Time `json:"startTime"`
	IsDaytime                  bool      `json:"isDaytime"`
	Temperature                *float64  `json:"temperature"`
	TemperatureUnit            string    `json:"temperatureUnit"`
	ProbabilityOfPrecipitation nwsValue  `json:"probabilityOfPrecipitation"`
	RelativeHumidity           nwsValue  `json:"relativeHumidity"`
	WindSpeed                  string    `json:"windSpeed"`
	WindDirection              string    `json:"windDirection"`
	ShortForecast              string    `json:"shortForecast"`
}

type nwsForecast struct {
	Properties *struct {
		Periods []nwsPeriod `json:"periods"`
	} `json:"properties"`
}

func (p *NWSProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	var point nwsPoint
	u := fmt.Sprintf("%s/points/%.4f,%.4f", p.baseURL, lat, lon)
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &point); err != nil {
		return weather.Forecast{}, fmt.Errorf("nws points: %w", err)
	}
	if point.Properties == nil || point.Properties.Forecast == "" || point.Properties.ForecastHourly == "" {
		return weather.Forecast{}, fmt.Errorf("nws points: %w: forecast links missing", weather.ErrMalformedResponse)
	}

	hourlyURL := point.Properties.ForecastHourly
	dailyURL := point.Properties.Forecast

	return weather.FetchBoth(ctx, p.name,
		func(ctx context.Context) ([]weather.HourlyPeriod, error) {
			periods, err := p.fetchPeriods(ctx, hourlyURL)
			if err != nil {
				return nil, fmt.Errorf("nws hourly: %w", err)
			}
			return normalizeNWSHourly(withTemperatures("hourly", periods)), nil
		},
		func(ctx context.Context) ([]weather.DailyPeriod, error) {
			periods, err := p.fetchPeriods(ctx, dailyURL)
			if err != nil {
				return nil, fmt.Errorf("nws daily: %w", err)
			}
			return normalizeNWSDaily(withTemperatures("daily", periods)), nil
		},
	)
}

func (p *NWSProvider) fetchPeriods(ctx context.Context, u string) ([]nwsPeriod, error) {
	var f nwsForecast
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &f); err != nil {
		return nil, err
	}
	if f.Properties == nil {
		return nil, fmt.Errorf("%w: no properties section", weather.ErrMalformedResponse)
	}
	return f.Properties.Periods, nil
}

// withTemperatures cuts periods at the first one without a temperature.
func withTemperatures(kind string, periods []nwsPeriod) []nwsPeriod {
	for i, np := range periods {
		if np.Temperature == nil {
			log.Printf("INFO: nws %s period %d has no temperature; truncating", kind, i)
			return periods[:i]
		}
	}
	return periods
}

func normalizeNWSHourly(periods []nwsPeriod) []weather.HourlyPeriod {
	if len(periods) > weather.MaxHourlyPeriods {
		periods = periods[:weather.MaxHourlyPeriods]
	}

	out := make([]weather.HourlyPeriod, 0, len(periods))
	for _, np := range periods {
		code := nwsConditionCode(np.ShortForecast)
		out = append(out, weather.HourlyPeriod{
			StartTime:                np.StartTime,
			Temperature:              fahrenheit(*np.Temperature, np.TemperatureUnit),
			Humidity:                 np.RelativeHumidity.Value,
			PrecipitationProbability: np.ProbabilityOfPrecipitation.Value,
			WeatherCode:              code,
			Condition:                conditionText(code, np.ShortForecast),
			WindSpeed:                nwsWindSpeed(np.WindSpeed),
			WindDirection:            weather.FoldCompass(np.WindDirection),
		})
	}
	return out
}

// normalizeNWSDaily folds the 12-hour day/night periods into days: the
// daytime period gives the high and condition, the following night the low.
// A leading night period ("Tonight") becomes a day of its own.
func normalizeNWSDaily(periods []nwsPeriod) []weather.DailyPeriod {
	out := make([]weather.DailyPeriod, 0, weather.MaxDailyPeriods)

	for i := 0; i < len(periods) && len(out) < weather.MaxDailyPeriods; i++ {
		np := periods[i]
		temp := fahrenheit(*np.Temperature, np.TemperatureUnit)
		code := nwsConditionCode(np.ShortForecast)
		day := time.Date(np.StartTime.Year(), np.StartTime.Month(), np.StartTime.Day(), 0, 0, 0, 0, np.StartTime.Location())

		d := weather.DailyPeriod{
			Name:                     weather.DailyDateLabel(day),
			Date:                     day,
			WeatherCode:              code,
			Condition:                conditionText(code, np.ShortForecast),
			HighTemp:                 temp,
			LowTemp:                  temp,
			PrecipitationProbability: np.ProbabilityOfPrecipitation.Value,
			WindSpeed:                nwsWindSpeed(np.WindSpeed),
		}

		if np.IsDaytime && i+1 < len(periods) && !periods[i+1].IsDaytime {
			night := periods[i+1]
			d.LowTemp = fahrenheit(*night.Temperature, night.TemperatureUnit)
			d.PrecipitationProbability = maxPtr(d.PrecipitationProbability, night.ProbabilityOfPrecipitation.Value)
			if w := nwsWindSpeed(night.WindSpeed); w > d.WindSpeed {
				d.WindSpeed = w
			}
			i++
		}

		out = append(out, d)
	}
	return out
}

var nwsConditionTable = []struct {
	subs []string
	code int
}{
	{[]string{"thunder", "t-storm"}, 95},
	{[]string{"freezing rain", "freezing drizzle", "sleet", "ice pellets"}, 66},
	{[]string{"heavy snow", "blizzard"}, 75},
	{[]string{"snow showers"}, 85},
	{[]string{"snow", "flurries"}, 71},
	{[]string{"heavy rain"}, 65},
	{[]string{"showers"}, 80},
	{[]string{"drizzle"}, 51},
	{[]string{"rain"}, 61},
	{[]string{"fog", "haze", "smoke"}, 45},
	{[]string{"partly cloudy", "partly sunny"}, 2},
	{[]string{"mostly sunny", "mostly clear"}, 1},
	{[]string{"cloudy", "overcast"}, 3},
	{[]string{"sunny", "clear", "fair"}, 0},
}

// nwsConditionCode maps NWS short-forecast text onto the WMO table.
func nwsConditionCode(text string) int {
	for _, row := range nwsConditionTable {
		if common.HasAny(text, row.subs...) {
			return row.code
		}
	}
	return -1
}

// conditionText prefers the table description and falls back to the
// provider's own wording when the text did not map to a code.
func conditionText(code int, providerText string) string {
	if desc := weather.DescribeCode(code); desc != weather.UnavailableCondition || providerText == "" {
		return desc
	}
	return providerText
}

// nwsWindSpeed parses "10 mph" or "5 to 10 mph" as the upper bound.
func nwsWindSpeed(s string) float64 {
	n, ok := common.MaxInt(s)
	if !ok {
		return 0
	}
	return float64(n)
}

func fahrenheit(v float64, unit string) float64 {
	if strings.EqualFold(unit, "C") {
		return v*9/5 + 32
	}
	return v
}

func maxPtr(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	default:
		return a
	}
}
