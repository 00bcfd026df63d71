package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	places []Place
	err    error
	calls  int
}

func (g *fakeGeocoder) Search(_ context.Context, _ string, _ int) ([]Place, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.places, g.err
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeProvider struct {
	mu       sync.Mutex
	name     string
	forecast Forecast
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchForecast(_ context.Context, _, _ float64) (Forecast, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.forecast, p.err
}

func ptr(v float64) *float64 { return &v }

func hourlyPeriods(n int, temp, rain, wind float64, code int) []HourlyPeriod {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	out := make([]HourlyPeriod, n)
	for i := range out {
		out[i] = HourlyPeriod{
			StartTime:                start.Add(time.Duration(i) * time.Hour),
			Temperature:              temp,
			PrecipitationProbability: ptr(rain),
			WeatherCode:              code,
			Condition:                DescribeCode(code),
			WindSpeed:                wind,
			WindDirection:            "N",
		}
	}
	return out
}

func dailyPeriods(n int, high, low, rain, wind float64, code int) []DailyPeriod {
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	out := make([]DailyPeriod, n)
	for i := range out {
		day := start.AddDate(0, 0, i)
		out[i] = DailyPeriod{
			Name:                     DailyDateLabel(day),
			Date:                     day,
			WeatherCode:              code,
			Condition:                DescribeCode(code),
			HighTemp:                 high,
			LowTemp:                  low,
			PrecipitationProbability: ptr(rain),
			WindSpeed:                wind,
		}
	}
	return out
}

var springfield = Place{
	DisplayName: "Springfield, Sangamon County, Illinois, United States",
	CountryCode: "us",
	City:        "Springfield",
	State:       "Illinois",
	Lat:         39.7990,
	Lon:         -89.6440,
}

type fakeStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (s *fakeStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// gatedProvider blocks its first FetchForecast until release is closed.
type gatedProvider struct {
	fakeProvider
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedProvider(name string, f Forecast) *gatedProvider {
	return &gatedProvider{
		fakeProvider: fakeProvider{name: name, forecast: f},
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (p *gatedProvider) FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return p.fakeProvider.FetchForecast(ctx, lat, lon)
}

func newTestService(t testing.TB, geo Geocoder, providers ...ForecastProvider) *Service {
	t.Helper()
	svc, err := NewService(NewResolver(geo), providers, "", 5, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func sampleForecast() Forecast {
	return Forecast{
		Provider: "fake",
		Hourly:   hourlyPeriods(24, 60, 10, 8, 1),
		Daily:    dailyPeriods(10, 70, 50, 20, 10, 2),
	}
}
