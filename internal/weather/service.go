package weather

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i474232898/weather-lookup/internal/observability"
)

var tracer = otel.Tracer("github.com/i474232898/weather-lookup/internal/weather")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

// Service orchestrates location resolution, forecast providers and summaries.
type Service struct {
	resolver        *Resolver
	providers       map[string]ForecastProvider
	defaultProvider string
	searchLimit     int
	cache           *cache.Cache
}

// NewService creates a new Service. The first provider is the default one
// unless defaultProvider names another registered provider.
func NewService(resolver *Resolver, providers []ForecastProvider, defaultProvider string, searchLimit int, cacheTTL time.Duration) (*Service, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no forecast providers configured")
	}
	if searchLimit <= 0 {
		searchLimit = 5
	}

	byName := make(map[string]ForecastProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	if defaultProvider == "" {
		defaultProvider = providers[0].Name()
	}
	if _, ok := byName[defaultProvider]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, defaultProvider)
	}

	return &Service{
		resolver:        resolver,
		providers:       byName,
		defaultProvider: defaultProvider,
		searchLimit:     searchLimit,
		cache:           cache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

// Providers lists registered provider names, sorted.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search returns unique U.S. matches for query. limit <= 0 uses the configured limit.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}

	key := fmt.Sprintf("search:%d:%s", limit, strings.ToLower(strings.TrimSpace(query)))
	cached, found := s.cache.Get(key)
	observability.CacheResult("search", found)
	if found {
		return cached.([]Location), nil
	}

	locs, err := s.resolver.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, locs, cache.DefaultExpiration)
	return locs, nil
}

// Resolve returns the best U.S. match for query.
func (s *Service) Resolve(ctx context.Context, query string) (Location, error) {
	locs, err := s.Search(ctx, query, 0)
	if err != nil {
		return Location{}, err
	}
	return locs[0], nil
}

func (s *Service) provider(name string) (ForecastProvider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func forecastKey(provider string, loc Location) string {
	return fmt.Sprintf("forecast:%s:%.4f,%.4f", provider, loc.Lat, loc.Lon)
}

// Forecast returns the normalized forecast for loc, served from cache when fresh.
func (s *Service) Forecast(ctx context.Context, loc Location, providerName string) (Forecast, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return Forecast{}, err
	}

	cached, found := s.cache.Get(forecastKey(p.Name(), loc))
	observability.CacheResult("forecast", found)
	if found {
		return cached.(Forecast), nil
	}

	return s.fetchAndCache(ctx, p, loc)
}

// Refresh re-fetches the default provider's forecast for loc, bypassing the cache.
func (s *Service) Refresh(ctx context.Context, loc Location) error {
	p, err := s.provider("")
	if err != nil {
		return err
	}
	_, err = s.fetchAndCache(ctx, p, loc)
	return err
}

func (s *Service) fetchAndCache(ctx context.Context, p ForecastProvider, loc Location) (f Forecast, err error) {
	ctx, span := tracer.Start(ctx, "weather.FetchForecast", trace.WithAttributes(
		attribute.String("provider", p.Name()),
		attribute.String("location", loc.Key()),
	))
	defer func() { endSpan(span, err) }()

	log.Printf("DEBUG: fetching %s forecast for %s (%.4f,%.4f)", p.Name(), loc.Key(), loc.Lat, loc.Lon)

	f, err = p.FetchForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Printf("provider %s forecast failed for %s: %v", p.Name(), loc.Key(), err)
		return Forecast{}, err
	}

	f = f.Truncate()
	if f.Provider == "" {
		f.Provider = p.Name()
	}

	s.cache.Set(forecastKey(p.Name(), loc), f, cache.DefaultExpiration)
	return f, nil
}

// ReportFor builds the full report for an already resolved location.
func (s *Service) ReportFor(ctx context.Context, loc Location, providerName string) (Report, error) {
	f, err := s.Forecast(ctx, loc, providerName)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Location:     loc,
		Forecast:     f,
		HoursSummary: Summarize(f, HorizonHours, loc.DisplayName),
		DaysSummary:  Summarize(f, HorizonDays, loc.DisplayName),
		MapEmbedURL:  MapEmbedURL(loc.Lat, loc.Lon),
	}, nil
}

// Lookup resolves query and builds its report.
func (s *Service) Lookup(ctx context.Context, query, providerName string) (r Report, err error) {
	ctx, span := tracer.Start(ctx, "weather.Lookup", trace.WithAttributes(attribute.String("query", query)))
	defer func() { endSpan(span, err) }()

	loc, err := s.Resolve(ctx, query)
	if err != nil {
		return Report{}, err
	}
	return s.ReportFor(ctx, loc, providerName)
}
