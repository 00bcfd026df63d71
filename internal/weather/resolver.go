package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const usCountryCode = "us"

// Resolver turns free-text queries into canonical U.S. locations.
type Resolver struct {
	geocoder Geocoder
}

// NewResolver creates a Resolver backed by geocoder.
func NewResolver(geocoder Geocoder) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// Search returns the unique U.S. locations matching query, best match first.
func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInputEmpty
	}

	places, err := r.geocoder.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrMalformedResponse) {
			return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
		}
		return nil, err
	}

	locs := ToLocations(places)
	if len(locs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return locs, nil
}

// Resolve returns the best U.S. match for query.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int) (Location, error) {
	locs, err := r.Search(ctx, query, limit)
	if err != nil {
		return Location{}, err
	}
	return locs[0], nil
}

// ToLocations drops non-U.S. places, names the rest and collapses duplicate
// display names. Order is preserved; the first occurrence wins.
func ToLocations(places []Place) []Location {
	seen := make(map[string]struct{}, len(places))
	locs := make([]Location, 0, len(places))

	for _, p := range places {
		if !strings.EqualFold(p.CountryCode, usCountryCode) {
			continue
		}

		name := displayName(p)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		locs = append(locs, Location{
			DisplayName: name,
			Lat:         p.Lat,
			Lon:         p.Lon,
		})
	}
	return locs
}

func displayName(p Place) string {
	city := firstNonEmpty(p.City, p.Town, p.Village, p.Hamlet, p.County, firstSegment(p.DisplayName))
	state := firstNonEmpty(p.State, p.Region)
	if state == "" || city == "" {
		return firstNonEmpty(city, state)
	}
	return city + ", " + state
}

func firstSegment(s string) string {
	head, _, _ := strings.Cut(s, ",")
	return head
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
