package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// NominatimGeocoder implements weather.Geocoder against OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{
		name:    "nominatim",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: newHTTPConfig(client, userAgent),
		circuit: newCircuitBreaker("nominatim"),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     *struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Hamlet      string `json:"hamlet"`
		County      string `json:"county"`
		State       string `json:"state"`
		Region      string `json:"region"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("addressdetails", "1")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("q", query)

	u := fmt.Sprintf("%s/search?%s", g.baseURL, values.Encode())

	var results []nominatimResult
	if err := getJSON(ctx, g.httpCfg, g.circuit, u, &results); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}

	places := make([]weather.Place, 0, len(results))
	for _, r := range results {
		// Records without address details cannot be classified by country.
		if r.Address == nil {
			continue
		}

		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}

		displayName := r.DisplayName
		if displayName == "" {
			displayName = r.Name
		}

		places = append(places, weather.Place{
			DisplayName: displayName,
			CountryCode: r.Address.CountryCode,
			City:        r.Address.City,
			Town:        r.Address.Town,
			Village:     r.Address.Village,
			Hamlet:      r.Address.Hamlet,
			County:      r.Address.County,
			State:       r.Address.State,
			Region:      r.Address.Region,
			Lat:         lat,
			Lon:         lon,
		})
	}
	return places, nil
}
