package weather

import (
	"fmt"
	"net/url"
)

const (
	mapEmbedBase = "https://www.openstreetmap.org/export/embed.html"
	mapSpanDeg   = 0.05
)

// MapEmbedURL returns an OpenStreetMap embed URL centered on lat/lon with a marker.
func MapEmbedURL(lat, lon float64) string {
	values := url.Values{}
	values.Set("bbox", fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", lon-mapSpanDeg, lat-mapSpanDeg, lon+mapSpanDeg, lat+mapSpanDeg))
	values.Set("layer", "mapnik")
	values.Set("marker", fmt.Sprintf("%.4f,%.4f", lat, lon))
	return mapEmbedBase + "?" + values.Encode()
}
