package weather

import "math"

// UnavailableCondition is the label for codes outside the table.
const UnavailableCondition = "Forecast unavailable"

// UnknownWindDirection is shown when the provider gave no direction.
const UnknownWindDirection = "--"

// WMO weather interpretation codes as published by Open-Meteo.
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeCode maps a weather code to its condition text.
func DescribeCode(code int) string {
	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return UnavailableCondition
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirectionOf converts degrees to one of 8 compass points. Each point
// owns the 45° sector starting at its bearing, so 44° is still N.
func WindDirectionOf(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return UnknownWindDirection
	}
	idx := int(math.Floor(degrees/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return compassPoints[idx]
}

// WindDirectionOfPtr is WindDirectionOf for nullable provider values.
func WindDirectionOfPtr(degrees *float64) string {
	if degrees == nil {
		return UnknownWindDirection
	}
	return WindDirectionOf(*degrees)
}

var compass16 = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// FoldCompass maps a 16-point label (e.g. "NNW") onto the 8-point set.
func FoldCompass(label string) string {
	deg, ok := compass16[label]
	if !ok {
		return UnknownWindDirection
	}
	return WindDirectionOf(deg)
}

// roundHalfUp rounds .5 toward +Inf, matching how the UI has always rounded.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
