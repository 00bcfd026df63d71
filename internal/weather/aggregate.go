package weather

// WindowStats is the aggregated view of a forecast window that summary rules
// are evaluated against. Temperatures are °F, wind is mph, rain is percent.
type WindowStats struct {
	Periods     int
	MeanTemp    float64 // hourly windows
	MeanHigh    float64 // daily windows
	MeanLow     float64 // daily windows
	MaxRain     float64
	MaxWind     float64
	DominantWMO int
}

// AggregateHourly combines hourly periods into WindowStats.
// Numeric fields are averaged or maxed; the condition is selected by majority.
func AggregateHourly(periods []HourlyPeriod) WindowStats {
	if len(periods) == 0 {
		return WindowStats{DominantWMO: -1}
	}

	var sumTemp float64
	codes := make([]int, 0, len(periods))
	stats := WindowStats{Periods: len(periods)}

	for _, p := range periods {
		sumTemp += p.Temperature
		stats.MaxRain = maxFloat(stats.MaxRain, valueOr(p.PrecipitationProbability, 0))
		stats.MaxWind = maxFloat(stats.MaxWind, p.WindSpeed)
		codes = append(codes, p.WeatherCode)
	}

	stats.MeanTemp = roundHalfUp(sumTemp / float64(len(periods)))
	stats.MaxRain = roundHalfUp(stats.MaxRain)
	stats.MaxWind = roundHalfUp(stats.MaxWind)
	stats.DominantWMO = dominantCode(codes)
	return stats
}

// AggregateDaily combines daily periods into WindowStats.
func AggregateDaily(periods []DailyPeriod) WindowStats {
	if len(periods) == 0 {
		return WindowStats{DominantWMO: -1}
	}

	var sumHigh, sumLow float64
	codes := make([]int, 0, len(periods))
	stats := WindowStats{Periods: len(periods)}

	for _, p := range periods {
		sumHigh += p.HighTemp
		sumLow += p.LowTemp
		stats.MaxRain = maxFloat(stats.MaxRain, valueOr(p.PrecipitationProbability, 0))
		stats.MaxWind = maxFloat(stats.MaxWind, p.WindSpeed)
		codes = append(codes, p.WeatherCode)
	}

	n := float64(len(periods))
	stats.MeanHigh = roundHalfUp(sumHigh / n)
	stats.MeanLow = roundHalfUp(sumLow / n)
	stats.MaxRain = roundHalfUp(stats.MaxRain)
	stats.MaxWind = roundHalfUp(stats.MaxWind)
	stats.DominantWMO = dominantCode(codes)
	return stats
}

// dominantCode picks the most frequent code; on a tie the code seen first wins.
func dominantCode(codes []int) int {
	counts := make(map[int]int, len(codes))
	order := make([]int, 0, len(codes))
	for _, c := range codes {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	best, bestCount := -1, 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func maxFloat(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}
