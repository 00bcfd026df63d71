package weather

import (
	"fmt"
	"strings"
)

// Horizon selects the forecast window a summary covers.
type Horizon string

const (
	HorizonHours Horizon = "hours"
	HorizonDays  Horizon = "days"

	hoursWindow = 8
	daysWindow  = 5
)

// ParseHorizon validates a horizon name.
func ParseHorizon(s string) (Horizon, error) {
	switch h := Horizon(strings.ToLower(strings.TrimSpace(s))); h {
	case HorizonHours, HorizonDays:
		return h, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidHorizon, s)
	}
}

type rule struct {
	when   func(WindowStats) bool
	clause string
}

// ruleSet is one horizon's advisory tables. limits and extras apply every
// matching entry in order; for layers only the first match applies.
type ruleSet struct {
	limits []rule
	layers []rule
	extras []rule
}

var hourlyRules = ruleSet{
	limits: []rule{
		{func(s WindowStats) bool { return s.MaxRain >= 60 }, "outdoor events or long walks"},
		{func(s WindowStats) bool { return s.MaxWind >= 25 }, "cycling or exposed workouts"},
		{func(s WindowStats) bool { return s.MeanTemp >= 90 }, "strenuous midday activity"},
		{func(s WindowStats) bool { return s.MeanTemp <= 35 }, "extended outdoor exposure"},
	},
	layers: []rule{
		{func(s WindowStats) bool { return s.MeanTemp <= 45 }, "a warm jacket"},
		{func(s WindowStats) bool { return s.MeanTemp <= 65 }, "a light jacket"},
		{func(WindowStats) bool { return true }, "breathable layers"},
	},
	extras: []rule{
		{func(s WindowStats) bool { return s.MaxRain >= 45 }, "water-resistant footwear or an umbrella"},
		{func(s WindowStats) bool { return s.MaxWind >= 20 }, "a wind-resistant layer"},
	},
}

// Daily cutoffs differ from the hourly ones on purpose; keep them separate.
var dailyRules = ruleSet{
	limits: []rule{
		{func(s WindowStats) bool { return s.MaxRain >= 55 }, "outdoor events or long walks"},
		{func(s WindowStats) bool { return s.MaxWind >= 28 }, "cycling or exposed workouts"},
		{func(s WindowStats) bool { return s.MeanHigh >= 92 }, "strenuous midday activity"},
		{func(s WindowStats) bool { return s.MeanLow <= 35 }, "extended outdoor exposure"},
	},
	layers: []rule{
		{func(s WindowStats) bool { return dailyMidpoint(s) <= 40 }, "a warm jacket"},
		{func(s WindowStats) bool { return dailyMidpoint(s) <= 68 }, "a light jacket"},
		{func(WindowStats) bool { return true }, "breathable layers"},
	},
	extras: []rule{
		{func(s WindowStats) bool { return s.MaxRain >= 45 }, "water-resistant footwear or an umbrella"},
		{func(s WindowStats) bool { return s.MaxWind >= 22 }, "a wind-resistant layer"},
	},
}

func dailyMidpoint(s WindowStats) float64 {
	return (s.MeanHigh + s.MeanLow) / 2
}

func (rs ruleSet) limitClauses(s WindowStats) []string {
	return matching(rs.limits, s)
}

func (rs ruleSet) clothingClauses(s WindowStats) []string {
	var out []string
	for _, r := range rs.layers {
		if r.when(s) {
			out = append(out, r.clause)
			break
		}
	}
	return append(out, matching(rs.extras, s)...)
}

func matching(rules []rule, s WindowStats) []string {
	var out []string
	for _, r := range rules {
		if r.when(s) {
			out = append(out, r.clause)
		}
	}
	return out
}

// EmptySummary is returned when there is nothing to summarize.
func EmptySummary(locationName string) string {
	return fmt.Sprintf("No forecast data is available for %s right now.", locationName)
}

// Summarize builds the advisory text for the given horizon. It never fails:
// an empty window or unknown horizon yields the placeholder sentence.
func Summarize(f Forecast, horizon Horizon, locationName string) string {
	switch horizon {
	case HorizonHours:
		return summarizeHours(f.Hourly, locationName)
	case HorizonDays:
		return summarizeDays(f.Daily, locationName)
	default:
		return EmptySummary(locationName)
	}
}

func summarizeHours(periods []HourlyPeriod, name string) string {
	if len(periods) > hoursWindow {
		periods = periods[:hoursWindow]
	}
	if len(periods) == 0 {
		return EmptySummary(name)
	}

	s := AggregateHourly(periods)
	head := fmt.Sprintf(
		"Next %d hours in %s: %s, around %.0f°F with up to %.0f%% chance of precipitation and winds up to %.0f mph.",
		len(periods), name, strings.ToLower(DescribeCode(s.DominantWMO)), s.MeanTemp, s.MaxRain, s.MaxWind,
	)
	return advisory(head, hourlyRules, s)
}

func summarizeDays(periods []DailyPeriod, name string) string {
	if len(periods) > daysWindow {
		periods = periods[:daysWindow]
	}
	if len(periods) == 0 {
		return EmptySummary(name)
	}

	s := AggregateDaily(periods)
	head := fmt.Sprintf(
		"Next %d days in %s: mostly %s, highs near %.0f°F and lows near %.0f°F, up to %.0f%% chance of precipitation and winds up to %.0f mph.",
		len(periods), name, strings.ToLower(DescribeCode(s.DominantWMO)), s.MeanHigh, s.MeanLow, s.MaxRain, s.MaxWind,
	)
	return advisory(head, dailyRules, s)
}

func advisory(head string, rs ruleSet, s WindowStats) string {
	var b strings.Builder
	b.WriteString(head)

	if limits := rs.limitClauses(s); len(limits) > 0 {
		b.WriteString(" Consider limiting ")
		b.WriteString(strings.Join(limits, ", "))
		b.WriteString(".")
	} else {
		b.WriteString(" No weather limits on outdoor plans.")
	}

	b.WriteString(" Wear ")
	b.WriteString(strings.Join(rs.clothingClauses(s), ", "))
	b.WriteString(".")
	return b.String()
}
