// Package growth holds the growth, conversion and performance formulas shared by
// the analytics and admin performance endpoints.
package growth

import (
	"math"
	"time"
)

// Percent compares two equal length windows
func Percent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current - previous) / previous * 100)
}

// ConversionRate as a percent with 2 decimals
func ConversionRate(conversions, clicks int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return Round2(float64(conversions) / float64(clicks) * 100)
}

// Round2 rounds half away from zero to 2 decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type band struct {
	above  float64
	points int
}

var earningsBands = []band{{10000, 40}, {5000, 30}, {1000, 20}, {100, 10}}
var conversionBands = []band{{5, 30}, {3, 25}, {1, 15}, {0.5, 10}}
var clickBands = []band{{10000, 30}, {5000, 25}, {1000, 15}, {100, 10}}

// PerformanceScore ranks an affiliate on a 0-100 scale. It is only used for display.
func PerformanceScore(earnings, conversionRate float64, clicks int64) int {
	score := points(earnings, earningsBands) +
		points(conversionRate, conversionBands) +
		points(float64(clicks), clickBands)
	if score > 100 {
		score = 100
	}
	return score
}

func points(value float64, bands []band) int {
	for _, b := range bands {
		if value > b.above {
			return b.points
		}
	}
	return 0
}

// Window is a half open [From, To) time range
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Windows returns the trailing window of the given days ending at now and the
// window of the same duration right before it
func Windows(now time.Time, days int) (current Window, previous Window) {
	if days <= 0 {
		days = 30
	}
	length := time.Duration(days) * 24 * time.Hour
	current = Window{From: now.Add(-length), To: now}
	previous = Window{From: current.From.Add(-length), To: current.From}
	return current, previous
}
