package domain

import (
	"fmt"
	"math"
)

// Risk levels derived from exceedance probability.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// stableTrendFraction is the share of a variable's typical magnitude a
// per-decade change must reach before the trend stops being "stable".
const stableTrendFraction = 0.02

// RiskLevel maps an exceedance probability (0–100) to the documented
// three-level scale: <30% low, 30–60% moderate, >60% high.
func RiskLevel(probability float64) string {
	switch {
	case probability < 30:
		return RiskLow
	case probability <= 60:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// trendDirection labels a per-decade slope relative to the variable's
// typical magnitude. Slopes under 2% of typical magnitude per decade are
// stable; the rest follow the sign.
func trendDirection(slopePerDecade, typicalMagnitude float64) string {
	tolerance := stableTrendFraction * math.Abs(typicalMagnitude)
	if math.Abs(slopePerDecade) < tolerance {
		return TrendStable
	}
	if slopePerDecade > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}

// Interpret renders the templated natural-language summary for a result.
func Interpret(r AnalysisResult) string {
	text := fmt.Sprintf(
		"Based on %d years of data, there is a %.1f%% chance that %s exceeds %g %s on this date.",
		r.Years, r.ExceedanceProbability, r.Name, r.Threshold, r.Units,
	)
	text += fmt.Sprintf(" The historical average is %.2f %s.", r.Mean, r.Units)

	switch r.Trend.Direction {
	case TrendStable:
		text += " The long-term trend is stable."
	default:
		text += fmt.Sprintf(" The long-term trend is %s by %.2f %s per decade.",
			r.Trend.Direction, math.Abs(r.Trend.SlopePerDecade), r.Units)
	}

	return text
}
