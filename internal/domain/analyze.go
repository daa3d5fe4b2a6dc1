package domain

import (
	"fmt"
	"math"
)

// Analyze computes the full statistics set for one variable's sample
// series against an exceedance threshold. Returns ErrNoData when the
// series is empty; a degenerate trend (n ≤ 1 or zero variance) does not
// abort the analysis and is flagged on the trend summary instead.
func Analyze(v Variable, samples []Sample, threshold float64) (AnalysisResult, error) {
	info, ok := v.Info()
	if !ok {
		return AnalysisResult{}, fmt.Errorf("unknown variable %q", string(v))
	}
	if len(samples) == 0 {
		return AnalysisResult{}, fmt.Errorf("%s: %w", info.Name, ErrNoData)
	}

	values := Values(samples)

	result := AnalysisResult{
		Variable:   v,
		Name:       info.Name,
		Units:      info.Units,
		DataSource: info.DataSource,
		Samples:    samples,
		Years:      yearSpan(samples),
		Mean:       Mean(values),
		Median:     Percentile(values, 50),
		StdDev:     StdDev(values),
		Min:        minValue(values),
		Max:        maxValue(values),
		Percentiles: Percentiles{
			P10: Percentile(values, 10),
			P25: Percentile(values, 25),
			P50: Percentile(values, 50),
			P75: Percentile(values, 75),
			P90: Percentile(values, 90),
		},
		Threshold:  threshold,
		TotalCount: len(values),
	}

	result.ExceedanceProbability, result.ExceedCount = ExceedanceProbability(values, threshold)

	trend := Trend(values)
	result.Trend = TrendSummary{
		SlopePerYear:   trend.SlopePerYear,
		SlopePerDecade: trend.SlopePerDecade,
		Intercept:      trend.Intercept,
		RSquared:       trend.RSquared,
		Confident:      trend.Confident,
		Direction:      trendDirection(trend.SlopePerDecade, info.TypicalMagnitude),
	}

	result.RiskLevel = RiskLevel(result.ExceedanceProbability)
	result.Interpretation = Interpret(result)

	return result, nil
}

// yearSpan counts distinct years covered by the series. Window pooling can
// put several samples in one year, so this is not len(samples).
func yearSpan(samples []Sample) int {
	seen := make(map[int]struct{}, len(samples))
	for _, s := range samples {
		seen[s.Year] = struct{}{}
	}
	return len(seen)
}

func minValue(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

func maxValue(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
