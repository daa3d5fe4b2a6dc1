package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// StdDev returns the population standard deviation (÷n, not ÷(n−1)).
// Returns NaN for an empty slice and 0 when all values are equal.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.PopStdDev(values, nil)
}

// Percentile returns the pth percentile of values using linear
// interpolation between ranks: the percentile sits at index p/100·(n−1)
// of the ascending-sorted slice. Returns NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ExceedanceProbability returns the percentage of values strictly greater
// than threshold, in [0, 100], plus the raw exceed count. Returns (0, 0)
// for an empty slice.
func ExceedanceProbability(values []float64, threshold float64) (float64, int) {
	if len(values) == 0 {
		return 0, 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return 100 * float64(count) / float64(len(values)), count
}

// TrendResult is an ordinary least-squares fit of value on sample index.
type TrendResult struct {
	SlopePerYear   float64
	SlopePerDecade float64
	Intercept      float64

	// RSquared is the coefficient of determination. Zero with
	// Confident == false when the fit is degenerate.
	RSquared float64

	// Confident is false when fewer than 2 samples exist or the series
	// has zero variance, both of which leave R² undefined.
	Confident bool
}

// Trend fits value = intercept + slope·index over the series. Degenerate
// inputs (n ≤ 1 or constant values) yield a zero slope flagged as not
// confident rather than an error.
func Trend(values []float64) TrendResult {
	if len(values) < 2 {
		intercept := 0.0
		if len(values) == 1 {
			intercept = values[0]
		}
		return TrendResult{Intercept: intercept}
	}

	if stat.PopVariance(values, nil) == 0 {
		// A flat series has a well-defined slope of zero, but R² is
		// 0/0 and carries no information.
		return TrendResult{Intercept: values[0]}
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	r2 := stat.RSquared(xs, values, nil, intercept, slope)

	return TrendResult{
		SlopePerYear:   slope,
		SlopePerDecade: slope * 10,
		Intercept:      intercept,
		RSquared:       r2,
		Confident:      true,
	}
}
