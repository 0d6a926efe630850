// Package stats holds the NaN-aware numeric helpers shared by the table builders.
// An empty input is "unknown" and yields NaN, never 0, except for sums.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Ratio divides a by b and returns NaN when b is zero or either side is NaN
func Ratio(a, b float64) float64 {
	if b == 0 || math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return a / b
}

// Sum returns the sum of the values, 0 for an empty slice
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// Min returns the smallest value or NaN for an empty slice
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Min(values)
}

// Max returns the largest value or NaN for an empty slice
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Max(values)
}

// StdDev returns the sample standard deviation (N-1 denominator).
// Fewer than two values yield NaN.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// Percentile returns the p-th quantile (0 <= p <= 1) using linear interpolation
// between the closest ranks. An empty slice yields NaN.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 || p < 0 || p > 1 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// MaxIgnoringNaN returns the larger of a and b, treating NaN as absent
func MaxIgnoringNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case b > a:
		return b
	default:
		return a
	}
}
