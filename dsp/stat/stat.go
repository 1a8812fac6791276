// Package stat holds the small set of statistical primitives shared by
// the onset, tempo, meter and key packages: mean, standard
// deviation, median and Pearson correlation, all accumulated in double
// precision per spec §5. Adapted from the teacher's
// algorithms/common/math.go and algorithms/stats/correlation.go, built
// on gonum instead of hand-rolled loops.
package stat

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StdDev returns the population standard deviation (ddof=0), or 0 for
// fewer than 2 samples.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	mean := Mean(data)
	variance := 0.0
	for _, v := range data {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}

// ZScore normalises data to zero mean and unit variance, leaving data
// unscaled when the standard deviation is at or below eps.
func ZScore(data []float64, eps float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if len(data) == 0 {
		return out
	}
	mean := Mean(data)
	std := StdDev(data)
	if std > eps {
		for i := range out {
			out[i] = (out[i] - mean) / std
		}
	}
	return out
}

// Median returns the median of data via gonum's empirical quantile at
// p=0.5, without mutating the input.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// PearsonCorrelation returns the Pearson correlation coefficient of a
// and b (equal length required; returns 0 on mismatch or degenerate
// input).
func PearsonCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	corr := stat.Correlation(a, b, nil)
	if floats.HasNaN(a) || floats.HasNaN(b) {
		return 0.0
	}
	if corr != corr { // NaN guard for zero-variance inputs
		return 0.0
	}
	return corr
}
