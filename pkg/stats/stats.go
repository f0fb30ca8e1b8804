// Package stats provides the descriptive statistics and the feature scaler
// the preprocessing stages build on. NaN cells are ignored by every
// aggregate so the functions can run on columns before imputation.
package stats

import (
	"math"
	"sort"
)

// Mean returns the average of the non-NaN values, 0 for an empty input.
func Mean(x []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Variance returns the population variance of the non-NaN values.
func Variance(x []float64) float64 {
	sum, sumSq, n := 0.0, 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sumSq += v * v
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// Std returns the population standard deviation of the non-NaN values.
func Std(x []float64) float64 { return math.Sqrt(Variance(x)) }

// MinMax returns the smallest and largest non-NaN values.
func MinMax(x []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// Median returns the median of the non-NaN values. The input is not
// modified.
func Median(x []float64) float64 { return Percentile(x, 50) }

// Mode returns the most frequent non-NaN value, ties broken by first
// occurrence.
func Mode(x []float64) float64 {
	counts := make(map[float64]int)
	best, bestCount := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// Percentile returns the p-th percentile (0..100) of the non-NaN values
// with linear interpolation between ranks.
func Percentile(x []float64, p float64) float64 {
	vals := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	n := len(vals)
	if n == 0 {
		return 0
	}
	sort.Float64s(vals)
	if p <= 0 {
		return vals[0]
	}
	if p >= 100 {
		return vals[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return vals[lo]
	}
	w := rank - float64(lo)
	return vals[lo]*(1-w) + vals[hi]*w
}
