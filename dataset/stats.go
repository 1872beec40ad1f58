package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile of x using linear interpolation between
// closest ranks. x need not be sorted. Empty input yields NaN.
func Quantile(x []float64, p float64) float64 {
	if len(x) == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	p = math.Max(0, math.Min(1, p))
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Median returns the 0.5 quantile of x.
func Median(x []float64) float64 { return Quantile(x, 0.5) }

// Mean returns the arithmetic mean, NaN for empty input.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation, NaN below two values.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// Variance returns the sample variance, NaN below two values.
func Variance(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Variance(x, nil)
}

// Min returns the smallest value, NaN for empty input.
func Min(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Min(x)
}

// Max returns the largest value, NaN for empty input.
func Max(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Max(x)
}

// Sum returns the total, zero for empty input.
func Sum(x []float64) float64 { return floats.Sum(x) }

// Aggregate applies a named reduction: count, sum, mean, min, max, median
// or std.
func Aggregate(name string, x []float64) (float64, error) {
	switch name {
	case "count":
		return float64(len(x)), nil
	case "sum":
		return Sum(x), nil
	case "mean":
		return Mean(x), nil
	case "min":
		return Min(x), nil
	case "max":
		return Max(x), nil
	case "median":
		return Median(x), nil
	case "std":
		return StdDev(x), nil
	default:
		return 0, ErrUnknownAggregation
	}
}
