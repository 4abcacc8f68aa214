package services

import (
	"math"
	"sort"
)

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func calculateMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func calculateStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := calculateMean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(len(values)-1)
	return math.Sqrt(variance)
}

// coefficientOfVariation returns stdev/mean, or 0 when the mean is zero so
// a flat all-zero series reads as perfectly stable.
func coefficientOfVariation(values []float64) float64 {
	mean := calculateMean(values)
	if mean == 0 {
		return 0
	}
	return calculateStdDev(values) / mean
}

// fitTrendLine fits an ordinary least-squares line of value against period
// index (0, 1, 2, ...). A degenerate series yields a zero slope through the
// mean.
func fitTrendLine(values []float64) (slope float64, intercept float64) {
	n := len(values)
	if n < 2 {
		return 0, calculateMean(values)
	}

	var sumX, sumY, sumXX, sumXY float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXX += x * x
		sumXY += x * v
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, calculateMean(values)
	}
	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept
}

// roundQuantity rounds a forecasted quantity to two decimal places and
// clamps negatives to zero; the pipeline never emits negative demand.
func roundQuantity(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
