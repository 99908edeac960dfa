package utils

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/wildstyl3r/ncmc/internal/constants"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for _, v := range arr {
		r += v
	}
	return
}

// Average is NaN for an empty sample.
func Average[T Number](s []T) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range s {
		sum += float64(v)
	}
	return sum / float64(len(s))
}

// MeanAndVariance returns a zero unbiased variance for a single value.
func MeanAndVariance[T Number](s []T, unbiased bool) (mean, variance float64) {
	mean = Average(s)
	for _, v := range s {
		d := float64(v) - mean
		variance += d * d
	}
	switch n := len(s); {
	case unbiased && n > 1:
		variance /= float64(n - 1)
	case !unbiased && n > 0:
		variance /= float64(n)
	default:
		variance = 0
	}
	return
}

func Variance[T Number](s []T, unbiased bool) float64 {
	_, v := MeanAndVariance(s, unbiased)
	return v
}

// MeanAndHalfWidth95 is the sample mean with the half-width of its normal 95%
// confidence interval.
func MeanAndHalfWidth95[T Number](s []T) (mean, halfWidth float64) {
	mean, variance := MeanAndVariance(s, true)
	if len(s) < 2 {
		return mean, 0
	}
	return mean, constants.Quantile95 * math.Sqrt(variance/float64(len(s)))
}
