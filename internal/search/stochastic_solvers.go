package search

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wildstyl3r/ncmc/internal/utils"
)

var ErrNotConverged = errors.New("stochastic approximation did not converge")

type StochasticApproximation struct {
	LeftBound, RightBound float64
	InitialTheta          float64
	ApproxFDerivative     float64 // slope of f near the root, sets the gain
	ThetaPrecision        float64 // confidence interval width to stop at
	Window                int     // last iterates the interval is estimated on
	MaxSteps              int
	Verbose               bool
}

// Solve finds the root of a noisy increasing f with Robbins-Monro iterates
// theta_{i+1} = theta_i - f(theta_i) / (ApproxFDerivative (i+1)). An iterate
// leaving the bounds is replaced by a uniform draw from them. The estimate is
// the mean of the last Window iterates, returned with its 95% confidence
// interval width.
func (sa StochasticApproximation) Solve(rng *rand.Rand, f func(step int, theta float64) (float64, error)) (theta, confidenceInterval float64, err error) {
	if !(sa.ApproxFDerivative > 0) || sa.Window < 2 {
		return math.NaN(), math.Inf(1), fmt.Errorf("invalid solver setup: derivative %v, window %d", sa.ApproxFDerivative, sa.Window)
	}
	a := 1 / sa.ApproxFDerivative
	if sa.Verbose {
		fmt.Printf("\ncalculated a-factor value: %v\n\n", a)
	}
	thetas := []float64{sa.InitialTheta}
	fValue, err := f(0, sa.InitialTheta)
	if err != nil {
		return math.NaN(), math.Inf(1), err
	}
	confidenceInterval = math.Inf(1)
	for i := 0; confidenceInterval > sa.ThetaPrecision; i++ {
		if i >= sa.MaxSteps {
			return utils.Average(thetas[max(0, len(thetas)-sa.Window):]), confidenceInterval, ErrNotConverged
		}
		newTheta := thetas[i] - fValue*a/float64(i+1)
		if newTheta < sa.LeftBound || sa.RightBound < newTheta {
			newTheta = sa.LeftBound + rng.Float64()*(sa.RightBound-sa.LeftBound)
			if sa.Verbose {
				println("RAND theta")
			}
		}
		thetas = append(thetas, newTheta)
		if fValue, err = f(i+1, newTheta); err != nil {
			return math.NaN(), math.Inf(1), err
		}

		if len(thetas) >= sa.Window {
			last := thetas[len(thetas)-sa.Window:]
			_, halfWidth := utils.MeanAndHalfWidth95(last)
			confidenceInterval = 2 * halfWidth
		}
	}
	return utils.Average(thetas[len(thetas)-sa.Window:]), confidenceInterval, nil
}
