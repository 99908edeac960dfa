package model

import (
	"fmt"
	"math"

	"github.com/wildstyl3r/ncmc/internal/config"
	"github.com/wildstyl3r/ncmc/internal/search"
)

// seed stride between search steps, the 64-bit golden ratio
const stepSeedStride uint64 = 0x9e3779b97f4a7c15

// CriticalityStep runs every history of a model at the given enrichment and
// returns k - 1. Every step draws from its own seed, negative steps are
// preliminary.
func CriticalityStep(step int, enrichment float64, parameters config.ModelParameters) (loss float64, dataExtractor *DataExtractor, err error) {
	if parameters.Verbose() {
		if step >= 0 {
			fmt.Printf("step %d\n", step)
		} else {
			fmt.Println("preliminary step")
		}
	}
	parameters.FissileDensity = enrichment
	parameters.FertileDensity = 1 - enrichment
	parameters.Seed += uint64(step) * stepSeedStride
	runs, err := RunAll(&parameters)
	if err != nil {
		return math.NaN(), nil, err
	}
	dataExtractor = NewDataExtractor(&parameters, runs)
	k := dataExtractor.MultiplicationFactor()
	if math.IsNaN(k) {
		return math.NaN(), dataExtractor, fmt.Errorf("enrichment %v: no generation transition to estimate k from", enrichment)
	}
	if parameters.Verbose() {
		fmt.Printf("enrichment: %v\nmultiplication factor: %.6f\n", enrichment, k)
	}
	return k - 1, dataExtractor, nil
}

// SearchCriticalEnrichment finds the enrichment at which k = 1. Two
// preliminary runs at the ends of [0, 1] set the initial guess and the gain.
func SearchCriticalEnrichment(parameters config.ModelParameters) (enrichment, confidenceInterval float64, err error) {
	low, _, err := CriticalityStep(-1, 0, parameters)
	if err != nil {
		return math.NaN(), math.Inf(1), err
	}
	high, _, err := CriticalityStep(-2, 1, parameters)
	if err != nil {
		return math.NaN(), math.Inf(1), err
	}
	if !(low < 0 && high > 0) {
		return math.NaN(), math.Inf(1), fmt.Errorf("k - 1 does not change sign on [0, 1]: %v, %v", low, high)
	}

	sa := search.StochasticApproximation{
		LeftBound:         0,
		RightBound:        1,
		InitialTheta:      -low / (high - low),
		ApproxFDerivative: high - low,
		ThetaPrecision:    parameters.EnrichmentPrecision,
		Window:            parameters.SearchWindow,
		MaxSteps:          parameters.SearchMaxSteps,
		Verbose:           parameters.Verbose(),
	}
	return sa.Solve(NewRNG(parameters.Seed, -1), func(step int, theta float64) (float64, error) {
		loss, _, err := CriticalityStep(step, theta, parameters)
		return loss, err
	})
}
