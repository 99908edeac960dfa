package model

import "math/rand/v2"

// NewRNG returns the PCG generator of run number run for a seed. Runs of one
// seed draw from distinct streams.
func NewRNG(seed uint64, run int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(run)))
}
