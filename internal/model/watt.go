package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/wildstyl3r/ncmc/internal/constants"
)

type SamplerExhaustedError struct {
	Attempts int
}

func (e *SamplerExhaustedError) Error() string {
	return fmt.Sprintf("watt spectrum: no candidate accepted in %d attempts", e.Attempts)
}

// WattSpectrum draws prompt fission neutron energies [MeV] by rejection
// sampling of exp(-A x) sinh(sqrt(B x)) on [0, MaxEnergy].
// Envelope is not a strict bound of the density for the default constants:
// candidates above it are always accepted.
type WattSpectrum struct {
	A, B      float64 // [MeV^-1]
	MaxEnergy float64 // [MeV]
	Envelope  float64
	Attempts  int
}

func DefaultWattSpectrum() WattSpectrum {
	return WattSpectrum{
		A:         constants.WattA,
		B:         constants.WattB,
		MaxEnergy: constants.WattMaxEnergy,
		Envelope:  constants.WattEnvelope,
		Attempts:  constants.WattAttempts,
	}
}

func (w WattSpectrum) Density(x float64) float64 {
	return math.Exp(-w.A*x) * math.Sinh(math.Sqrt(w.B*x))
}

// Sample consumes two draws per candidate: energy, then acceptance.
func (w WattSpectrum) Sample(rng *rand.Rand) (float64, error) {
	for range w.Attempts {
		x := w.MaxEnergy * rng.Float64()
		if rng.Float64() < w.Density(x)/w.Envelope {
			return x, nil
		}
	}
	return 0, &SamplerExhaustedError{Attempts: w.Attempts}
}
