package model

import (
	"math/rand/v2"

	"github.com/wildstyl3r/ncmc/internal/constants"
)

// ScatteringFunction returns the energy [eV] of a scattered neutron.
type ScatteringFunction func(rng *rand.Rand, energy float64) (energyAfter float64)

// inelasticLevel leaves the nucleus excited: the neutron keeps a uniform
// energy in [InelasticMinEnergy, InelasticMaxEnergy], never gaining energy.
func inelasticLevel(rng *rand.Rand, energy float64) float64 {
	energyAfter := constants.InelasticMinEnergy + (constants.InelasticMaxEnergy-constants.InelasticMinEnergy)*rng.Float64()
	if energyAfter >= energy {
		return constants.InelasticFallback * energy
	}
	return energyAfter
}

func elasticDownscatter(rng *rand.Rand, energy float64) float64 {
	return energy * (constants.ElasticMinFactor + (1-constants.ElasticMinFactor)*rng.Float64())
}
