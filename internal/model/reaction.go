package model

import (
	"math"
	"math/rand/v2"

	"github.com/wildstyl3r/ncmc/internal/constants"
	"github.com/wildstyl3r/ncmc/internal/xs"
)

type Neutron struct {
	Energy float64 // [eV]
}

func newPopulation(n int, energy float64) []Neutron {
	population := make([]Neutron, n)
	for i := range population {
		population[i] = Neutron{Energy: energy}
	}
	return population
}

// Probabilities of each reaction channel; Elastic is the remainder.
type Probabilities struct {
	Fission, Capture, Inelastic, Elastic float64
}

func ChannelProbabilities(nuclide CrossSections, e float64) (p Probabilities, err error) {
	var total, fission, capture, inelastic float64
	if total, err = nuclide.Total(e); err != nil {
		return
	}
	if !(total > 0) || math.IsInf(total, 0) {
		err = &DegenerateMixtureError{Energy: e, Macroscopic: total, Microscopic: true, NuclideNames: [2]string{nuclide.Name(), nuclide.Name()}}
		return
	}
	if fission, err = nuclide.Fission(e); err != nil {
		return
	}
	if capture, err = nuclide.Capture(e); err != nil {
		return
	}
	if inelastic, err = nuclide.Inelastic(e); err != nil {
		return
	}
	p.Fission = fission / total
	p.Capture = capture / total
	p.Inelastic = inelastic / total
	p.Elastic = 1 - p.Fission - p.Capture - p.Inelastic
	return
}

// Nu is the mean number of prompt neutrons per fission at energy e [eV].
func Nu(e float64) float64 {
	if e <= constants.NuBoundary {
		return constants.NuThermal
	}
	return constants.NuFast
}

// stochasticRound keeps the expected value of nu. One draw.
func stochasticRound(rng *rand.Rand, nu float64) int {
	whole := math.Floor(nu)
	if rng.Float64() < nu-whole {
		return int(whole) + 1
	}
	return int(whole)
}

type Tally struct {
	Fission, Capture, Inelastic, Elastic int
}

func (t *Tally) add(channel xs.Channel) {
	switch channel {
	case xs.Fission:
		t.Fission++
	case xs.Capture:
		t.Capture++
	case xs.Inelastic:
		t.Inelastic++
	case xs.Elastic:
		t.Elastic++
	}
}

func (t *Tally) merge(o Tally) {
	t.Fission += o.Fission
	t.Capture += o.Capture
	t.Inelastic += o.Inelastic
	t.Elastic += o.Elastic
}

func (t Tally) Reactions() int {
	return t.Fission + t.Capture + t.Inelastic + t.Elastic
}

// Sampler resolves one reaction per neutron.
// Draw order: nuclide selection, channel, then the channel's own draws.
type Sampler struct {
	Mixture   *Mixture
	Spectrum  WattSpectrum
	Inelastic ScatteringFunction
	Elastic   ScatteringFunction
}

func NewSampler(mixture *Mixture, spectrum WattSpectrum) *Sampler {
	return &Sampler{
		Mixture:   mixture,
		Spectrum:  spectrum,
		Inelastic: inelasticLevel,
		Elastic:   elasticDownscatter,
	}
}

// React appends the next-generation neutrons produced by n to next.
func (s *Sampler) React(rng *rand.Rand, n Neutron, next []Neutron) ([]Neutron, xs.Channel, error) {
	nuclide, err := s.Mixture.Select(rng, n.Energy)
	if err != nil {
		return next, xs.Total, err
	}
	p, err := ChannelProbabilities(nuclide, n.Energy)
	if err != nil {
		return next, xs.Total, err
	}

	roll := rng.Float64()
	switch {
	case roll < p.Fission:
		for range stochasticRound(rng, Nu(n.Energy)) {
			e, err := s.Spectrum.Sample(rng)
			if err != nil {
				return next, xs.Fission, err
			}
			next = append(next, Neutron{Energy: e * constants.MeV})
		}
		return next, xs.Fission, nil

	case roll < p.Fission+p.Capture:
		return next, xs.Capture, nil

	case roll < p.Fission+p.Capture+p.Inelastic:
		return append(next, Neutron{Energy: s.Inelastic(rng, n.Energy)}), xs.Inelastic, nil

	default:
		return append(next, Neutron{Energy: s.Elastic(rng, n.Energy)}), xs.Elastic, nil
	}
}

// advance reacts every neutron of population in order.
func (s *Sampler) advance(rng *rand.Rand, population []Neutron) ([]Neutron, Tally, error) {
	var tally Tally
	next := make([]Neutron, 0, len(population))
	for i := range population {
		var channel xs.Channel
		var err error
		next, channel, err = s.React(rng, population[i], next)
		if err != nil {
			return nil, tally, err
		}
		tally.add(channel)
	}
	return next, tally, nil
}
