package model

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// CrossSections is a per-nuclide microscopic cross-section model [barn],
// queried at energies in eV.
type CrossSections interface {
	Name() string
	Total(e float64) (float64, error)
	Fission(e float64) (float64, error)
	Capture(e float64) (float64, error)
	Inelastic(e float64) (float64, error)
}

type DegenerateMixtureError struct {
	Energy       float64
	Macroscopic  float64
	Microscopic  bool // the selected nuclide itself has no total cross section
	NuclideNames [2]string
}

func (e *DegenerateMixtureError) Error() string {
	if e.Microscopic {
		return fmt.Sprintf("mixture %s/%s: selected nuclide has total cross section %v at %v eV",
			e.NuclideNames[0], e.NuclideNames[1], e.Macroscopic, e.Energy)
	}
	return fmt.Sprintf("mixture %s/%s: macroscopic total cross section %v at %v eV",
		e.NuclideNames[0], e.NuclideNames[1], e.Macroscopic, e.Energy)
}

type Mixture struct {
	Fissile        CrossSections
	Fertile        CrossSections
	FissileDensity float64
	FertileDensity float64
}

func (m *Mixture) names() [2]string {
	return [2]string{m.Fissile.Name(), m.Fertile.Name()}
}

// Macroscopic returns total cross section times number density per nuclide.
func (m *Mixture) Macroscopic(e float64) (fissile, fertile float64, err error) {
	if fissile, err = m.Fissile.Total(e); err != nil {
		return
	}
	if fertile, err = m.Fertile.Total(e); err != nil {
		return
	}
	return fissile * m.FissileDensity, fertile * m.FertileDensity, nil
}

// Select picks the nuclide a neutron of energy e interacts with, weighted by
// macroscopic total cross section only. One draw.
func (m *Mixture) Select(rng *rand.Rand, e float64) (CrossSections, error) {
	fissile, fertile, err := m.Macroscopic(e)
	if err != nil {
		return nil, err
	}
	sum := fissile + fertile
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, &DegenerateMixtureError{Energy: e, Macroscopic: sum, NuclideNames: m.names()}
	}
	if rng.Float64() < fissile/sum {
		return m.Fissile, nil
	}
	return m.Fertile, nil
}
