package xs

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

type Channel int

const (
	Total Channel = iota
	Fission
	Capture
	Inelastic
	numTabulated
)

// Elastic is never tabulated, see Table.Elastic.
const Elastic Channel = numTabulated

func (c Channel) String() string {
	switch c {
	case Total:
		return "total"
	case Fission:
		return "fission"
	case Capture:
		return "capture"
	case Inelastic:
		return "inelastic"
	case Elastic:
		return "elastic"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// keeps the log transform defined for tabulated zeros
const zeroSubstitute = 1e-20

type InvalidEnergyError struct {
	Nuclide string
	Energy  float64
}

func (e *InvalidEnergyError) Error() string {
	return fmt.Sprintf("%s: cross section undefined at energy %v eV", e.Nuclide, e.Energy)
}

// Data is the raw content of a cross-section table. Energies are in eV,
// cross sections in barns.
type Data struct {
	Energy    []float64
	Total     []float64
	Fission   []float64
	Capture   []float64
	Inelastic []float64
	Threshold float64 // inelastic threshold [eV]
}

func (d *Data) channels() [numTabulated][]float64 {
	return [numTabulated][]float64{d.Total, d.Fission, d.Capture, d.Inelastic}
}

// Table is an immutable per-nuclide cross-section model interpolated in
// log-log space. It is safe for concurrent use.
type Table struct {
	name      string
	threshold float64
	energy    []float64
	logEnergy []float64
	values    [numTabulated][]float64
	logValues [numTabulated][]float64
}

func NewTable(name string, d Data) (*Table, error) {
	n := len(d.Energy)
	if n < 2 {
		return nil, fmt.Errorf("%s: energy grid needs at least 2 points, got %d", name, n)
	}
	if math.IsNaN(d.Threshold) || d.Threshold < 0 {
		return nil, fmt.Errorf("%s: invalid inelastic threshold %v", name, d.Threshold)
	}
	for i, e := range d.Energy {
		if !(e > 0) || math.IsInf(e, 1) {
			return nil, fmt.Errorf("%s: grid energy %v at %d is not positive", name, e, i)
		}
		if i > 0 && e <= d.Energy[i-1] {
			return nil, fmt.Errorf("%s: energy grid not strictly increasing at %d", name, i)
		}
	}

	t := &Table{
		name:      name,
		threshold: d.Threshold,
		energy:    slices.Clone(d.Energy),
		logEnergy: make([]float64, n),
	}
	for i := range t.energy {
		t.logEnergy[i] = math.Log(t.energy[i])
	}

	for c, values := range d.channels() {
		if len(values) != n {
			return nil, fmt.Errorf("%s: %v grid has %d values, energy grid has %d", name, Channel(c), len(values), n)
		}
		if floats.HasNaN(values) || floats.Min(values) < 0 || math.IsInf(floats.Max(values), 1) {
			return nil, fmt.Errorf("%s: %v grid must be finite and non-negative", name, Channel(c))
		}
		t.values[c] = slices.Clone(values)
		t.logValues[c] = make([]float64, n)
		for i, v := range values {
			if v == 0 {
				v = zeroSubstitute
			}
			t.logValues[c][i] = math.Log(v)
		}
	}
	return t, nil
}

func MustNewTable(name string, d Data) *Table {
	t, err := NewTable(name, d)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

// Threshold returns the energy below which the inelastic cross section is 0.
func (t *Table) Threshold() float64 {
	return t.threshold
}

func (t *Table) Energies() []float64 {
	return slices.Clone(t.energy)
}

func (t *Table) Tabulated(c Channel) []float64 {
	if c < 0 || c >= numTabulated {
		return nil
	}
	return slices.Clone(t.values[c])
}

func (t *Table) at(c Channel, e float64) (float64, error) {
	if !(e > 0) || math.IsInf(e, 1) {
		return 0, &InvalidEnergyError{Nuclide: t.name, Energy: e}
	}
	if c == Inelastic && e < t.threshold {
		return 0, nil
	}
	i := sort.SearchFloat64s(t.energy, e)
	if i < len(t.energy) && t.energy[i] == e {
		return t.values[c][i], nil
	}
	// segment [j, j+1]; the end segments extrapolate
	j := min(max(i-1, 0), len(t.energy)-2)
	logE := math.Log(e)
	slope := (t.logValues[c][j+1] - t.logValues[c][j]) / (t.logEnergy[j+1] - t.logEnergy[j])
	return math.Exp(math.FMA(slope, logE-t.logEnergy[j], t.logValues[c][j])), nil
}

func (t *Table) Total(e float64) (float64, error) {
	return t.at(Total, e)
}

func (t *Table) Fission(e float64) (float64, error) {
	return t.at(Fission, e)
}

func (t *Table) Capture(e float64) (float64, error) {
	return t.at(Capture, e)
}

func (t *Table) Inelastic(e float64) (float64, error) {
	return t.at(Inelastic, e)
}

// Elastic is the residual total - (fission + capture + inelastic), clamped at
// 0. The other channels are not renormalized when they exceed the total.
func (t *Table) Elastic(e float64) (float64, error) {
	sigmas, err := t.All(e)
	if err != nil {
		return 0, err
	}
	return sigmas[Elastic], nil
}

// Sigmas holds one cross section per channel, elastic included.
type Sigmas [numTabulated + 1]float64

// All returns every channel at e.
func (t *Table) All(e float64) (sigmas Sigmas, err error) {
	for c := range numTabulated {
		if sigmas[c], err = t.at(c, e); err != nil {
			return
		}
	}
	sigmas[Elastic] = max(0, sigmas[Total]-(sigmas[Fission]+sigmas[Capture]+sigmas[Inelastic]))
	return
}
