package model

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/ncmc/internal/xs"
)

type fissionOnly struct{}

func (fissionOnly) Name() string                         { return "fission" }
func (fissionOnly) Total(e float64) (float64, error)     { return 1, nil }
func (fissionOnly) Fission(e float64) (float64, error)   { return 1, nil }
func (fissionOnly) Capture(e float64) (float64, error)   { return 0, nil }
func (fissionOnly) Inelastic(e float64) (float64, error) { return 0, nil }

func TestProbabilitiesSumToOne(t *testing.T) {
	energies := make([]float64, 300)
	floats.LogSpan(energies, 1e-5, 2e7)
	for _, nuclide := range []*xs.Table{xs.U235(), xs.U238()} {
		for _, e := range energies {
			p, err := ChannelProbabilities(nuclide, e)
			if err != nil {
				t.Fatal(err)
			}
			sum := p.Fission + p.Capture + p.Inelastic + p.Elastic
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("%s at %v eV: probabilities sum to %v", nuclide.Name(), e, sum)
			}
			for _, v := range []float64{p.Fission, p.Capture, p.Inelastic, p.Elastic} {
				if v < 0 || v > 1 {
					t.Errorf("%s at %v eV: probability %v out of [0, 1]", nuclide.Name(), e, v)
				}
			}
		}
	}
}

func TestNu(t *testing.T) {
	if Nu(1) != 2.43 || Nu(0.025) != 2.43 {
		t.Errorf("want 2.43 at and below 1 eV")
	}
	if Nu(1.0001) != 2.50 || Nu(2e6) != 2.50 {
		t.Errorf("want 2.50 above 1 eV")
	}
}

func TestFissionYieldConverges(t *testing.T) {
	rng := NewRNG(2024, 0)
	sampler := NewSampler(&Mixture{
		Fissile:        fissionOnly{},
		Fertile:        xs.U238(),
		FissileDensity: 1,
	}, DefaultWattSpectrum())
	const trials = 100000
	for _, e := range []float64{0.025, 2e6} {
		offspring := 0
		var next []Neutron
		for range trials {
			var channel xs.Channel
			var err error
			next, channel, err = sampler.React(rng, Neutron{Energy: e}, next[:0])
			if err != nil {
				t.Fatal(err)
			}
			if channel != xs.Fission {
				t.Fatalf("want fission, got %v", channel)
			}
			offspring += len(next)
			for _, n := range next {
				if !(n.Energy > 0) || n.Energy > 15e6 {
					t.Fatalf("offspring energy %v eV out of (0, 15 MeV]", n.Energy)
				}
			}
		}
		mean := float64(offspring) / trials
		if math.Abs(mean-Nu(e)) > 0.01 {
			t.Errorf("at %v eV: want mean yield %v, got %v", e, Nu(e), mean)
		}
	}
}

func TestStochasticRound(t *testing.T) {
	rng := NewRNG(3, 0)
	for range 1000 {
		n := stochasticRound(rng, 2.43)
		if n != 2 && n != 3 {
			t.Fatalf("want 2 or 3, got %d", n)
		}
	}
	if n := stochasticRound(rng, 2); n != 2 {
		t.Errorf("want 2, got %d", n)
	}
}

func TestChannelFrequencies(t *testing.T) {
	rng := NewRNG(99, 0)
	fissile := xs.U235()
	sampler := NewSampler(&Mixture{Fissile: fissile, Fertile: xs.U238(), FissileDensity: 1}, DefaultWattSpectrum())
	const e = 1e6
	p, err := ChannelProbabilities(fissile, e)
	if err != nil {
		t.Fatal(err)
	}
	var tally Tally
	const trials = 100000
	for range trials {
		_, channel, err := sampler.React(rng, Neutron{Energy: e}, nil)
		if err != nil {
			t.Fatal(err)
		}
		tally.add(channel)
	}
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"fission", float64(tally.Fission) / trials, p.Fission},
		{"capture", float64(tally.Capture) / trials, p.Capture},
		{"inelastic", float64(tally.Inelastic) / trials, p.Inelastic},
		{"elastic", float64(tally.Elastic) / trials, p.Elastic},
	} {
		if math.Abs(c.got-c.want) > 0.01 {
			t.Errorf("%s: want frequency %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestScattering(t *testing.T) {
	rng := NewRNG(5, 0)
	for range 10000 {
		if e := inelasticLevel(rng, 2e6); e < 50e3 || e > 400e3 {
			t.Fatalf("inelastic from 2 MeV: got %v eV", e)
		}
		if e := inelasticLevel(rng, 100e3); e != 90e3 && (e < 50e3 || e >= 100e3) {
			t.Fatalf("inelastic from 100 keV: got %v eV", e)
		}
		if e := inelasticLevel(rng, 10); e != 9 {
			t.Fatalf("inelastic from 10 eV: want 9, got %v", e)
		}
		if e := elasticDownscatter(rng, 1000); e < 980 || e > 1000 {
			t.Fatalf("elastic from 1 keV: got %v eV", e)
		}
	}
}

func TestInvalidEnergyPropagates(t *testing.T) {
	sampler := NewSampler(&Mixture{Fissile: xs.U235(), Fertile: xs.U238(), FissileDensity: 0.007, FertileDensity: 0.993}, DefaultWattSpectrum())
	_, _, err := sampler.React(NewRNG(1, 0), Neutron{Energy: 0}, nil)
	var invalid *xs.InvalidEnergyError
	if !errors.As(err, &invalid) {
		t.Errorf("want InvalidEnergyError, got %v", err)
	}
}
