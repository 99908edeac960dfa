package model

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/wildstyl3r/ncmc/internal/xs"
)

func referenceConfig() Config {
	return Config{
		InitialNeutrons: 100,
		MaxGenerations:  200,
		MaxNeutrons:     2000,
		FissileDensity:  0.007,
		FertileDensity:  0.993,
	}
}

func TestSingleGeneration(t *testing.T) {
	history, err := Simulate(Config{
		InitialNeutrons: 1,
		MaxGenerations:  0,
		MaxNeutrons:     10000,
		FissileDensity:  0.007,
		FertileDensity:  0.993,
	}, NewRNG(7, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(history, []int{1}) {
		t.Errorf("want [1], got %v", history)
	}
}

func TestZeroCapExplodesImmediately(t *testing.T) {
	cfg := referenceConfig()
	cfg.MaxNeutrons = 0
	cfg.InitialNeutrons = 5
	m, err := NewModel(cfg, xs.U235(), xs.U238())
	if err != nil {
		t.Fatal(err)
	}
	result, err := m.Run(NewRNG(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if result.State != Exploded {
		t.Errorf("want %v, got %v", Exploded, result.State)
	}
	if !slices.Equal(result.History, []int{5}) {
		t.Errorf("want [5], got %v", result.History)
	}
	if m.Generation() != 0 {
		t.Errorf("want generation 0, got %d", m.Generation())
	}
}

func TestDeterministicHistory(t *testing.T) {
	for _, threads := range []int{1, 4} {
		cfg := referenceConfig()
		cfg.Threads = threads
		first, err := Simulate(cfg, NewRNG(42, 3))
		if err != nil {
			t.Fatal(err)
		}
		second, err := Simulate(cfg, NewRNG(42, 3))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first, second) {
			t.Errorf("threads %d: histories differ\n%v\n%v", threads, first, second)
		}
	}
}

func checkTermination(t *testing.T, cfg Config, result Result) {
	t.Helper()
	history := result.History
	if len(history) == 0 || len(history) > cfg.MaxGenerations+1 {
		t.Fatalf("history length %d out of [1, %d]", len(history), cfg.MaxGenerations+1)
	}
	if len(result.Generations) != len(history) {
		t.Fatalf("want %d generation stats, got %d", len(history), len(result.Generations))
	}
	for g, count := range history[:len(history)-1] {
		if count == 0 || count > cfg.MaxNeutrons {
			t.Fatalf("run continued past generation %d with %d neutrons", g, count)
		}
	}
	last := history[len(history)-1]
	switch result.State {
	case Extinct:
		if last != 0 {
			t.Errorf("extinct run ends with %d neutrons", last)
		}
	case Exploded:
		if last <= cfg.MaxNeutrons {
			t.Errorf("exploded run ends with %d neutrons, cap %d", last, cfg.MaxNeutrons)
		}
	case MaxGenerationsReached:
		if len(history) != cfg.MaxGenerations+1 {
			t.Errorf("want %d entries, got %d", cfg.MaxGenerations+1, len(history))
		}
	default:
		t.Errorf("non-terminal state %v", result.State)
	}
}

func TestTermination(t *testing.T) {
	cases := map[string]struct {
		fissile, fertile float64
		want             State
	}{
		"natural uranium": {0.007, 0.993, Extinct},
		"fertile only":    {0, 1, Extinct},
		"fissile only":    {1, 0, Exploded},
	}
	for name, c := range cases {
		cfg := referenceConfig()
		cfg.MaxGenerations = 2000
		cfg.FissileDensity = c.fissile
		cfg.FertileDensity = c.fertile
		m, err := NewModel(cfg, xs.U235(), xs.U238())
		if err != nil {
			t.Fatal(err)
		}
		result, err := m.Run(NewRNG(11, 0))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		checkTermination(t, cfg, result)
		if result.State != c.want {
			t.Errorf("%s: want %v, got %v after %d generations", name, c.want, result.State, len(result.History))
		}
	}
}

func TestMaxGenerationsReached(t *testing.T) {
	cfg := referenceConfig()
	cfg.MaxGenerations = 3
	m, err := NewModel(cfg, xs.U235(), xs.U238())
	if err != nil {
		t.Fatal(err)
	}
	result, err := m.Run(NewRNG(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	checkTermination(t, cfg, result)
	if result.State != MaxGenerationsReached {
		t.Errorf("want %v, got %v", MaxGenerationsReached, result.State)
	}
	for g, stats := range result.Generations {
		if stats.Reactions.Reactions() != stats.Neutrons {
			t.Errorf("generation %d: %d reactions for %d neutrons", g, stats.Reactions.Reactions(), stats.Neutrons)
		}
	}
	if math.Abs(result.Generations[0].MeanEnergy-0.025) > 1e-12 {
		t.Errorf("want thermal start, got %v eV", result.Generations[0].MeanEnergy)
	}
}

func TestStepAfterTermination(t *testing.T) {
	cfg := referenceConfig()
	cfg.MaxNeutrons = 0
	m, _ := NewModel(cfg, xs.U235(), xs.U238())
	rng := NewRNG(1, 0)
	m.Run(rng)
	state, err := m.Step(rng)
	if err != nil || state != Exploded {
		t.Errorf("want %v, got %v (%v)", Exploded, state, err)
	}
	if len(m.Result().History) != 1 {
		t.Errorf("history grew after termination: %v", m.Result().History)
	}
}

func TestSamplerExhaustionPropagates(t *testing.T) {
	cfg := referenceConfig()
	cfg.FissileDensity, cfg.FertileDensity = 1, 0
	spectrum := DefaultWattSpectrum()
	spectrum.Envelope = 1e300
	spectrum.Attempts = 3
	cfg.Spectrum = &spectrum
	m, err := NewModel(cfg, fissionOnly{}, xs.U238())
	if err != nil {
		t.Fatal(err)
	}
	result, err := m.Run(NewRNG(1, 0))
	var exhausted *SamplerExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want SamplerExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("want 3 attempts, got %d", exhausted.Attempts)
	}
	if !slices.Equal(result.History, []int{100}) {
		t.Errorf("want [100], got %v", result.History)
	}
}

func TestDegenerateMixturePropagates(t *testing.T) {
	cfg := referenceConfig()
	cfg.FissileDensity, cfg.FertileDensity = 0, 0
	_, err := Simulate(cfg, NewRNG(1, 0))
	var degenerate *DegenerateMixtureError
	if !errors.As(err, &degenerate) {
		t.Fatalf("want DegenerateMixtureError, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"no neutrons":      func(c *Config) { c.InitialNeutrons = 0 },
		"negative gens":    func(c *Config) { c.MaxGenerations = -1 },
		"negative cap":     func(c *Config) { c.MaxNeutrons = -1 },
		"negative density": func(c *Config) { c.FertileDensity = -0.1 },
		"negative energy":  func(c *Config) { c.InitialEnergy = -1 },
	}
	for name, mutate := range cases {
		cfg := referenceConfig()
		mutate(&cfg)
		_, err := NewModel(cfg, xs.U235(), xs.U238())
		var invalid *ConfigError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: want ConfigError, got %v", name, err)
		}
	}
}
