package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/wildstyl3r/ncmc/internal/constants"
	"github.com/wildstyl3r/ncmc/internal/utils"
	"github.com/wildstyl3r/ncmc/internal/xs"
)

type State int

const (
	Running State = iota
	Extinct
	Exploded
	MaxGenerationsReached
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Extinct:
		return "EXTINCT"
	case Exploded:
		return "EXPLODED"
	case MaxGenerationsReached:
		return "MAX_GENERATIONS_REACHED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Config struct {
	InitialNeutrons int
	MaxGenerations  int
	MaxNeutrons     int // population above it explodes the run
	FissileDensity  float64
	FertileDensity  float64

	InitialEnergy float64 // [eV], thermal when 0
	Spectrum      *WattSpectrum
	Threads       int
	Verbose       bool
}

type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

func (c *Config) Validate() error {
	switch {
	case c.InitialNeutrons <= 0:
		return &ConfigError{"InitialNeutrons", c.InitialNeutrons}
	case c.MaxGenerations < 0:
		return &ConfigError{"MaxGenerations", c.MaxGenerations}
	case c.MaxNeutrons < 0:
		return &ConfigError{"MaxNeutrons", c.MaxNeutrons}
	case !(c.FissileDensity >= 0) || math.IsInf(c.FissileDensity, 1):
		return &ConfigError{"FissileDensity", c.FissileDensity}
	case !(c.FertileDensity >= 0) || math.IsInf(c.FertileDensity, 1):
		return &ConfigError{"FertileDensity", c.FertileDensity}
	case !(c.InitialEnergy >= 0) || math.IsInf(c.InitialEnergy, 1):
		return &ConfigError{"InitialEnergy", c.InitialEnergy}
	case c.Spectrum != nil && (c.Spectrum.Attempts <= 0 || !(c.Spectrum.Envelope > 0) || !(c.Spectrum.MaxEnergy > 0)):
		return &ConfigError{"Spectrum", *c.Spectrum}
	}
	return nil
}

type GenerationStats struct {
	Neutrons   int
	MeanEnergy float64 // [eV], of the recorded population
	Reactions  Tally   // zero for the generation the run stopped at
}

type Result struct {
	History     []int
	Generations []GenerationStats
	State       State
}

// parents and offspring summed over every recorded transition
func (r Result) transitions() (parents, offspring int) {
	if len(r.History) < 2 {
		return 0, 0
	}
	return utils.SumSlice(r.History[:len(r.History)-1]), utils.SumSlice(r.History[1:])
}

// MultiplicationFactor estimates k as offspring per parent neutron over the
// recorded generations, NaN without a transition.
func (r Result) MultiplicationFactor() float64 {
	return MultiplicationFactor([]Result{r})
}

// MultiplicationFactor pools the transitions of several runs.
func MultiplicationFactor(results []Result) float64 {
	var parents, offspring int
	for _, r := range results {
		p, o := r.transitions()
		parents += p
		offspring += o
	}
	if parents == 0 {
		return math.NaN()
	}
	return float64(offspring) / float64(parents)
}

// Model is the generation-by-generation transport engine for one
// fissile/fertile mixture.
type Model struct {
	config     Config
	sampler    *Sampler
	state      State
	generation int
	population []Neutron
	result     Result
}

func NewModel(config Config, fissile, fertile CrossSections) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.InitialEnergy == 0 {
		config.InitialEnergy = constants.ThermalEnergy
	}
	spectrum := DefaultWattSpectrum()
	if config.Spectrum != nil {
		spectrum = *config.Spectrum
	}
	m := &Model{
		config: config,
		sampler: NewSampler(&Mixture{
			Fissile:        fissile,
			Fertile:        fertile,
			FissileDensity: config.FissileDensity,
			FertileDensity: config.FertileDensity,
		}, spectrum),
		state:      Running,
		population: newPopulation(config.InitialNeutrons, config.InitialEnergy),
	}
	return m, nil
}

func (m *Model) State() State {
	return m.state
}

func (m *Model) Generation() int {
	return m.generation
}

func (m *Model) Mixture() *Mixture {
	return m.sampler.Mixture
}

func (m *Model) record() {
	count := len(m.population)
	mean := 0.
	for i := range m.population {
		mean += m.population[i].Energy
	}
	if count > 0 {
		mean /= float64(count)
	}
	m.result.History = append(m.result.History, count)
	m.result.Generations = append(m.result.Generations, GenerationStats{Neutrons: count, MeanEnergy: mean})
	if m.config.Verbose {
		fmt.Printf("Gen %d: Neutrons = %d\n", m.generation, count)
	}
}

// Step performs one generation transition and returns the new state.
func (m *Model) Step(rng *rand.Rand) (State, error) {
	if m.state != Running {
		return m.state, nil
	}
	m.record()
	count := len(m.population)
	if count == 0 {
		m.state = Extinct
		if m.config.Verbose {
			fmt.Println("Reaction stopped.")
		}
		return m.state, nil
	}
	if count > m.config.MaxNeutrons {
		m.state = Exploded
		if m.config.Verbose {
			fmt.Println("Reaction exploded.")
		}
		return m.state, nil
	}

	next, tally, err := m.advance(rng)
	if err != nil {
		return m.state, fmt.Errorf("generation %d: %w", m.generation, err)
	}
	m.result.Generations[len(m.result.Generations)-1].Reactions = tally
	m.population = next
	m.generation++
	if m.generation > m.config.MaxGenerations {
		m.state = MaxGenerationsReached
	}
	return m.state, nil
}

// Run steps until a terminal state. On error the result holds the history
// recorded so far.
func (m *Model) Run(rng *rand.Rand) (Result, error) {
	for m.state == Running {
		if _, err := m.Step(rng); err != nil {
			return m.Result(), err
		}
	}
	return m.Result(), nil
}

func (m *Model) Result() Result {
	r := m.result
	r.State = m.state
	return r
}

// advance reacts the whole population. With several threads the population is
// split into contiguous chunks, each with its own stream seeded from rng in
// chunk order, and the offspring are joined back in chunk order.
func (m *Model) advance(rng *rand.Rand) ([]Neutron, Tally, error) {
	threads := min(m.config.Threads, len(m.population))
	if threads <= 1 {
		return m.sampler.advance(rng, m.population)
	}

	streams := make([]*rand.Rand, threads)
	for i := range streams {
		streams[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}
	chunk := (len(m.population) + threads - 1) / threads
	parts := make([][]Neutron, threads)
	tallies := make([]Tally, threads)
	errs := make([]error, threads)

	var computeWg sync.WaitGroup
	for w := range threads {
		from := min(w*chunk, len(m.population))
		to := min(from+chunk, len(m.population))
		computeWg.Add(1)
		go func() {
			defer computeWg.Done()
			parts[w], tallies[w], errs[w] = m.sampler.advance(streams[w], m.population[from:to])
		}()
	}
	computeWg.Wait()

	var tally Tally
	size := 0
	for w := range threads {
		if errs[w] != nil {
			return nil, tally, errs[w]
		}
		tally.merge(tallies[w])
		size += len(parts[w])
	}
	next := make([]Neutron, 0, size)
	for w := range threads {
		next = append(next, parts[w]...)
	}
	return next, tally, nil
}

// Simulate runs the built-in U-235/U-238 mixture and returns the population
// count of every recorded generation.
func Simulate(config Config, rng *rand.Rand) ([]int, error) {
	m, err := NewModel(config, xs.U235(), xs.U238())
	if err != nil {
		return nil, err
	}
	result, err := m.Run(rng)
	return result.History, err
}
