package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wildstyl3r/ncmc/internal/config"
)

// FromParameters translates unified file parameters into an engine
// configuration.
func FromParameters(p *config.ModelParameters) Config {
	spectrum := DefaultWattSpectrum()
	spectrum.Envelope = p.WattEnvelope
	spectrum.Attempts = p.SamplerAttempts
	return Config{
		InitialNeutrons: p.InitialNeutrons,
		MaxGenerations:  p.MaxGenerations,
		MaxNeutrons:     p.MaxNeutrons,
		FissileDensity:  p.FissileDensity,
		FertileDensity:  p.FertileDensity,
		InitialEnergy:   p.InitialEnergy,
		Spectrum:        &spectrum,
		Threads:         p.Threads(),
		Verbose:         p.Verbose(),
	}
}

type runResult struct {
	run    int
	result Result
	err    error
}

// RunAll runs the independent histories of one model concurrently, run i
// drawing from NewRNG(Seed, i). Results are in run order.
func RunAll(parameters *config.ModelParameters) ([]Result, error) {
	if parameters.FissileData() == nil || parameters.FertileData() == nil {
		return nil, errors.New("cross sections not loaded")
	}
	engineConfig := FromParameters(parameters)
	if err := engineConfig.Validate(); err != nil {
		return nil, err
	}

	var chanWg sync.WaitGroup
	dataflow := make(chan runResult)
	for run := range parameters.Runs {
		chanWg.Add(1)
		go func() {
			defer chanWg.Done()
			m, err := NewModel(engineConfig, parameters.FissileData(), parameters.FertileData())
			if err != nil {
				dataflow <- runResult{run: run, err: err}
				return
			}
			result, err := m.Run(NewRNG(parameters.Seed, run))
			dataflow <- runResult{run, result, err}
		}()
	}

	go func() {
		chanWg.Wait()
		close(dataflow)
	}()

	results := make([]Result, parameters.Runs)
	var errs []error
	counter := 0
	if parameters.Verbose() {
		fmt.Printf("\rDone:[0/%d]", parameters.Runs)
	}
	for r := range dataflow {
		counter++
		if parameters.Verbose() {
			fmt.Printf("\rDone:[%d/%d]", counter, parameters.Runs)
		}
		results[r.run] = r.result
		if r.err != nil {
			errs = append(errs, fmt.Errorf("run %d: %w", r.run, r.err))
		}
	}
	if parameters.Verbose() {
		println()
	}
	return results, errors.Join(errs...)
}
