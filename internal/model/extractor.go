package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/wildstyl3r/ncmc/internal/config"
	"github.com/wildstyl3r/ncmc/internal/utils"
)

// DataExtractor aggregates the runs of one model for output.
type DataExtractor struct {
	parameters  *config.ModelParameters
	runs        []Result
	generations int

	meanHistory    []float64
	meanConfidence []float64 // 95% half-width
	contributing   []int
}

// count of run r at generation g: recorded value, 0 after extinction, NaN
// after any other terminal state
func countAt(r Result, g int) float64 {
	switch {
	case g < len(r.History):
		return float64(r.History[g])
	case r.State == Extinct:
		return 0
	}
	return math.NaN()
}

func NewDataExtractor(parameters *config.ModelParameters, runs []Result) *DataExtractor {
	de := DataExtractor{
		parameters: parameters,
		runs:       runs,
	}
	for _, r := range runs {
		de.generations = max(de.generations, len(r.History))
	}
	de.meanHistory = make([]float64, de.generations)
	de.meanConfidence = make([]float64, de.generations)
	de.contributing = make([]int, de.generations)
	for g := range de.generations {
		var counts []float64
		for _, r := range runs {
			if c := countAt(r, g); !math.IsNaN(c) {
				counts = append(counts, c)
			}
		}
		de.contributing[g] = len(counts)
		de.meanHistory[g], de.meanConfidence[g] = utils.MeanAndHalfWidth95(counts)
	}

	if parameters.Verbose() {
		fmt.Printf("Terminal states over %d runs: %v, k = %.4f\n", len(runs), de.States(), de.MultiplicationFactor())
	}
	return &de
}

func (de *DataExtractor) MultiplicationFactor() float64 {
	return MultiplicationFactor(de.runs)
}

// MeanHistory returns the mean count per generation over the runs that still
// define it, with the 95% confidence half-width.
func (de *DataExtractor) MeanHistory() (mean, confidence []float64) {
	return de.meanHistory, de.meanConfidence
}

// States counts the terminal states of the runs.
func (de *DataExtractor) States() map[State]int {
	states := map[State]int{}
	for _, r := range de.runs {
		states[r.State]++
	}
	return states
}

// MeanGenerations is the mean number of recorded generations per run.
func (de *DataExtractor) MeanGenerations() float64 {
	lengths := make([]int, len(de.runs))
	for i, r := range de.runs {
		lengths[i] = len(r.History)
	}
	return utils.Average(lengths)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (de *DataExtractor) Save(modelName string, df DataFlags) error {
	var errs []error
	for name, output := range df.sequentials {
		if !*output.saveFlag && !*df.all {
			continue
		}
		file, err := utils.OpenFile(de.parameters.MakeDir, df.outputPath, output.fileSuffix, modelName)
		if err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}
		units := de.parameters.OutputUnits()
		rows := [][]string{{withUnit(output.columnNames[0], output.xUnit, units), withUnit(output.columnNames[1], output.yUnit, units)}}
		xColumnValue, yColumnValues, yLabels := output.values(de)
		rows = append(rows, append([]string{""}, yLabels...))
		for x := range xColumnValue {
			row := []string{formatFloat(config.Base(xColumnValue[x], output.xUnit, units, false))}
			for i := range yColumnValues[x] {
				row = append(row, formatFloat(config.Base(yColumnValues[x][i], output.yUnit, units, false)))
			}
			rows = append(rows, row)
		}
		w := csv.NewWriter(file)
		w.WriteAll(rows)
		if err := errors.Join(w.Error(), file.Close()); err != nil {
			errs = append(errs, fmt.Errorf("error writing %s: %w", name, err))
		} else if de.parameters.Verbose() {
			println(name + " saved")
		}
	}
	return errors.Join(errs...)
}

func withUnit(column string, unit []config.UnitElement, units []string) string {
	if len(unit) == 0 {
		return column
	}
	return column + " (" + config.UnitLabel(unit, units) + ")"
}
