package model

import (
	"flag"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/ncmc/internal/config"
	"github.com/wildstyl3r/ncmc/internal/xs"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64, labels []string)
	xUnit       []config.UnitElement
	yUnit       []config.UnitElement
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

const xsPoints = 200

var energyUnit = []config.UnitElement{{Class: config.Energy, Power: 1}}

func generations(de *DataExtractor) (args []float64) {
	for g := range de.generations {
		args = append(args, float64(g))
	}
	return
}

// NewDataFlags registers the output selection flags on fs.
func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all: fs.Bool("all", false, "save every available output"),
		sequentials: map[string]SequentialDataItem{
			"History": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("hist", false, "save per run population history"),
					fileSuffix: "history",
				},
				columnNames: []string{"generation", "neutrons"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for run := range de.runs {
						labels = append(labels, "run_"+strconv.Itoa(run))
					}
					args = generations(de)
					for g := range args {
						row := make([]float64, len(de.runs))
						for run, r := range de.runs {
							row[run] = countAt(r, g)
						}
						values = append(values, row)
					}
					return args, values, labels
				},
			},
			"Mean history": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("mean", true, "save mean population history"),
					fileSuffix: "mean",
				},
				columnNames: []string{"generation", "neutrons"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					args = generations(de)
					for g := range args {
						values = append(values, []float64{de.meanHistory[g], de.meanConfidence[g], float64(de.contributing[g])})
					}
					return args, values, []string{"mean", "conf_interval", "runs"}
				},
			},
			"Growth": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("growth", false, "save generation to generation growth of the mean history"),
					fileSuffix: "growth",
				},
				columnNames: []string{"generation", "N(g+1)/N(g)"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for g := 0; g+1 < de.generations; g++ {
						if !(de.meanHistory[g] > 0) || math.IsNaN(de.meanHistory[g+1]) {
							continue
						}
						args = append(args, float64(g))
						values = append(values, []float64{de.meanHistory[g+1] / de.meanHistory[g]})
					}
					return args, values, []string{"growth"}
				},
			},
			"Reactions": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("r", false, "save reaction channel tallies per run"),
					fileSuffix: "reactions",
				},
				columnNames: []string{"generation", "reactions per run"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for _, channel := range []xs.Channel{xs.Fission, xs.Capture, xs.Inelastic, xs.Elastic} {
						labels = append(labels, channel.String())
					}
					args = generations(de)
					for g := range args {
						var tally Tally
						runs := 0
						for _, r := range de.runs {
							if g < len(r.Generations) {
								tally.merge(r.Generations[g].Reactions)
								runs++
							}
						}
						row := []float64{float64(tally.Fission), float64(tally.Capture), float64(tally.Inelastic), float64(tally.Elastic)}
						floats.Scale(1/float64(max(runs, 1)), row)
						values = append(values, row)
					}
					return args, values, labels
				},
			},
			"Mean energy": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("e", false, "save mean neutron energy"),
					fileSuffix: "energy",
				},
				columnNames: []string{"generation", "mean energy"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for g := range de.generations {
						energy, neutrons := 0., 0
						for _, r := range de.runs {
							if g < len(r.Generations) {
								energy += r.Generations[g].MeanEnergy * float64(r.Generations[g].Neutrons)
								neutrons += r.Generations[g].Neutrons
							}
						}
						if neutrons == 0 {
							continue
						}
						args = append(args, float64(g))
						values = append(values, []float64{energy / float64(neutrons)})
					}
					return args, values, []string{"E"}
				},
				yUnit: energyUnit,
			},
			"Cross sections": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("xs", false, "save microscopic cross sections of both nuclides"),
					fileSuffix: "xs",
				},
				columnNames: []string{"energy", "cross section"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					tables := []*xs.Table{de.parameters.FissileData(), de.parameters.FertileData()}
					for _, table := range tables {
						for c := range xs.Elastic + 1 {
							labels = append(labels, table.Name()+"_"+c.String())
						}
					}
					energies := tables[0].Energies()
					args = make([]float64, xsPoints)
					floats.LogSpan(args, energies[0], energies[len(energies)-1])
					for _, e := range args {
						var row []float64
						for _, table := range tables {
							sigmas, err := table.All(e)
							if err != nil {
								floats.AddConst(math.NaN(), sigmas[:])
							}
							row = append(row, sigmas[:]...)
						}
						values = append(values, row)
					}
					return args, values, labels
				},
				xUnit: energyUnit,
				yUnit: []config.UnitElement{{Class: config.CrossSection, Power: 1}},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	if path != "" && path[len(path)-1] != '/' {
		df.outputPath = path + "/"
	} else {
		df.outputPath = path
	}
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}
