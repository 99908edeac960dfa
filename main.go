package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wildstyl3r/ncmc/internal/config"
	"github.com/wildstyl3r/ncmc/internal/model"
	"github.com/wildstyl3r/ncmc/internal/search"
	"github.com/wildstyl3r/ncmc/internal/utils"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func main() {
	dataFlags := model.NewDataFlags(flag.CommandLine)
	var configFileNamePointer = flag.String("input", "natural", "model configuration in toml format")
	var verbose = flag.Bool("v", false, "print generation counts and progress")
	var threads = flag.Int("threads", 1, "goroutines sharing one generation; a seed reproduces its histories only at the same thread count")
	flag.Parse()

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	configFileName := strings.TrimSuffix(*configFileNamePointer, ".toml")
	study, meta, err := config.LoadConfig(configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outputPath := ""
	if study.OutputDir != "" && study.OutputDir != "." {
		if err := os.MkdirAll(study.OutputDir, 0750); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		outputPath = study.OutputDir
	}
	dataFlags.SetOutputPath(outputPath)

	var summary, criticality utils.CSV
	for modelName, parameters := range study.Models {
		fmt.Println("\n" + modelName)
		if err := parameters.CheckAndUnify(modelName, &study, &meta); err != nil {
			fmt.Fprintf(os.Stderr, "unable to load model %s: %v\n", modelName, err)
			continue
		}
		parameters.SetVerbosity(*verbose)
		parameters.SetThreads(*threads)
		if err := parameters.LoadCrossSections(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if parameters.SearchCriticality {
			enrichment, confidenceInterval, err := model.SearchCriticalEnrichment(parameters)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", modelName, err)
				if !errors.Is(err, search.ErrNotConverged) {
					continue
				}
			}
			fmt.Printf("critical enrichment: %v +- %v\n", enrichment, confidenceInterval/2)
			criticality = append(criticality, []string{modelName, formatFloat(enrichment), formatFloat(confidenceInterval)})
			continue
		}

		runs, err := model.RunAll(&parameters)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", modelName, err)
			continue
		}
		dataExtractor := model.NewDataExtractor(&parameters, runs)
		states := dataExtractor.States()
		k := dataExtractor.MultiplicationFactor()
		fmt.Printf("k = %.5f; %d runs: %d extinct, %d exploded, %d reached the generation limit\n",
			k, len(runs), states[model.Extinct], states[model.Exploded], states[model.MaxGenerationsReached])
		if err := dataExtractor.Save(modelName, dataFlags); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		summary = append(summary, []string{
			modelName,
			strconv.Itoa(len(runs)),
			strconv.Itoa(states[model.Extinct]),
			strconv.Itoa(states[model.Exploded]),
			strconv.Itoa(states[model.MaxGenerationsReached]),
			formatFloat(dataExtractor.MeanGenerations()),
			formatFloat(k),
		})
	}

	if len(summary) > 0 {
		columns := []string{"model", "runs", "extinct", "exploded", "max_generations", "mean_generations", "k"}
		if err := utils.WriteAsCSV(summary, dataFlags.GetOutputPath(), "summary", configFileName, columns); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if len(criticality) > 0 {
		columns := []string{"model", "critical_enrichment", "conf_interval"}
		if err := utils.WriteAsCSV(criticality, dataFlags.GetOutputPath(), "criticality", configFileName, columns); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
}
