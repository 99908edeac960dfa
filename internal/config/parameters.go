package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wildstyl3r/ncmc/internal/constants"
	"github.com/wildstyl3r/ncmc/internal/utils"
	"github.com/wildstyl3r/ncmc/internal/xs"
)

type Config struct {
	OutputDir string
	Models    map[string]ModelParameters
	ModelParameters
	Densities    string // file of "fissile fertile" lines, one model per line
	isDefinedMap map[string]struct{}

	InputUnits  []string
	OutputUnits []string
}

func (c *Config) isDefined(path []string, meta *toml.MetaData) bool {
	if _, sureDefined := c.isDefinedMap[strings.Join(path, "#")]; sureDefined {
		return true
	}
	return meta.IsDefined(path...)
}

func modelPath(modelName, field string) []string {
	return []string{"Models", modelName, field}
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	config.isDefinedMap = map[string]struct{}{}
	meta, err := toml.DecodeFile(configFileName+".toml", &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.prepare()
}

// DecodeConfig does what LoadConfig does for an in-memory document.
func DecodeConfig(document string) (Config, toml.MetaData, error) {
	var config Config
	config.isDefinedMap = map[string]struct{}{}
	meta, err := toml.Decode(document, &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.prepare()
}

func (config *Config) prepare() error {
	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return fmt.Errorf("found input unit conflict: %v", unitsConflict)
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return fmt.Errorf("found output unit conflict: %v", unitsConflict)
	}

	if len(config.Densities) > 0 {
		if len(config.Models) > 0 {
			return errors.New("simultaneous densities file listing and direct model definitions not supported")
		}
		densities, err := utils.ReadFloatRows(config.Densities, 2)
		if err != nil {
			return fmt.Errorf("densities file reading error: %w", err)
		}
		filename := utils.GetFilename(config.Densities)
		config.Models = make(map[string]ModelParameters, len(densities))
		for line := range densities {
			modelName := filename + "_l" + strconv.Itoa(line+1)
			config.Models[modelName] = ModelParameters{
				FissileDensity: densities[line][0],
				FertileDensity: densities[line][1],
			}
			config.isDefinedMap[strings.Join(modelPath(modelName, "FissileDensity"), "#")] = struct{}{}
			config.isDefinedMap[strings.Join(modelPath(modelName, "FertileDensity"), "#")] = struct{}{}
		}
	} else if len(config.Models) == 0 {
		return errors.New("no models provided")
	}
	return nil
}

type ModelParameters struct {
	InitialNeutrons int
	MaxGenerations  int
	MaxNeutrons     int
	FissileDensity  float64
	FertileDensity  float64
	Enrichment      float64 // fissile fraction of a two-nuclide mixture
	InitialEnergy   float64 // [eV]

	FissileCrossSections string // LXCat file, built-in table when empty
	FertileCrossSections string
	EnergyGrid           []float64 // [eV]
	FissileThreshold     float64   // [eV]
	FertileThreshold     float64   // [eV]

	WattEnvelope    float64
	SamplerAttempts int
	Seed            uint64
	Runs            int
	MakeDir         bool

	SearchCriticality   bool
	EnrichmentPrecision float64
	SearchWindow        int
	SearchMaxSteps      int

	_fissile     *xs.Table
	_fertile     *xs.Table
	_outputUnits []string
	_verbose     bool
	_threads     int
}

func (p *ModelParameters) FissileData() *xs.Table {
	return p._fissile
}

func (p *ModelParameters) FertileData() *xs.Table {
	return p._fertile
}

func (p *ModelParameters) SetCrossSectionsData(fissile, fertile *xs.Table) {
	p._fissile, p._fertile = fissile, fertile
}

func (p *ModelParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ModelParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return p._threads
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

// LoadCrossSections builds both nuclide tables: LXCat files tabulated on
// EnergyGrid, or the built-in tables with the configured thresholds.
func (p *ModelParameters) LoadCrossSections() error {
	load := func(name, path string, builtin xs.Data, threshold float64) (*xs.Table, error) {
		if path != "" {
			return xs.LoadLXCat(name, path, p.EnergyGrid)
		}
		builtin.Threshold = threshold
		return xs.NewTable(name, builtin)
	}
	fissile, err := load("U235", p.FissileCrossSections, xs.U235Data(), p.FissileThreshold)
	if err != nil {
		return err
	}
	fertile, err := load("U238", p.FertileCrossSections, xs.U238Data(), p.FertileThreshold)
	if err != nil {
		return err
	}
	p.SetCrossSectionsData(fissile, fertile)
	return nil
}

var defaultValues = map[string]any{ // in eV
	"InitialNeutrons":     1000,
	"MaxGenerations":      500,
	"MaxNeutrons":         10000,
	"FissileDensity":      0.007,
	"FertileDensity":      0.993,
	"InitialEnergy":       constants.ThermalEnergy,
	"EnergyGrid":          xs.DefaultGrid(),
	"FissileThreshold":    xs.FissileThreshold,
	"FertileThreshold":    xs.FertileThreshold,
	"WattEnvelope":        constants.WattEnvelope,
	"SamplerAttempts":     constants.WattAttempts,
	"Seed":                uint64(1),
	"Runs":                1,
	"MakeDir":             true,
	"SearchCriticality":   false,
	"EnrichmentPrecision": 1e-3,
	"SearchWindow":        10,
	"SearchMaxSteps":      200,
}

var fieldsXor = map[string][]string{
	"Enrichment":           {"FissileDensity", "FertileDensity"},
	"FissileDensity":       {"Enrichment"},
	"FertileDensity":       {"Enrichment"},
	"FissileCrossSections": {"FissileThreshold"},
	"FissileThreshold":     {"FissileCrossSections"},
	"FertileCrossSections": {"FertileThreshold"},
	"FertileThreshold":     {"FertileCrossSections"},
}

// a field set in a table needs its requirements set in the same table
var fieldsAnd = map[string][]string{
	"FissileDensity":      {"FertileDensity"},
	"FertileDensity":      {"FissileDensity"},
	"EnrichmentPrecision": {"SearchCriticality"},
	"SearchWindow":        {"SearchCriticality"},
	"SearchMaxSteps":      {"SearchCriticality"},
}

var valueUnits = map[string][]UnitElement{
	"InitialEnergy":    {{Class: Energy, Power: 1}},
	"EnergyGrid":       {{Class: Energy, Power: 1}},
	"FissileThreshold": {{Class: Energy, Power: 1}},
	"FertileThreshold": {{Class: Energy, Power: 1}},
}

var calculableFields = map[string]func(*ModelParameters, []string) ([]string, error){
	"Enrichment": func(mp *ModelParameters, definedFields []string) ([]string, error) {
		if !(mp.Enrichment >= 0 && mp.Enrichment <= 1) {
			return nil, fmt.Errorf("enrichment %v out of [0, 1]", mp.Enrichment)
		}
		mp.FissileDensity = mp.Enrichment
		mp.FertileDensity = 1 - mp.Enrichment
		return []string{"FissileDensity", "FertileDensity"}, nil
	},
}

func (modelConfig *ModelParameters) toBase(parameterNames, units []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for _, name := range parameterNames {
		classes, some := valueUnits[name]
		if !some {
			continue
		}
		field := modelConfigReflect.FieldByName(name)
		switch {
		case field.CanFloat():
			field.SetFloat(Base(field.Float(), classes, units, true))
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Float64:
			converted := make([]float64, field.Len())
			for i := range converted {
				converted[i] = Base(field.Index(i).Float(), classes, units, true)
			}
			field.Set(reflect.ValueOf(converted))
		}
	}
}

func (config *Config) ambiguities(path []string, meta *toml.MetaData) (ambiguities [][]string) {
	withField := func(field string) []string {
		return append(slices.Clone(path), field)
	}
	for field := range fieldsXor {
		if !config.isDefined(withField(field), meta) {
			continue
		}
		var foundAlternatives []string
		for _, alternative := range fieldsXor[field] {
			if config.isDefined(withField(alternative), meta) {
				foundAlternatives = append(foundAlternatives, alternative)
			}
		}
		if len(foundAlternatives) > 0 {
			ambiguities = append(ambiguities, append([]string{field}, foundAlternatives...))
		}
	}
	return
}

func (config *Config) missingRequirements(path []string, meta *toml.MetaData) (missing []string) {
	withField := func(field string) []string {
		return append(slices.Clone(path), field)
	}
	for field, requirements := range fieldsAnd {
		if !config.isDefined(withField(field), meta) {
			continue
		}
		for _, requirement := range requirements {
			if !config.isDefined(withField(requirement), meta) {
				missing = append(missing, field+" requires "+requirement)
			}
		}
	}
	slices.Sort(missing)
	return
}

/*
field value priority:
1. local
2. global
3. default
then calculables replace their source fields (Enrichment -> densities)
*/

func (modelConfig *ModelParameters) CheckAndUnify(modelName string, config *Config, meta *toml.MetaData) error {
	if ambiguities := config.ambiguities(nil, meta); len(ambiguities) > 0 {
		return fmt.Errorf("found global ambiguities %v", ambiguities)
	}
	if ambiguities := config.ambiguities([]string{"Models", modelName}, meta); len(ambiguities) > 0 {
		return fmt.Errorf("found model ambiguities %v", ambiguities)
	}
	if missing := config.missingRequirements(nil, meta); len(missing) > 0 {
		return fmt.Errorf("found global missing requirements %v", missing)
	}
	if missing := config.missingRequirements([]string{"Models", modelName}, meta); len(missing) > 0 {
		return fmt.Errorf("found model missing requirements %v", missing)
	}

	var discoveredParameters, localParameters []string
	excludeFromLoadingDefaultOrOuter := map[string]struct{}{}
	exclude := func(fieldName string) {
		for _, x := range fieldsXor[fieldName] {
			excludeFromLoadingDefaultOrOuter[x] = struct{}{}
		}
	}

	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	fields := reflect.VisibleFields(modelConfigReflect.Type())
	for _, field := range fields {
		if field.IsExported() && config.isDefined(modelPath(modelName, field.Name), meta) {
			localParameters = append(localParameters, field.Name)
			exclude(field.Name)
		}
	}
	discoveredParameters = slices.Clone(localParameters)

	for _, field := range fields {
		fieldName := field.Name
		if _, some := excludeFromLoadingDefaultOrOuter[fieldName]; some || !field.IsExported() || slices.Contains(discoveredParameters, fieldName) {
			continue
		}
		if meta.IsDefined(fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(globalConfigReflect.FieldByName(fieldName))
			discoveredParameters = append(discoveredParameters, fieldName)
			exclude(fieldName)
		}
	}

	modelConfig.toBase(discoveredParameters, config.InputUnits)

	for fieldName, value := range defaultValues {
		if _, x := excludeFromLoadingDefaultOrOuter[fieldName]; !x && !slices.Contains(discoveredParameters, fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(value))
			discoveredParameters = append(discoveredParameters, fieldName)
		}
	}

	var enabledParameters []string
	for _, fieldName := range discoveredParameters {
		field := modelConfigReflect.FieldByName(fieldName)
		if field.Kind() != reflect.Bool || field.Bool() {
			enabledParameters = append(enabledParameters, fieldName)
		}
	}

	for initialFieldName, calculate := range calculableFields {
		if slices.Contains(enabledParameters, initialFieldName) {
			calculated, err := calculate(modelConfig, enabledParameters)
			if err != nil {
				return err
			}
			enabledParameters = slices.DeleteFunc(enabledParameters, func(elem string) bool {
				return elem == initialFieldName
			})
			enabledParameters = append(enabledParameters, calculated...)
		}
	}

	var problems []error
	for _, fieldName := range localParameters {
		for _, requirement := range fieldsAnd[fieldName] {
			if !slices.Contains(enabledParameters, requirement) {
				problems = append(problems, fmt.Errorf("for parameter %s requirement %s not enabled", fieldName, requirement))
			}
		}
	}
	for _, fieldName := range enabledParameters {
		for _, conflict := range fieldsXor[fieldName] {
			if slices.Contains(enabledParameters, conflict) {
				problems = append(problems, fmt.Errorf("for parameter %s found conflicting parameter: %s", fieldName, conflict))
			}
		}
	}
	if modelConfig.Runs < 1 {
		problems = append(problems, fmt.Errorf("runs must be positive, got %d", modelConfig.Runs))
	}
	if modelConfig.SearchCriticality && (!(modelConfig.EnrichmentPrecision > 0) || modelConfig.SearchWindow < 2 || modelConfig.SearchMaxSteps < modelConfig.SearchWindow) {
		problems = append(problems, fmt.Errorf("criticality search needs a positive precision and 2 <= window <= max steps, got %v, %d, %d",
			modelConfig.EnrichmentPrecision, modelConfig.SearchWindow, modelConfig.SearchMaxSteps))
	}

	modelConfig._outputUnits = config.OutputUnits
	return errors.Join(problems...)
}
