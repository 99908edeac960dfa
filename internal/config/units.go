package config

import (
	"fmt"
	"slices"
)

// internal units are eV and barns
var unitToBase = map[string]float64{
	"eV":  1,    // [eV]
	"keV": 1e3,  // [eV]
	"MeV": 1e6,  // [eV]
	"b":   1,    // [b]
	"mb":  1e-3, // [b]
	"fm2": 1e-2, // [b]
}

type UnitClass int

const (
	Energy UnitClass = iota
	CrossSection
)

var unitsInClass = map[UnitClass][]string{
	Energy:       {"eV", "keV", "MeV"},
	CrossSection: {"b", "mb", "fm2"},
}

var classesOfUnits = map[string]UnitClass{
	"eV":  Energy,
	"keV": Energy,
	"MeV": Energy,
	"b":   CrossSection,
	"mb":  CrossSection,
	"fm2": CrossSection,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

var defaultUnits = []string{"eV", "b"}

// checkUnits completes a unit list with the default unit of every class it
// leaves out. Unknown units and a second unit of the same class are conflicts.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if _, some := classes[class]; some || !known {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = slices.Clone(units)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

func unitOfClass(class UnitClass, units []string) string {
	for _, unit := range units {
		if classesOfUnits[unit] == class && slices.Contains(unitsInClass[class], unit) {
			return unit
		}
	}
	return defaultUnits[class]
}

// Base converts v expressed in units into eV and barns when direct, and back
// otherwise.
func Base(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for _, uc := range classes {
		factor := unitToBase[unitOfClass(uc.Class, units)]
		power := uc.Power
		if !direct {
			power = -power
		}
		for ; power > 0; power-- {
			v *= factor
		}
		for ; power < 0; power++ {
			v /= factor
		}
	}
	return v
}

// UnitLabel names the unit of a quantity, e.g. "keV" or "b".
func UnitLabel(classes []UnitElement, units []string) string {
	label := ""
	for i, uc := range classes {
		if i > 0 {
			label += " "
		}
		label += unitOfClass(uc.Class, units)
		if uc.Power != 1 {
			label += fmt.Sprintf("^%d", uc.Power)
		}
	}
	return label
}
