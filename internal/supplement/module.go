// Package supplement computes per-supplement exposure and effect series from
// dose and time grid.
package supplement

import (
	"NutraKinetics/internal/model"
)

// EffectSeries holds one supplement's series, all aligned to the time grid.
type EffectSeries struct {
	ConcentrationUM  []float64
	SatSignal        []float64
	SynthesisEffect  []float64
	CD38Effect       []float64
	AbsorptionEffect []float64
}

// Module computes the exposure trace and channel effects for one supplement.
// Implementations must be pure: identical inputs produce identical series.
type Module interface {
	Definition() model.SupplementDefinition
	EffectSeries(timesH []float64, doseMg, classScalar float64) EffectSeries
}

// Constructor builds a Module for a definition under the given safeguards.
type Constructor func(def model.SupplementDefinition, sg model.NumericalSafeguards) Module

// constructors maps mechanism class to a specialised module constructor.
// Classes without an entry fall back to the generic module, so new
// mechanism-specific modules can be added without changing any caller.
var constructors = map[string]Constructor{}

// RegisterClass installs a constructor for a mechanism class.
func RegisterClass(mechanismClass string, c Constructor) {
	constructors[mechanismClass] = c
}

// Build creates one module per definition, dispatching on mechanism class.
func Build(defs []model.SupplementDefinition, sg model.NumericalSafeguards) map[string]Module {
	modules := make(map[string]Module, len(defs))
	for _, def := range defs {
		if c, ok := constructors[def.MechanismClass]; ok {
			modules[def.ID] = c(def, sg)
			continue
		}
		modules[def.ID] = NewGeneric(def, sg)
	}
	return modules
}
