// Package simulation integrates the three-pool NAD model under scenario
// forcing produced by the supplement stack.
package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"NutraKinetics/internal/dynamics"
	"NutraKinetics/internal/model"
	"NutraKinetics/internal/supplement"
	"NutraKinetics/internal/validator"
)

// defaultGridPoints is used when the solver config omits a grid density.
const defaultGridPoints = 250

// Engine runs forward simulations against an immutable configuration. Safe
// for concurrent use: every run is a pure function of its scenario.
type Engine struct {
	params       model.CoreModelParameters
	registry     map[string]model.SupplementDefinition
	rules        []model.InteractionRule
	classScalars map[string]float64
}

// NewEngine creates an engine over the loaded configuration.
func NewEngine(
	params model.CoreModelParameters,
	registry map[string]model.SupplementDefinition,
	rules []model.InteractionRule,
	classScalars map[string]float64,
) *Engine {
	return &Engine{
		params:       params,
		registry:     registry,
		rules:        rules,
		classScalars: classScalars,
	}
}

// Params returns the engine's core parameter set.
func (e *Engine) Params() model.CoreModelParameters { return e.params }

// Rules returns the configured interaction rule set.
func (e *Engine) Rules() []model.InteractionRule { return e.rules }

// Registry returns the supplement definition registry.
func (e *Engine) Registry() map[string]model.SupplementDefinition { return e.registry }

// Validate checks the scenario's supplement stack without running it.
func (e *Engine) Validate(s model.Scenario) validator.Validation {
	return validator.Check(e.registry, e.rules, s.Supplements, s.Route, s.Compound)
}

// Run validates the scenario and, if unblocked, simulates it. A blocked
// scenario returns a *validator.BlockingError carrying every violation.
func (e *Engine) Run(s model.Scenario) (*model.SimulationResult, error) {
	if s.DurationH <= 0 {
		return nil, fmt.Errorf("scenario duration must be positive, got %g h", s.DurationH)
	}

	validation := e.Validate(s)
	if !validation.OK() {
		return nil, &validator.BlockingError{Violations: validation.BlockingErrors}
	}

	n := e.params.Solver.TimeGridPoints
	if n < 2 {
		n = defaultGridPoints
	}
	times := make([]float64, n)
	floats.Span(times, 0, s.DurationH)

	selected := s.SelectedSet()
	defs := make([]model.SupplementDefinition, 0, len(selected))
	doses := make(map[string]float64, len(selected))
	for _, id := range selected {
		def := e.registry[id]
		defs = append(defs, def)
		if dose, ok := s.SupplementDosesMg[id]; ok {
			doses[id] = dose
		} else {
			doses[id] = def.DefaultDoseMg
		}
	}

	modules := supplement.Build(defs, e.params.Safeguards)
	rules := model.ApplyCoefficientOverrides(e.rules, s.CoefficientOverrides)
	mods := dynamics.Compute(times, modules, doses, e.classScalars, rules, e.params.ModifierBounds)

	f := forcing{}
	var err error
	if f.synthesis, err = newGridSeries(times, mods.SynthesisMultiplier); err != nil {
		return nil, err
	}
	if f.cd38, err = newGridSeries(times, mods.CD38Multiplier); err != nil {
		return nil, err
	}
	if f.absorption, err = newGridSeries(times, mods.AbsorptionMultiplier); err != nil {
		return nil, err
	}

	cd38Scale := s.CD38Scale
	if cd38Scale <= 0 {
		cd38Scale = 1.0
	}

	y0 := state{
		math.Max(s.DoseMg*e.params.InitialConditions.PrecursorDoseToStateScale, 0),
		e.params.InitialConditions.NadCytBaselineUM,
		e.params.InitialConditions.NadMitoBaselineUM,
	}

	deriv := func(t float64, y state) state {
		return derivatives(t, y, s.Route, cd38Scale, f, e.params)
	}
	states := solve(e.params.Solver.ODEMethod, deriv, y0, times)

	result := &model.SimulationResult{
		TimesH:               times,
		PlasmaPrecursorUM:    make([]float64, n),
		NadCytUM:             make([]float64, n),
		NadMitoUM:            make([]float64, n),
		SynthesisEffect:      mods.SynthesisEffect,
		CD38Effect:           mods.CD38Effect,
		AbsorptionEffect:     mods.AbsorptionEffect,
		SynthesisMultiplier:  mods.SynthesisMultiplier,
		CD38Multiplier:       mods.CD38Multiplier,
		AbsorptionMultiplier: mods.AbsorptionMultiplier,
		SupplementPlasmaUM:   mods.ConcentrationsUM,
		SupplementSatSignal:  mods.SatSignals,
		StackSignalUM:        mods.StackSignalUM,
		InteractionEffects:   mods.RuleEffects,
		Warnings:             validation.Warnings,
	}
	for i, y := range states {
		result.PlasmaPrecursorUM[i] = y[0]
		result.NadCytUM[i] = y[1]
		result.NadMitoUM[i] = y[2]
	}
	return result, nil
}
