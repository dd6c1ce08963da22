// Package dynamics aggregates per-supplement effects and cross-supplement
// interaction rules into bounded channel multiplier series.
package dynamics

import (
	"math"
	"sort"

	"NutraKinetics/internal/model"
	"NutraKinetics/internal/supplement"
)

// Result holds the aggregated modifier series and per-source diagnostics.
type Result struct {
	SynthesisEffect  []float64
	CD38Effect       []float64
	AbsorptionEffect []float64

	SynthesisMultiplier  []float64
	CD38Multiplier       []float64
	AbsorptionMultiplier []float64

	ConcentrationsUM map[string][]float64
	SatSignals       map[string][]float64
	StackSignalUM    []float64

	// RuleEffects records each applied rule's signed effect series by rule id.
	RuleEffects map[string][]float64
}

// Compute runs every module, sums channel effects pointwise, applies the
// interaction rules that are fully matched by the selection, and converts
// each channel total into a multiplier clipped to its configured bounds.
func Compute(
	timesH []float64,
	modules map[string]supplement.Module,
	dosesMg map[string]float64,
	classScalars map[string]float64,
	rules []model.InteractionRule,
	bounds model.ModifierBounds,
) Result {
	n := len(timesH)
	res := Result{
		SynthesisEffect:  make([]float64, n),
		CD38Effect:       make([]float64, n),
		AbsorptionEffect: make([]float64, n),
		ConcentrationsUM: make(map[string][]float64, len(modules)),
		SatSignals:       make(map[string][]float64, len(modules)),
		StackSignalUM:    make([]float64, n),
		RuleEffects:      make(map[string][]float64),
	}

	// Map iteration order is randomized; fix it for reproducible output.
	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		mod := modules[id]
		def := mod.Definition()

		scalar, ok := classScalars[def.MechanismClass]
		if !ok {
			scalar = 1.0
		}
		dose, ok := dosesMg[id]
		if !ok {
			dose = def.DefaultDoseMg
		}

		series := mod.EffectSeries(timesH, dose, scalar)
		res.ConcentrationsUM[id] = series.ConcentrationUM
		res.SatSignals[id] = series.SatSignal

		for i := 0; i < n; i++ {
			res.SynthesisEffect[i] += series.SynthesisEffect[i]
			res.CD38Effect[i] += series.CD38Effect[i]
			res.AbsorptionEffect[i] += series.AbsorptionEffect[i]
			res.StackSignalUM[i] += series.ConcentrationUM[i]
		}
	}

	for _, rule := range rules {
		signed, ok := ruleEffect(timesH, rule, res.SatSignals)
		if !ok {
			continue
		}
		switch rule.Target {
		case model.ChannelSynthesis:
			add(res.SynthesisEffect, signed)
		case model.ChannelCD38:
			add(res.CD38Effect, signed)
		case model.ChannelAbsorption:
			add(res.AbsorptionEffect, signed)
		default:
			continue
		}
		res.RuleEffects[rule.ID] = signed
	}

	res.SynthesisMultiplier = toMultiplier(res.SynthesisEffect, bounds.SynthesisMin, bounds.SynthesisMax)
	res.CD38Multiplier = toMultiplier(res.CD38Effect, bounds.CD38Min, bounds.CD38Max)
	res.AbsorptionMultiplier = toMultiplier(res.AbsorptionEffect, bounds.AbsorptionMin, bounds.AbsorptionMax)

	return res
}

// ruleEffect computes the signed interaction effect series for one rule.
// A rule contributes nothing unless every required supplement has a computed
// saturation signal; partial matches are skipped.
func ruleEffect(timesH []float64, rule model.InteractionRule, satSignals map[string][]float64) ([]float64, bool) {
	if len(rule.Supplements) == 0 {
		return nil, false
	}
	members := make([][]float64, 0, len(rule.Supplements))
	for _, id := range rule.Supplements {
		sig, ok := satSignals[id]
		if !ok {
			return nil, false
		}
		members = append(members, sig)
	}

	coefficient := rule.ClampCoefficient(rule.Coefficient)
	sign := 1.0
	if rule.Direction == model.DirectionDecrease {
		sign = -1.0
	}

	// Geometric mean of member signals: (prod s_i)^(1/k).
	k := float64(len(members))
	signed := make([]float64, len(timesH))
	for i := range timesH {
		product := 1.0
		for _, sig := range members {
			product *= sig[i]
		}
		signed[i] = sign * coefficient * math.Pow(product, 1.0/k)
	}
	return signed, true
}

func add(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func toMultiplier(effect []float64, min, max float64) []float64 {
	out := make([]float64, len(effect))
	for i, e := range effect {
		m := 1.0 + e
		if m < min {
			m = min
		}
		if m > max {
			m = max
		}
		out[i] = m
	}
	return out
}
