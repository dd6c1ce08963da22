package supplement

import (
	"math"

	"NutraKinetics/internal/model"
)

// Generic is the default module: one-compartment oral absorption/elimination
// plus a Hill saturation signal feeding three linear gain channels. It serves
// every mechanism class that has no specialised module registered.
type Generic struct {
	def model.SupplementDefinition
	sg  model.NumericalSafeguards
}

// NewGeneric creates the default module for a definition.
func NewGeneric(def model.SupplementDefinition, sg model.NumericalSafeguards) *Generic {
	return &Generic{def: def, sg: sg}
}

// Definition returns the registry entry backing this module.
func (g *Generic) Definition() model.SupplementDefinition { return g.def }

// rates returns ka and kel after flooring, with the flip-flop adjustment
// applied when the two are too close for the analytic solution.
func (g *Generic) rates() (ka, kel float64) {
	ka = math.Max(g.def.KaPerH, g.sg.KaMinPerH)
	kel = math.Max(g.def.KelPerH, g.sg.KelMinPerH)
	if math.Abs(ka-kel) < g.sg.KaKelEqualTolerance {
		kel = ka * g.sg.KaKelAdjustmentFactor
	}
	return ka, kel
}

// ConcentrationTrace evaluates C(t) = scale * dose * (e^(-kel*t) - e^(-ka*t)),
// floored at zero.
func (g *Generic) ConcentrationTrace(timesH []float64, doseMg float64) []float64 {
	ka, kel := g.rates()
	scale := g.def.ExposureScale * math.Max(doseMg, 0)

	trace := make([]float64, len(timesH))
	for i, t := range timesH {
		v := scale * (math.Exp(-kel*t) - math.Exp(-ka*t))
		if v < 0 {
			v = 0
		}
		trace[i] = v
	}
	return trace
}

// saturatingSignal maps a concentration trace through the Hill equation,
// with EC50 and n floored and a zero-denominator guard.
func (g *Generic) saturatingSignal(concentrationUM []float64) []float64 {
	ec50 := math.Max(g.def.EC50UM, g.sg.EC50MinUM)
	hill := math.Max(g.def.HillN, g.sg.HillMin)
	ec50Pow := math.Pow(ec50, hill)

	signal := make([]float64, len(concentrationUM))
	for i, c := range concentrationUM {
		num := math.Pow(math.Max(c, 0), hill)
		den := ec50Pow + num
		if den > 0 {
			signal[i] = num / den
		}
	}
	return signal
}

// EffectSeries computes the full per-supplement series for the given dose.
func (g *Generic) EffectSeries(timesH []float64, doseMg, classScalar float64) EffectSeries {
	concentration := g.ConcentrationTrace(timesH, doseMg)
	signal := g.saturatingSignal(concentration)

	n := len(timesH)
	series := EffectSeries{
		ConcentrationUM:  concentration,
		SatSignal:        signal,
		SynthesisEffect:  make([]float64, n),
		CD38Effect:       make([]float64, n),
		AbsorptionEffect: make([]float64, n),
	}
	for i, s := range signal {
		series.SynthesisEffect[i] = classScalar * g.def.SynthesisGainPerSignal * s
		series.CD38Effect[i] = classScalar * g.def.CD38EffectPerSignal * s
		series.AbsorptionEffect[i] = classScalar * g.def.AbsorptionGainPerSignal * s
	}
	return series
}
