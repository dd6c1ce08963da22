package model

// SimulationResult holds every time-aligned series produced by one run.
// Owned by the caller; never mutated after construction.
type SimulationResult struct {
	TimesH []float64

	// Physiological states.
	PlasmaPrecursorUM []float64
	NadCytUM          []float64
	NadMitoUM         []float64

	// Raw channel effect totals and the bounded multipliers derived from them.
	SynthesisEffect  []float64
	CD38Effect       []float64
	AbsorptionEffect []float64

	SynthesisMultiplier  []float64
	CD38Multiplier       []float64
	AbsorptionMultiplier []float64

	// Per-supplement diagnostics keyed by supplement id.
	SupplementPlasmaUM  map[string][]float64
	SupplementSatSignal map[string][]float64

	// Summed supplement concentration overlay.
	StackSignalUM []float64

	// Signed per-rule interaction effects keyed by rule id.
	InteractionEffects map[string][]float64

	// Deduplicated, order-preserving advisory messages.
	Warnings []string
}

// PrecursorCmax returns the peak plasma precursor value and its time.
func (r *SimulationResult) PrecursorCmax() (cmax, tmaxH float64) {
	for i, v := range r.PlasmaPrecursorUM {
		if i == 0 || v > cmax {
			cmax = v
			tmaxH = r.TimesH[i]
		}
	}
	return cmax, tmaxH
}

// PeakNadCyt returns the maximum cytosolic NAD value.
func (r *SimulationResult) PeakNadCyt() float64 { return seriesMax(r.NadCytUM) }

// PeakNadMito returns the maximum mitochondrial NAD value.
func (r *SimulationResult) PeakNadMito() float64 { return seriesMax(r.NadMitoUM) }

// FinalNadCyt returns the last cytosolic NAD sample, or 0 for an empty run.
func (r *SimulationResult) FinalNadCyt() float64 {
	if len(r.NadCytUM) == 0 {
		return 0
	}
	return r.NadCytUM[len(r.NadCytUM)-1]
}

func seriesMax(xs []float64) float64 {
	var max float64
	for i, v := range xs {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// FitResult reports one calibration attempt. Non-convergence is reported via
// Success=false, never via an error; NotApplicable distinguishes a scenario
// with zero fittable rules from a failed optimization.
type FitResult struct {
	Success       bool
	NotApplicable bool
	Message       string
	Objective     float64
	Iterations    int

	// Coefficients maps rule id to the fitted (or fixed) coefficient.
	Coefficients map[string]float64
}
