package model

// SolverConfig selects the integration method and output grid density.
type SolverConfig struct {
	TimeGridPoints int
	ODEMethod      string
}

// InitialConditions scale the administered dose into the precursor state and
// set the NAD pool baselines.
type InitialConditions struct {
	PrecursorDoseToStateScale float64
	NadCytBaselineUM          float64
	NadMitoBaselineUM         float64
}

// RouteInputs hold the base input rates per administration route.
// OralInputDecayPerH models first-order depletion of the oral dose depot;
// zero reproduces a constant oral input.
type RouteInputs struct {
	OralInputBaseUMPerH float64
	IVInputBaseUMPerH   float64
	OralInputDecayPerH  float64
}

// PrecursorKinetics are the first-order plasma precursor rates.
type PrecursorKinetics struct {
	UptakeRatePerH    float64
	ClearanceRatePerH float64
}

// NadFluxRates are the NAD synthesis, transfer, and consumption rates.
type NadFluxRates struct {
	PrecursorToNadGainPerH float64
	OralInputToNadGainPerH float64
	IVInputToNadGainPerH   float64
	CytToMitoRatePerH      float64
	MitoToCytRatePerH      float64
	CD38BaseRatePerH       float64
	ParpBaseRatePerH       float64
	SirtBaseRatePerH       float64
	MitoLossRatePerH       float64
}

// ModifierBounds clamp each channel multiplier to a plausible range.
type ModifierBounds struct {
	SynthesisMin  float64
	SynthesisMax  float64
	CD38Min       float64
	CD38Max       float64
	AbsorptionMin float64
	AbsorptionMax float64
}

// Range returns the [min, max] bounds for the given channel.
func (b ModifierBounds) Range(c Channel) (min, max float64) {
	switch c {
	case ChannelSynthesis:
		return b.SynthesisMin, b.SynthesisMax
	case ChannelCD38:
		return b.CD38Min, b.CD38Max
	case ChannelAbsorption:
		return b.AbsorptionMin, b.AbsorptionMax
	}
	return 0, 0
}

// NumericalSafeguards floor ill-conditioned registry values before use.
type NumericalSafeguards struct {
	EC50MinUM             float64
	HillMin               float64
	KaMinPerH             float64
	KelMinPerH            float64
	KaKelEqualTolerance   float64
	KaKelAdjustmentFactor float64
}

// CoreModelParameters is the full read-only physiological parameter set,
// loaded once at startup and shared across concurrent runs.
type CoreModelParameters struct {
	Solver            SolverConfig
	InitialConditions InitialConditions
	RouteInputs       RouteInputs
	PrecursorKinetics PrecursorKinetics
	NadFlux           NadFluxRates
	ModifierBounds    ModifierBounds
	Safeguards        NumericalSafeguards
}
