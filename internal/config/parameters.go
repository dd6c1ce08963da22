package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"NutraKinetics/internal/model"
)

// Param is an annotated parameter leaf. In YAML it is either a bare number
// or a mapping carrying provenance metadata alongside the value.
type Param struct {
	Value      float64 `yaml:"value"`
	Units      string  `yaml:"units"`
	SourceType string  `yaml:"source_type"`
	SourceID   string  `yaml:"source_id"`
	Notes      string  `yaml:"notes"`
}

// UnmarshalYAML accepts both `0.5` and `{value: 0.5, units: ...}` forms.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Value)
	}
	type raw Param
	return node.Decode((*raw)(p))
}

// parametersFile mirrors the physiological parameter YAML layout.
type parametersFile struct {
	Solver struct {
		TimeGridPoints int    `yaml:"time_grid_points"`
		ODEMethod      string `yaml:"ode_method"`
	} `yaml:"solver"`
	InitialConditions struct {
		PrecursorDoseToStateScale Param `yaml:"precursor_dose_to_state_scale"`
		NadCytBaselineUM          Param `yaml:"nad_cyt_baseline_uM"`
		NadMitoBaselineUM         Param `yaml:"nad_mito_baseline_uM"`
	} `yaml:"initial_conditions"`
	RouteInputs struct {
		OralInputBaseUMPerH Param `yaml:"oral_input_base_uM_per_h"`
		IVInputBaseUMPerH   Param `yaml:"iv_input_base_uM_per_h"`
		OralInputDecayPerH  Param `yaml:"oral_input_decay_per_h"`
	} `yaml:"route_inputs"`
	PrecursorKinetics struct {
		UptakeRatePerH    Param `yaml:"uptake_rate_per_h"`
		ClearanceRatePerH Param `yaml:"clearance_rate_per_h"`
	} `yaml:"precursor_kinetics"`
	NadFlux struct {
		PrecursorToNadGainPerH Param `yaml:"precursor_to_nad_gain_per_h"`
		OralInputToNadGainPerH Param `yaml:"oral_input_to_nad_gain_per_h"`
		IVInputToNadGainPerH   Param `yaml:"iv_input_to_nad_gain_per_h"`
		CytToMitoRatePerH      Param `yaml:"cyt_to_mito_rate_per_h"`
		MitoToCytRatePerH      Param `yaml:"mito_to_cyt_rate_per_h"`
		CD38BaseRatePerH       Param `yaml:"cd38_base_rate_per_h"`
		ParpBaseRatePerH       Param `yaml:"parp_base_rate_per_h"`
		SirtBaseRatePerH       Param `yaml:"sirt_base_rate_per_h"`
		MitoLossRatePerH       Param `yaml:"mito_loss_rate_per_h"`
	} `yaml:"nad_flux"`
	ModifierBounds struct {
		SynthesisMin  Param `yaml:"synthesis_min"`
		SynthesisMax  Param `yaml:"synthesis_max"`
		CD38Min       Param `yaml:"cd38_min"`
		CD38Max       Param `yaml:"cd38_max"`
		AbsorptionMin Param `yaml:"absorption_min"`
		AbsorptionMax Param `yaml:"absorption_max"`
	} `yaml:"modifier_bounds"`
	Safeguards struct {
		EC50MinUM             Param `yaml:"ec50_min_uM"`
		HillMin               Param `yaml:"hill_min"`
		KaMinPerH             Param `yaml:"ka_min_per_h"`
		KelMinPerH            Param `yaml:"kel_min_per_h"`
		KaKelEqualTolerance   Param `yaml:"ka_kel_equal_tolerance"`
		KaKelAdjustmentFactor Param `yaml:"ka_kel_adjustment_factor"`
	} `yaml:"numerical_safeguards"`
	ClassScalars map[string]Param `yaml:"mechanism_class_scalars"`
}

// LoadParameters reads the physiological parameter file and returns the core
// parameter set plus the mechanism-class scalars.
func LoadParameters(path string) (model.CoreModelParameters, map[string]float64, error) {
	var pf parametersFile

	data, err := os.ReadFile(path)
	if err != nil {
		return model.CoreModelParameters{}, nil, fmt.Errorf("read parameters: %w", err)
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return model.CoreModelParameters{}, nil, fmt.Errorf("parse parameters: %w", err)
	}

	params := model.CoreModelParameters{
		Solver: model.SolverConfig{
			TimeGridPoints: pf.Solver.TimeGridPoints,
			ODEMethod:      pf.Solver.ODEMethod,
		},
		InitialConditions: model.InitialConditions{
			PrecursorDoseToStateScale: pf.InitialConditions.PrecursorDoseToStateScale.Value,
			NadCytBaselineUM:          pf.InitialConditions.NadCytBaselineUM.Value,
			NadMitoBaselineUM:         pf.InitialConditions.NadMitoBaselineUM.Value,
		},
		RouteInputs: model.RouteInputs{
			OralInputBaseUMPerH: pf.RouteInputs.OralInputBaseUMPerH.Value,
			IVInputBaseUMPerH:   pf.RouteInputs.IVInputBaseUMPerH.Value,
			OralInputDecayPerH:  pf.RouteInputs.OralInputDecayPerH.Value,
		},
		PrecursorKinetics: model.PrecursorKinetics{
			UptakeRatePerH:    pf.PrecursorKinetics.UptakeRatePerH.Value,
			ClearanceRatePerH: pf.PrecursorKinetics.ClearanceRatePerH.Value,
		},
		NadFlux: model.NadFluxRates{
			PrecursorToNadGainPerH: pf.NadFlux.PrecursorToNadGainPerH.Value,
			OralInputToNadGainPerH: pf.NadFlux.OralInputToNadGainPerH.Value,
			IVInputToNadGainPerH:   pf.NadFlux.IVInputToNadGainPerH.Value,
			CytToMitoRatePerH:      pf.NadFlux.CytToMitoRatePerH.Value,
			MitoToCytRatePerH:      pf.NadFlux.MitoToCytRatePerH.Value,
			CD38BaseRatePerH:       pf.NadFlux.CD38BaseRatePerH.Value,
			ParpBaseRatePerH:       pf.NadFlux.ParpBaseRatePerH.Value,
			SirtBaseRatePerH:       pf.NadFlux.SirtBaseRatePerH.Value,
			MitoLossRatePerH:       pf.NadFlux.MitoLossRatePerH.Value,
		},
		ModifierBounds: model.ModifierBounds{
			SynthesisMin:  pf.ModifierBounds.SynthesisMin.Value,
			SynthesisMax:  pf.ModifierBounds.SynthesisMax.Value,
			CD38Min:       pf.ModifierBounds.CD38Min.Value,
			CD38Max:       pf.ModifierBounds.CD38Max.Value,
			AbsorptionMin: pf.ModifierBounds.AbsorptionMin.Value,
			AbsorptionMax: pf.ModifierBounds.AbsorptionMax.Value,
		},
		Safeguards: model.NumericalSafeguards{
			EC50MinUM:             pf.Safeguards.EC50MinUM.Value,
			HillMin:               pf.Safeguards.HillMin.Value,
			KaMinPerH:             pf.Safeguards.KaMinPerH.Value,
			KelMinPerH:            pf.Safeguards.KelMinPerH.Value,
			KaKelEqualTolerance:   pf.Safeguards.KaKelEqualTolerance.Value,
			KaKelAdjustmentFactor: pf.Safeguards.KaKelAdjustmentFactor.Value,
		},
	}

	if err := validateParameters(params); err != nil {
		return model.CoreModelParameters{}, nil, err
	}

	scalars := make(map[string]float64, len(pf.ClassScalars))
	for class, p := range pf.ClassScalars {
		scalars[class] = p.Value
	}
	return params, scalars, nil
}

func validateParameters(p model.CoreModelParameters) error {
	if p.InitialConditions.NadCytBaselineUM <= 0 {
		return fmt.Errorf("initial_conditions.nad_cyt_baseline_uM must be positive")
	}
	if p.InitialConditions.NadMitoBaselineUM <= 0 {
		return fmt.Errorf("initial_conditions.nad_mito_baseline_uM must be positive")
	}
	if p.ModifierBounds.SynthesisMin > p.ModifierBounds.SynthesisMax {
		return fmt.Errorf("modifier_bounds: synthesis_min exceeds synthesis_max")
	}
	if p.ModifierBounds.CD38Min > p.ModifierBounds.CD38Max {
		return fmt.Errorf("modifier_bounds: cd38_min exceeds cd38_max")
	}
	if p.ModifierBounds.AbsorptionMin > p.ModifierBounds.AbsorptionMax {
		return fmt.Errorf("modifier_bounds: absorption_min exceeds absorption_max")
	}
	if p.Safeguards.KaKelAdjustmentFactor == 1.0 {
		return fmt.Errorf("numerical_safeguards.ka_kel_adjustment_factor must not be 1.0")
	}
	return nil
}
