package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"NutraKinetics/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalParameters = `
solver:
  time_grid_points: 100
  ode_method: rk45
initial_conditions:
  precursor_dose_to_state_scale:
    value: 0.002
    units: uM_per_mg
    source_type: heuristic
    source_id: dose_scaling_v2
  nad_cyt_baseline_uM: 40.0
  nad_mito_baseline_uM: 30.0
route_inputs:
  oral_input_base_uM_per_h: 0.8
  iv_input_base_uM_per_h: 1.0
  oral_input_decay_per_h: 0.4
precursor_kinetics:
  uptake_rate_per_h: 0.3
  clearance_rate_per_h: 0.5
nad_flux:
  precursor_to_nad_gain_per_h: 0.03
  oral_input_to_nad_gain_per_h: 0.05
  iv_input_to_nad_gain_per_h: 0.01
  cyt_to_mito_rate_per_h: 0.006
  mito_to_cyt_rate_per_h: 0.008
  cd38_base_rate_per_h: 0.0015
  parp_base_rate_per_h: 0.001
  sirt_base_rate_per_h: 0.0005
  mito_loss_rate_per_h: 0.001
modifier_bounds:
  synthesis_min: 0.25
  synthesis_max: 3.0
  cd38_min: 0.25
  cd38_max: 2.0
  absorption_min: 0.5
  absorption_max: 2.0
numerical_safeguards:
  ec50_min_uM: 1.0e-6
  hill_min: 0.1
  ka_min_per_h: 1.0e-4
  kel_min_per_h: 1.0e-4
  ka_kel_equal_tolerance: 1.0e-6
  ka_kel_adjustment_factor: 0.999
mechanism_class_scalars:
  nad_precursor: 1.0
  cd38_inhibitor:
    value: 0.9
    source_type: heuristic
    source_id: class_scaling_v1
`

const minimalSupplements = `
supplements:
  - id: nr
    label: Nicotinamide Riboside
    category: nad_precursor
    mechanism_class: nad_precursor
    enabled: true
    default_dose_mg: 300
    route_support: [oral]
    kinetics: {ka_per_h: 1.2, kel_per_h: 0.35, exposure_scale: 0.004}
    dynamics: {ec50_uM: 1.5, hill_n: 1.6, synthesis_gain_per_signal: 0.35}
    interaction_model_ready: true
  - id: nmn
    label: Nicotinamide Mononucleotide
    category: nad_precursor
    mechanism_class: nad_precursor
    enabled: true
    default_dose_mg: 250
    route_support: [oral, iv]
    kinetics: {ka_per_h: 0.9, kel_per_h: 0.45, exposure_scale: 0.003}
    dynamics: {ec50_uM: 1.2, hill_n: 1.4, synthesis_gain_per_signal: 0.30}
    interaction_model_ready: true
interactions:
  - id: nr_nmn_precursor_synergy
    supplements: [nr, nmn]
    target: synthesis
    direction: increase
    coefficient: 0.10
    lower_bound: 0.0
    upper_bound: 0.5
    fit: {enabled: true, prior_mean: 0.10, prior_sd: 0.20}
    source: {type: heuristic, id: precursor_stack_v1}
    severity: warning
    message: shared salvage capacity
`

func TestLoadParameters(t *testing.T) {
	path := writeFile(t, "parameters.yaml", minimalParameters)

	params, scalars, err := LoadParameters(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if params.Solver.TimeGridPoints != 100 || params.Solver.ODEMethod != "rk45" {
		t.Errorf("solver mismatch: %+v", params.Solver)
	}
	// Annotated and bare leaves both decode to their values.
	if params.InitialConditions.PrecursorDoseToStateScale != 0.002 {
		t.Errorf("annotated leaf mismatch: %g", params.InitialConditions.PrecursorDoseToStateScale)
	}
	if params.InitialConditions.NadCytBaselineUM != 40 {
		t.Errorf("bare leaf mismatch: %g", params.InitialConditions.NadCytBaselineUM)
	}
	if params.NadFlux.CD38BaseRatePerH != 0.0015 {
		t.Errorf("flux mismatch: %g", params.NadFlux.CD38BaseRatePerH)
	}
	if scalars["nad_precursor"] != 1.0 || scalars["cd38_inhibitor"] != 0.9 {
		t.Errorf("class scalars mismatch: %v", scalars)
	}
}

func TestLoadParameters_RejectsBadBounds(t *testing.T) {
	bad := strings.Replace(minimalParameters, "synthesis_max: 3.0", "synthesis_max: 0.1", 1)
	path := writeFile(t, "parameters.yaml", bad)
	if _, _, err := LoadParameters(path); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestLoadSupplements(t *testing.T) {
	path := writeFile(t, "supplements.yaml", minimalSupplements)

	registry, rules, err := LoadSupplements(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	nr, ok := registry["nr"]
	if !ok {
		t.Fatal("missing nr definition")
	}
	if nr.KaPerH != 1.2 || nr.SynthesisGainPerSignal != 0.35 || !nr.Enabled {
		t.Errorf("nr definition mismatch: %+v", nr)
	}
	if !nr.SupportsRoute(model.RouteOral) || nr.SupportsRoute(model.RouteIV) {
		t.Errorf("nr route support mismatch: %v", nr.RouteSupport)
	}

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	rule := rules[0]
	if rule.Target != model.ChannelSynthesis || rule.Direction != model.DirectionIncrease {
		t.Errorf("rule mismatch: %+v", rule)
	}
	if !rule.FitEnabled || rule.PriorSD != 0.20 {
		t.Errorf("rule fit metadata mismatch: %+v", rule)
	}
}

func TestLoadSupplements_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"unknown member",
			func(s string) string { return strings.Replace(s, "[nr, nmn]", "[nr, ghost]", 1) },
			"unknown supplement",
		},
		{
			"bad channel",
			func(s string) string { return strings.Replace(s, "target: synthesis", "target: telomere", 1) },
			"unknown target channel",
		},
		{
			"bad direction",
			func(s string) string { return strings.Replace(s, "direction: increase", "direction: sideways", 1) },
			"unknown direction",
		},
		{
			"inverted bounds",
			func(s string) string { return strings.Replace(s, "upper_bound: 0.5", "upper_bound: -1.0", 1) },
			"upper_bound below lower_bound",
		},
		{
			"bad route",
			func(s string) string { return strings.Replace(s, "[oral, iv]", "[oral, sublingual]", 1) },
			"unknown route",
		},
	}

	for _, tc := range cases {
		path := writeFile(t, "supplements.yaml", tc.mutate(minimalSupplements))
		_, _, err := LoadSupplements(path)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
sweep:
  max_saved_runs: 5
scenarios:
  - label: baseline
    route: oral
    compound: NR
    dose_mg: 300
    duration_h: 24
`)
	t.Setenv("NK_SQLITE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Paths.ParametersFile != "configs/parameters.base.yaml" {
		t.Errorf("missing default parameters path: %q", cfg.Paths.ParametersFile)
	}
	if cfg.Database.SQLitePath != "/tmp/override.db" {
		t.Errorf("env override not applied: %q", cfg.Database.SQLitePath)
	}
	if cfg.Sweep.MaxSavedRuns != 5 {
		t.Errorf("yaml value lost: %d", cfg.Sweep.MaxSavedRuns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}

	scenario := cfg.Scenarios[0].ToScenario()
	if scenario.Route != model.RouteOral || scenario.DoseMg != 300 {
		t.Errorf("scenario conversion mismatch: %+v", scenario)
	}
}

func TestConfigValidate_BadScenario(t *testing.T) {
	cfg := &Config{}
	cfg.Paths.ParametersFile = "p.yaml"
	cfg.Paths.SupplementsFile = "s.yaml"
	cfg.Scenarios = []ScenarioConfig{{Route: "intranasal", DurationH: 24}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown route")
	}

	cfg.Scenarios = []ScenarioConfig{{Route: "oral", DurationH: 0}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive duration")
	}
}
