package report

import (
	"strings"
	"testing"

	"NutraKinetics/internal/model"
	"NutraKinetics/internal/validator"
)

func TestFormatRunSummary(t *testing.T) {
	scenario := model.Scenario{
		Route: model.RouteOral, Compound: "NR",
		DoseMg: 300, DurationH: 24,
		Supplements: []string{"nr", "nmn", "nr"},
	}
	result := &model.SimulationResult{
		TimesH:            []float64{0, 1, 24},
		PlasmaPrecursorUM: []float64{0.6, 0.71, 0.01},
		NadCytUM:          []float64{40, 40.2, 39.8},
		NadMitoUM:         []float64{30, 30, 29.9},
		Warnings:          []string{"advisory message"},
	}

	out := FormatRunSummary(scenario, result)
	for _, want := range []string{
		"NR oral 300 mg, 24 h",
		"Supplements: nr, nmn", // deduplicated
		"Cmax: 0.710 uM at 1.00 h",
		"Peak NAD (cyt): 40.200",
		"Final NAD (cyt): 39.800",
		"WARNING: advisory message",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatValidation(t *testing.T) {
	if out := FormatValidation(validator.Validation{}); !strings.Contains(out, "OK") {
		t.Errorf("expected OK line, got %q", out)
	}

	out := FormatValidation(validator.Validation{
		BlockingErrors: []string{"bad combination"},
		Warnings:       []string{"be careful"},
	})
	if !strings.Contains(out, "BLOCKED: bad combination") || !strings.Contains(out, "WARNING: be careful") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatFitResult(t *testing.T) {
	out := FormatFitResult(&model.FitResult{
		Success: true, Iterations: 12, Objective: 0.0034,
		Coefficients: map[string]float64{
			"b_rule": 0.2,
			"a_rule": 0.1,
		},
	})
	if !strings.Contains(out, "converged in 12 iterations") {
		t.Errorf("missing convergence line:\n%s", out)
	}
	// Coefficients print in deterministic id order.
	if strings.Index(out, "a_rule") > strings.Index(out, "b_rule") {
		t.Errorf("coefficients not sorted:\n%s", out)
	}

	out = FormatFitResult(&model.FitResult{NotApplicable: true, Message: "no fittable rules"})
	if !strings.Contains(out, "not applicable") {
		t.Errorf("missing not-applicable line:\n%s", out)
	}
}

func TestFormatInteractionTable(t *testing.T) {
	out := FormatInteractionTable([]model.InteractionRule{{
		ID: "nr_nmn_precursor_synergy", Supplements: []string{"nr", "nmn"},
		Target: model.ChannelSynthesis, Direction: model.DirectionIncrease,
		Coefficient: 0.1, UpperBound: 0.5, FitEnabled: true,
	}})
	if !strings.Contains(out, "nr+nmn") || !strings.Contains(out, "synthesis") {
		t.Errorf("table missing rule fields:\n%s", out)
	}
	if !strings.Contains(out, "RULE") {
		t.Errorf("table missing header:\n%s", out)
	}
}
