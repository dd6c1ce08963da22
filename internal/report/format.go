// Package report renders run, validation, and calibration results as plain
// text for logs and CLI output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"NutraKinetics/internal/model"
	"NutraKinetics/internal/validator"
)

// FormatRunSummary renders the scalar summary of one simulation run.
func FormatRunSummary(s model.Scenario, r *model.SimulationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Run: %s %s %.0f mg, %.0f h ===\n", s.Compound, s.Route, s.DoseMg, s.DurationH)
	if len(s.Supplements) > 0 {
		fmt.Fprintf(&b, "Supplements: %s\n", strings.Join(s.SelectedSet(), ", "))
	}

	cmax, tmax := r.PrecursorCmax()
	fmt.Fprintf(&b, "Plasma precursor Cmax: %.3f uM at %.2f h\n", cmax, tmax)
	fmt.Fprintf(&b, "Peak NAD (cyt): %.3f uM\n", r.PeakNadCyt())
	fmt.Fprintf(&b, "Peak NAD (mito): %.3f uM\n", r.PeakNadMito())
	fmt.Fprintf(&b, "Final NAD (cyt): %.3f uM\n", r.FinalNadCyt())

	if len(r.InteractionEffects) > 0 {
		fmt.Fprintf(&b, "Active interaction rules: %d\n", len(r.InteractionEffects))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", w)
	}
	return b.String()
}

// FormatValidation renders a validation outcome, blocking errors first.
func FormatValidation(v validator.Validation) string {
	if v.OK() && len(v.Warnings) == 0 {
		return "Validation: OK\n"
	}

	var b strings.Builder
	for _, e := range v.BlockingErrors {
		fmt.Fprintf(&b, "BLOCKED: %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", w)
	}
	return b.String()
}

// FormatFitResult renders one calibration outcome with fitted coefficients
// in rule-id order.
func FormatFitResult(f *model.FitResult) string {
	var b strings.Builder

	switch {
	case f.NotApplicable:
		fmt.Fprintf(&b, "Fit not applicable: %s\n", f.Message)
		return b.String()
	case f.Success:
		fmt.Fprintf(&b, "Fit converged in %d iterations (objective %.6g)\n", f.Iterations, f.Objective)
	default:
		fmt.Fprintf(&b, "Fit did not converge: %s (objective %.6g after %d iterations)\n",
			f.Message, f.Objective, f.Iterations)
	}

	for _, id := range sortedKeys(f.Coefficients) {
		fmt.Fprintf(&b, "  %-36s %.4f\n", id, f.Coefficients[id])
	}
	return b.String()
}

// FormatInteractionTable renders the configured interaction rules as an
// aligned table for inspection.
func FormatInteractionTable(rules []model.InteractionRule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-36s %-22s %-10s %-8s %8s %8s %8s %s\n",
		"RULE", "SUPPLEMENTS", "TARGET", "DIR", "COEF", "LO", "HI", "FIT")
	for _, r := range rules {
		fit := "-"
		if r.FitEnabled {
			fit = "yes"
		}
		fmt.Fprintf(&b, "%-36s %-22s %-10s %-8s %8.3f %8.3f %8.3f %s\n",
			r.ID, strings.Join(r.Supplements, "+"), r.Target, r.Direction,
			r.Coefficient, r.LowerBound, r.UpperBound, fit)
	}
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
