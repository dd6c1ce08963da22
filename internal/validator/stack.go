// Package validator gates scenario execution against the supplement registry
// and interaction rule set.
package validator

import (
	"fmt"
	"strings"

	"NutraKinetics/internal/model"
)

// Validation is the outcome of checking a supplement stack. Both lists are
// deduplicated and order-preserving.
type Validation struct {
	BlockingErrors []string
	Warnings       []string
}

// OK reports whether the scenario may run.
func (v Validation) OK() bool { return len(v.BlockingErrors) == 0 }

// BlockingError carries every blocking violation found, so callers can
// surface the full list atomically rather than just the first.
type BlockingError struct {
	Violations []string
}

func (e *BlockingError) Error() string {
	return fmt.Sprintf("scenario blocked by %d validation error(s): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// Compounds treated as primary vitamin-B3 forms for stacking caveats.
var vitaminB3Compounds = map[string]bool{
	"NA":           true,
	"NAM":          true,
	"NA + NAM mix": true,
}

// Check validates the selection against the registry, route support, and
// interaction rule severities. Rules run in a fixed order; warnings never
// abort execution.
func Check(
	registry map[string]model.SupplementDefinition,
	rules []model.InteractionRule,
	selectedIDs []string,
	route model.Route,
	primaryCompound string,
) Validation {
	var blocking, warnings []string

	if len(selectedIDs) > 5 {
		warnings = append(warnings, "More than 5 supplements selected; scenario complexity may exceed current calibration quality.")
	}

	seen := make(map[string]bool, len(selectedIDs))
	var deduped []string
	for _, id := range selectedIDs {
		if seen[id] {
			warnings = append(warnings, fmt.Sprintf("Duplicate supplement '%s' ignored.", id))
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)

		def, ok := registry[id]
		if !ok {
			blocking = append(blocking, fmt.Sprintf("Unknown supplement id '%s'.", id))
			continue
		}
		if !def.Enabled {
			blocking = append(blocking, fmt.Sprintf("Supplement '%s' is disabled in the registry.", def.Label))
			continue
		}
		if !def.SupportsRoute(route) {
			blocking = append(blocking, fmt.Sprintf("Supplement '%s' does not currently support the '%s' route.", def.Label, route))
		}
		if !def.InteractionModelReady {
			warnings = append(warnings, fmt.Sprintf("%s: backend interaction model is placeholder only (%s).", def.Label, def.BackendNotes))
		}
	}

	precursorCount := 0
	for _, id := range deduped {
		if def, ok := registry[id]; ok && def.Enabled && def.MechanismClass == "nad_precursor" {
			precursorCount++
		}
	}
	if precursorCount > 1 {
		warnings = append(warnings, "Multiple NAD precursor supplements selected; pairwise interaction calibration is not complete.")
	}

	if vitaminB3Compounds[primaryCompound] && (seen["nr"] || seen["nmn"]) {
		warnings = append(warnings, "Primary vitamin B3 plus NR/NMN stacking is allowed but transporter and microbiome interaction terms are still simplified.")
	}

	applicable := model.SelectedRules(rules, deduped)
	for _, rule := range applicable {
		if strings.EqualFold(rule.Severity, model.SeverityBlock) {
			blocking = append(blocking, rule.Message)
		} else {
			warnings = append(warnings, rule.Message)
		}
	}
	for _, rule := range applicable {
		if rule.FitEnabled {
			warnings = append(warnings, fmt.Sprintf("Interaction '%s' is currently driven by prior coefficient %.3f; calibration recommended.", rule.ID, rule.Coefficient))
		}
	}

	return Validation{
		BlockingErrors: dedupe(blocking),
		Warnings:       dedupe(warnings),
	}
}

// Dedupe removes duplicate ids preserving first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func dedupe(msgs []string) []string {
	seen := make(map[string]bool, len(msgs))
	var out []string
	for _, m := range msgs {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
