package model

// Channel identifies which modifier channel a supplement or rule acts on.
type Channel string

const (
	ChannelSynthesis  Channel = "synthesis"
	ChannelCD38       Channel = "cd38"
	ChannelAbsorption Channel = "absorption"
)

// Direction is the sign of an interaction rule's effect.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Rule severities.
const (
	SeverityWarning = "warning"
	SeverityBlock   = "block"
)

// SupplementDefinition is a read-only registry entry describing one
// supplement's exposure kinetics, dose-response dynamics, and calibration
// metadata.
type SupplementDefinition struct {
	ID             string
	Label          string
	Category       string
	MechanismClass string
	Enabled        bool
	DefaultDoseMg  float64
	RouteSupport   []Route

	// One-compartment pharmacokinetics.
	KaPerH        float64
	KelPerH       float64
	ExposureScale float64

	// Hill dose-response and per-channel gains.
	EC50UM                  float64
	HillN                   float64
	SynthesisGainPerSignal  float64
	CD38EffectPerSignal     float64
	AbsorptionGainPerSignal float64

	// Calibration metadata.
	FitEnabled bool
	PriorMean  float64
	PriorSD    float64

	InteractionModelReady bool
	BackendNotes          string
}

// SupportsRoute reports whether the definition supports the given route.
func (d SupplementDefinition) SupportsRoute(route Route) bool {
	for _, r := range d.RouteSupport {
		if r == route {
			return true
		}
	}
	return false
}

// InteractionRule declares a cross-supplement pharmacodynamic interaction.
// The rule applies only when every member of Supplements is selected.
type InteractionRule struct {
	ID          string
	Supplements []string
	Target      Channel
	Direction   Direction
	Coefficient float64
	LowerBound  float64
	UpperBound  float64

	FitEnabled bool
	PriorMean  float64
	PriorSD    float64

	SourceType string
	SourceID   string
	Severity   string
	Message    string
}

// AppliesTo reports whether every required supplement is in the selection.
func (r InteractionRule) AppliesTo(selected map[string]bool) bool {
	if len(r.Supplements) == 0 {
		return false
	}
	for _, id := range r.Supplements {
		if !selected[id] {
			return false
		}
	}
	return true
}

// ClampCoefficient clips a candidate coefficient into the rule's bounds.
func (r InteractionRule) ClampCoefficient(c float64) float64 {
	if c < r.LowerBound {
		return r.LowerBound
	}
	if c > r.UpperBound {
		return r.UpperBound
	}
	return c
}

// SelectedSetOf converts a deduplicated id slice into a membership set.
func SelectedSetOf(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// SelectedRules returns the rules whose full supplement set is contained in
// the selection, preserving registry order.
func SelectedRules(rules []InteractionRule, selectedIDs []string) []InteractionRule {
	set := SelectedSetOf(selectedIDs)
	var out []InteractionRule
	for _, r := range rules {
		if r.AppliesTo(set) {
			out = append(out, r)
		}
	}
	return out
}

// FittableRules returns the applicable rules flagged fit-enabled.
func FittableRules(rules []InteractionRule, selectedIDs []string) []InteractionRule {
	var out []InteractionRule
	for _, r := range SelectedRules(rules, selectedIDs) {
		if r.FitEnabled {
			out = append(out, r)
		}
	}
	return out
}

// ApplyCoefficientOverrides returns a new rule slice with the given
// coefficient overrides applied and clamped to each rule's bounds. The input
// slice is never mutated.
func ApplyCoefficientOverrides(rules []InteractionRule, overrides map[string]float64) []InteractionRule {
	if len(overrides) == 0 {
		return rules
	}
	out := make([]InteractionRule, len(rules))
	copy(out, rules)
	for i := range out {
		if c, ok := overrides[out[i].ID]; ok {
			out[i].Coefficient = out[i].ClampCoefficient(c)
		}
	}
	return out
}
