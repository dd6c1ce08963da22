package model

// Route is the administration route of the primary regimen.
type Route string

const (
	RouteOral Route = "oral"
	RouteIV   Route = "iv"
)

// Scenario describes a single simulation request. Treated as immutable:
// derived scenarios are produced by copying, never by in-place mutation.
type Scenario struct {
	Route       Route   `json:"route"`
	Compound    string  `json:"compound"`
	DoseMg      float64 `json:"dose_mg"`
	DurationH   float64 `json:"duration_h"`
	Formulation string  `json:"formulation"`
	CD38Scale   float64 `json:"cd38_scale"`

	// Supplements lists selected supplement ids in the order given by the
	// caller. Duplicates are tolerated and ignored past the first occurrence.
	Supplements []string `json:"supplements,omitempty"`

	// SupplementDosesMg overrides the registry default dose per supplement id.
	SupplementDosesMg map[string]float64 `json:"supplement_doses_mg,omitempty"`

	// CoefficientOverrides overrides interaction rule coefficients by rule id.
	CoefficientOverrides map[string]float64 `json:"coefficient_overrides,omitempty"`
}

// WithCoefficientOverrides returns a copy of the scenario whose interaction
// coefficient overrides are replaced by the given map.
func (s Scenario) WithCoefficientOverrides(overrides map[string]float64) Scenario {
	out := s
	out.CoefficientOverrides = make(map[string]float64, len(overrides))
	for id, v := range overrides {
		out.CoefficientOverrides[id] = v
	}
	return out
}

// SelectedSet returns the deduplicated selection preserving first-seen order.
func (s Scenario) SelectedSet() []string {
	seen := make(map[string]bool, len(s.Supplements))
	out := make([]string, 0, len(s.Supplements))
	for _, id := range s.Supplements {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
