package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"NutraKinetics/internal/model"
)

// supplementsFile mirrors the supplement registry YAML layout.
type supplementsFile struct {
	Supplements []struct {
		ID             string   `yaml:"id"`
		Label          string   `yaml:"label"`
		Category       string   `yaml:"category"`
		MechanismClass string   `yaml:"mechanism_class"`
		Enabled        bool     `yaml:"enabled"`
		DefaultDoseMg  float64  `yaml:"default_dose_mg"`
		RouteSupport   []string `yaml:"route_support"`
		Kinetics       struct {
			KaPerH        float64 `yaml:"ka_per_h"`
			KelPerH       float64 `yaml:"kel_per_h"`
			ExposureScale float64 `yaml:"exposure_scale"`
		} `yaml:"kinetics"`
		Dynamics struct {
			EC50UM                  float64 `yaml:"ec50_uM"`
			HillN                   float64 `yaml:"hill_n"`
			SynthesisGainPerSignal  float64 `yaml:"synthesis_gain_per_signal"`
			CD38EffectPerSignal     float64 `yaml:"cd38_effect_per_signal"`
			AbsorptionGainPerSignal float64 `yaml:"absorption_gain_per_signal"`
		} `yaml:"dynamics"`
		Fit struct {
			Enabled   bool    `yaml:"enabled"`
			PriorMean float64 `yaml:"prior_mean"`
			PriorSD   float64 `yaml:"prior_sd"`
		} `yaml:"fit"`
		InteractionModelReady bool   `yaml:"interaction_model_ready"`
		BackendNotes          string `yaml:"backend_notes"`
	} `yaml:"supplements"`

	Interactions []struct {
		ID          string   `yaml:"id"`
		Supplements []string `yaml:"supplements"`
		Target      string   `yaml:"target"`
		Direction   string   `yaml:"direction"`
		Coefficient float64  `yaml:"coefficient"`
		LowerBound  float64  `yaml:"lower_bound"`
		UpperBound  float64  `yaml:"upper_bound"`
		Fit         struct {
			Enabled   bool    `yaml:"enabled"`
			PriorMean float64 `yaml:"prior_mean"`
			PriorSD   float64 `yaml:"prior_sd"`
		} `yaml:"fit"`
		Source struct {
			Type string `yaml:"type"`
			ID   string `yaml:"id"`
		} `yaml:"source"`
		Severity string `yaml:"severity"`
		Message  string `yaml:"message"`
	} `yaml:"interactions"`
}

// LoadSupplements reads the supplement registry file and returns the
// definition registry keyed by id plus the interaction rule list in file
// order.
func LoadSupplements(path string) (map[string]model.SupplementDefinition, []model.InteractionRule, error) {
	var sf supplementsFile

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read supplements: %w", err)
	}
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("parse supplements: %w", err)
	}

	registry := make(map[string]model.SupplementDefinition, len(sf.Supplements))
	for i, s := range sf.Supplements {
		if s.ID == "" {
			return nil, nil, fmt.Errorf("supplements[%d]: id is required", i)
		}
		if _, dup := registry[s.ID]; dup {
			return nil, nil, fmt.Errorf("supplements[%d]: duplicate id %q", i, s.ID)
		}

		routes := make([]model.Route, 0, len(s.RouteSupport))
		for _, r := range s.RouteSupport {
			route := model.Route(r)
			if route != model.RouteOral && route != model.RouteIV {
				return nil, nil, fmt.Errorf("supplement %q: unknown route %q", s.ID, r)
			}
			routes = append(routes, route)
		}

		registry[s.ID] = model.SupplementDefinition{
			ID:             s.ID,
			Label:          s.Label,
			Category:       s.Category,
			MechanismClass: s.MechanismClass,
			Enabled:        s.Enabled,
			DefaultDoseMg:  s.DefaultDoseMg,
			RouteSupport:   routes,

			KaPerH:        s.Kinetics.KaPerH,
			KelPerH:       s.Kinetics.KelPerH,
			ExposureScale: s.Kinetics.ExposureScale,

			EC50UM:                  s.Dynamics.EC50UM,
			HillN:                   s.Dynamics.HillN,
			SynthesisGainPerSignal:  s.Dynamics.SynthesisGainPerSignal,
			CD38EffectPerSignal:     s.Dynamics.CD38EffectPerSignal,
			AbsorptionGainPerSignal: s.Dynamics.AbsorptionGainPerSignal,

			FitEnabled: s.Fit.Enabled,
			PriorMean:  s.Fit.PriorMean,
			PriorSD:    s.Fit.PriorSD,

			InteractionModelReady: s.InteractionModelReady,
			BackendNotes:          s.BackendNotes,
		}
	}

	rules := make([]model.InteractionRule, 0, len(sf.Interactions))
	seenRules := make(map[string]bool, len(sf.Interactions))
	for i, r := range sf.Interactions {
		if r.ID == "" {
			return nil, nil, fmt.Errorf("interactions[%d]: id is required", i)
		}
		if seenRules[r.ID] {
			return nil, nil, fmt.Errorf("interactions[%d]: duplicate id %q", i, r.ID)
		}
		seenRules[r.ID] = true

		if len(r.Supplements) == 0 {
			return nil, nil, fmt.Errorf("interaction %q: supplements list is empty", r.ID)
		}
		for _, id := range r.Supplements {
			if _, ok := registry[id]; !ok {
				return nil, nil, fmt.Errorf("interaction %q references unknown supplement %q", r.ID, id)
			}
		}

		target := model.Channel(r.Target)
		switch target {
		case model.ChannelSynthesis, model.ChannelCD38, model.ChannelAbsorption:
		default:
			return nil, nil, fmt.Errorf("interaction %q: unknown target channel %q", r.ID, r.Target)
		}

		direction := model.Direction(r.Direction)
		if direction != model.DirectionIncrease && direction != model.DirectionDecrease {
			return nil, nil, fmt.Errorf("interaction %q: unknown direction %q", r.ID, r.Direction)
		}

		severity := r.Severity
		if severity == "" {
			severity = model.SeverityWarning
		}
		if severity != model.SeverityWarning && severity != model.SeverityBlock {
			return nil, nil, fmt.Errorf("interaction %q: unknown severity %q", r.ID, r.Severity)
		}

		if r.UpperBound < r.LowerBound {
			return nil, nil, fmt.Errorf("interaction %q: upper_bound below lower_bound", r.ID)
		}

		rules = append(rules, model.InteractionRule{
			ID:          r.ID,
			Supplements: append([]string(nil), r.Supplements...),
			Target:      target,
			Direction:   direction,
			Coefficient: r.Coefficient,
			LowerBound:  r.LowerBound,
			UpperBound:  r.UpperBound,

			FitEnabled: r.Fit.Enabled,
			PriorMean:  r.Fit.PriorMean,
			PriorSD:    r.Fit.PriorSD,

			SourceType: r.Source.Type,
			SourceID:   r.Source.ID,
			Severity:   severity,
			Message:    r.Message,
		})
	}

	return registry, rules, nil
}
