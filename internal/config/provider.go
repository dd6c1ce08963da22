package config

import (
	"NutraKinetics/internal/model"
)

// Provider bundles everything loaded at startup: application config, the
// physiological parameter set, and the supplement registry.
type Provider struct {
	Config       *Config
	Params       model.CoreModelParameters
	ClassScalars map[string]float64
	Registry     map[string]model.SupplementDefinition
	Rules        []model.InteractionRule
}

// NewProvider loads the application config from path, then the parameter and
// supplement files it points at.
func NewProvider(path string) (*Provider, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params, scalars, err := LoadParameters(cfg.Paths.ParametersFile)
	if err != nil {
		return nil, err
	}

	registry, rules, err := LoadSupplements(cfg.Paths.SupplementsFile)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Config:       cfg,
		Params:       params,
		ClassScalars: scalars,
		Registry:     registry,
		Rules:        rules,
	}, nil
}
