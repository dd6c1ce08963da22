// Package config loads the application configuration, the physiological
// parameter file, and the supplement registry.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"NutraKinetics/internal/model"
)

// ScenarioConfig is a scenario expressed in YAML, used for sweep schedules
// and CLI defaults.
type ScenarioConfig struct {
	Label             string             `yaml:"label"`
	Route             string             `yaml:"route"`
	Compound          string             `yaml:"compound"`
	DoseMg            float64            `yaml:"dose_mg"`
	DurationH         float64            `yaml:"duration_h"`
	Formulation       string             `yaml:"formulation"`
	CD38Scale         float64            `yaml:"cd38_scale"`
	Supplements       []string           `yaml:"supplements"`
	SupplementDosesMg map[string]float64 `yaml:"supplement_doses_mg"`
}

// ToScenario converts the YAML form into a model scenario.
func (s ScenarioConfig) ToScenario() model.Scenario {
	return model.Scenario{
		Route:             model.Route(s.Route),
		Compound:          s.Compound,
		DoseMg:            s.DoseMg,
		DurationH:         s.DurationH,
		Formulation:       s.Formulation,
		CD38Scale:         s.CD38Scale,
		Supplements:       append([]string(nil), s.Supplements...),
		SupplementDosesMg: s.SupplementDosesMg,
	}
}

// Config holds all application configuration.
type Config struct {
	Paths struct {
		ParametersFile  string `yaml:"parameters_file"`
		SupplementsFile string `yaml:"supplements_file"`
		CompareStore    string `yaml:"compare_store"`
	} `yaml:"paths"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Sweep struct {
		Cron         string `yaml:"cron"`
		MaxSavedRuns int    `yaml:"max_saved_runs"`
	} `yaml:"sweep"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("NK_PARAMETERS_FILE"); v != "" {
		cfg.Paths.ParametersFile = v
	}
	if v := os.Getenv("NK_SUPPLEMENTS_FILE"); v != "" {
		cfg.Paths.SupplementsFile = v
	}
	if v := os.Getenv("NK_COMPARE_STORE"); v != "" {
		cfg.Paths.CompareStore = v
	}
	if v := os.Getenv("NK_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("NK_SWEEP_CRON"); v != "" {
		cfg.Sweep.Cron = v
	}
	if v := os.Getenv("NK_MAX_SAVED_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sweep.MaxSavedRuns = n
		}
	}

	// Defaults
	if cfg.Paths.ParametersFile == "" {
		cfg.Paths.ParametersFile = "configs/parameters.base.yaml"
	}
	if cfg.Paths.SupplementsFile == "" {
		cfg.Paths.SupplementsFile = "configs/supplements.yaml"
	}
	if cfg.Paths.CompareStore == "" {
		cfg.Paths.CompareStore = "data/scenario_compare.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/nutrakinetics.db"
	}
	if cfg.Sweep.Cron == "" {
		cfg.Sweep.Cron = "0 0 6 * * *"
	}
	if cfg.Sweep.MaxSavedRuns == 0 {
		cfg.Sweep.MaxSavedRuns = 50
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.ParametersFile == "" {
		return fmt.Errorf("paths.parameters_file is required")
	}
	if c.Paths.SupplementsFile == "" {
		return fmt.Errorf("paths.supplements_file is required")
	}
	if c.Sweep.MaxSavedRuns < 0 {
		return fmt.Errorf("sweep.max_saved_runs must not be negative")
	}
	for i, s := range c.Scenarios {
		if s.Route != string(model.RouteOral) && s.Route != string(model.RouteIV) {
			return fmt.Errorf("scenarios[%d]: unknown route %q", i, s.Route)
		}
		if s.DoseMg < 0 {
			return fmt.Errorf("scenarios[%d]: dose_mg must not be negative", i)
		}
		if s.DurationH <= 0 {
			return fmt.Errorf("scenarios[%d]: duration_h must be positive", i)
		}
	}
	return nil
}
