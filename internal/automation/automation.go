package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spacesim/internal/config"
	"github.com/san-kum/spacesim/internal/experiment"
	"github.com/san-kum/spacesim/internal/sim"
	"github.com/san-kum/spacesim/internal/storage"
)

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base config for one run. Zero fields keep the
// base (or preset) value.
type ScenarioStep struct {
	System      string  `yaml:"system"`
	Preset      string  `yaml:"preset"`
	Step        float64 `yaml:"step"`
	Duration    float64 `yaml:"duration"`
	SampleEvery int     `yaml:"sample_every"`
	Workers     int     `yaml:"workers"`
	StopOnError bool    `yaml:"stop_on_error"`
}

// StepResult is the outcome of one scenario step. RunID is empty when the
// scenario ran without a store.
type StepResult struct {
	Index  int
	System string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the run config of one step on top of base.
func (s ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	c := *base
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		p.DataDir = base.DataDir
		p.Log = base.Log
		c = *p
	}
	if s.System != "" {
		c.System = s.System
	}
	if s.Step != 0 {
		c.Step = s.Step
	}
	if s.Duration != 0 {
		c.Duration = s.Duration
	}
	if s.SampleEvery != 0 {
		c.SampleEvery = s.SampleEvery
	}
	if s.Workers != 0 {
		c.Workers = s.Workers
	}
	if s.StopOnError {
		c.StopOnError = true
	}
	return &c, nil
}

// RunScenario executes the steps in order and, when store is non-nil, records
// each run. It stops at the first step that fails and returns the results of
// the steps before it.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, registry *experiment.Registry, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "automation", "scenario", scenario.Name)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("Running scenario step", "operation", "run_scenario", "step", i+1, "of", len(scenario.Steps), "system", cfg.System)

		exp := experiment.New(cfg, registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Index: i + 1, System: cfg.System, Result: result}
		if store != nil {
			sr.RunID, err = store.Save(storage.RunInfo{
				System:      cfg.System,
				Step:        cfg.Step,
				Duration:    cfg.Duration,
				SampleEvery: cfg.SampleEvery,
				Workers:     cfg.Workers,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
