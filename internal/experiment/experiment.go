package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/spacesim/internal/config"
	"github.com/san-kum/spacesim/internal/sim"
	"github.com/san-kum/spacesim/internal/space"
)

// Experiment wires a run config to a seeded universe and its simulator.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	universe  *space.Universe
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Setup seeds a fresh universe and attaches the system's default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	s, err := e.newSimulator()
	if err != nil {
		return err
	}
	e.universe = s.Universe()
	e.simulator = s
	return nil
}

func (e *Experiment) newSimulator() (*sim.Simulator, error) {
	u := space.New(e.cfg.Step, e.logger)
	if err := e.registry.Seed(e.cfg.System, u); err != nil {
		return nil, err
	}
	u.SetWorkers(e.cfg.Workers)

	s := sim.New(u, e.logger)
	for _, m := range e.registry.DefaultMetrics(e.cfg.System) {
		s.AddMetric(m)
	}
	return s, nil
}

// Sweep runs the configured system once per step duration, concurrently,
// each on a freshly seeded universe. Results are in the order of steps.
func (e *Experiment) Sweep(ctx context.Context, steps []float64) ([]*sim.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfgs := make([]sim.Config, len(steps))
	for i, step := range steps {
		cfgs[i] = e.SimConfig()
		cfgs[i].StepDuration = step
		cfgs[i].Workers = 1
	}
	return sim.NewEnsemble(e.newSimulator).Run(ctx, cfgs)
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		StepDuration: e.cfg.Step,
		Duration:     e.cfg.Duration,
		SampleEvery:  e.cfg.SampleEvery,
		Workers:      e.cfg.Workers,
		StopOnError:  e.cfg.StopOnError,
	}
}

func (e *Experiment) Universe() *space.Universe { return e.universe }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
