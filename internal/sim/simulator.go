package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/spacesim/internal/space"
)

type Simulator struct {
	universe  *space.Universe
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
	progress  rate.Sometimes
}

func New(u *space.Universe, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		universe: u,
		logger:   logger.With("component", "sim"),
		progress: rate.Sometimes{Interval: 2 * time.Second},
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Universe() *space.Universe { return s.universe }

// Run advances the universe for cfg.Duration simulated seconds. Tick errors
// are collected in Result.Errors; with StopOnError the run ends after the
// first one. Cancellation is checked between ticks and returns the partial
// result with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	u := s.universe
	if err := u.SetStepDuration(cfg.StepDuration); err != nil {
		return nil, err
	}
	u.SetWorkers(cfg.Workers)

	ticks := cfg.Ticks()
	result := &Result{
		Samples: make([]Sample, 0, min(ticks/cfg.SampleEvery+2, maxPrealloc)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.logger.With("operation", "run")
	log.Info("Run started", "bodies", u.Len(), "ticks", ticks, "step", cfg.StepDuration, "workers", cfg.Workers)
	start := time.Now()

	s.sample(result, 0)

	for i := 1; i <= ticks; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			log.Warn("Run cancelled", "ticks", result.TicksTaken)
			return result, ctx.Err()
		default:
		}

		err := u.Tick()
		result.TicksTaken++

		if err != nil {
			tickErr := &TickError{Tick: i, Time: u.Elapsed(), Err: err}
			result.Errors = append(result.Errors, tickErr)
			log.Debug("Tick error", "tick", i, "error", err)
			if cfg.StopOnError {
				s.sample(result, i)
				s.finish(result)
				log.Warn("Run stopped on error", "tick", i, "error", err)
				return result, nil
			}
		}

		if i%cfg.SampleEvery == 0 || i == ticks {
			s.sample(result, i)
		}

		s.progress.Do(func() {
			log.Info("Run progress",
				"tick", i,
				"ticks", ticks,
				"percent", math.Round(100*float64(i)/float64(ticks)),
			)
		})
	}

	s.finish(result)
	log.Info("Run finished",
		"ticks", result.TicksTaken,
		"samples", len(result.Samples),
		"errors", len(result.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (s *Simulator) sample(r *Result, tick int) {
	if n := len(r.Samples); n > 0 && r.Samples[n-1].Tick == tick {
		return
	}
	smp := Sample{Tick: tick, Time: s.universe.Elapsed(), Bodies: s.universe.Snapshot()}
	r.Samples = append(r.Samples, smp)

	for _, m := range s.metrics {
		m.Observe(s.universe)
	}
	for _, obs := range s.observers {
		obs.OnSample(smp)
	}
}

func (s *Simulator) finish(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// maxPrealloc caps the initial sample capacity; longer runs grow the slice.
const maxPrealloc = 1 << 16

func validateConfig(cfg Config) error {
	if math.IsNaN(cfg.StepDuration) || math.IsInf(cfg.StepDuration, 0) || cfg.StepDuration <= 0 {
		return fmt.Errorf("step duration must be positive, got %g", cfg.StepDuration)
	}
	if math.IsNaN(cfg.Duration) || math.IsInf(cfg.Duration, 0) || cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	}
	if cfg.SampleEvery < 1 {
		return fmt.Errorf("sample interval must be at least 1 tick, got %d", cfg.SampleEvery)
	}
	if q := cfg.Duration / cfg.StepDuration; q > MaxTicks {
		return fmt.Errorf("duration %g at step %g needs %.3g ticks, more than %d", cfg.Duration, cfg.StepDuration, q, MaxTicks)
	}
	return nil
}
