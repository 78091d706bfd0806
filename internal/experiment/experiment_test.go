package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/spacesim/internal/config"
	"github.com/san-kum/spacesim/internal/logging"
	"github.com/san-kum/spacesim/internal/space"
)

func TestRegistry_Systems(t *testing.T) {
	r := NewRegistry()

	names := r.ListSystems()
	want := []string{"binary", "earth-moon", "solar", "sun-earth"}
	if len(names) != len(want) {
		t.Fatalf("ListSystems() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListSystems()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	if _, err := r.GetSystem("andromeda"); err == nil {
		t.Error("expected error for unknown system")
	}
}

func TestSeedSolar(t *testing.T) {
	r := NewRegistry()
	u := space.New(150, logging.Discard())
	if err := r.Seed("solar", u); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if u.Len() != 11 {
		t.Fatalf("expected 11 bodies, got %d", u.Len())
	}
	if len(u.Stars()) != 1 || len(u.Planets()) != 8 || len(u.Moons()) != 2 {
		t.Errorf("unexpected views: %d stars, %d planets, %d moons",
			len(u.Stars()), len(u.Planets()), len(u.Moons()))
	}

	order := []string{"Sun", "Mercury", "Venus", "Earth", "Moon", "Mars", "Jupiter", "Jovian Moon", "Saturn", "Uranus", "Neptune"}
	for i, b := range u.Bodies() {
		if b.Name != order[i] {
			t.Errorf("body %d = %s, want %s", i, b.Name, order[i])
		}
	}

	sun := u.Stars()[0]
	if slot, ok := sun.EmitterSlot(); !ok || slot != 0 {
		t.Errorf("sun should hold emitter slot 0, got %d, %v", slot, ok)
	}

	earth, moon := u.Bodies()[3], u.Bodies()[4]
	d := moon.Position.Sub(earth.Position).Len()
	if math.Abs(d-384399e3) > 1 {
		t.Errorf("moon distance = %g", d)
	}
}

func TestSeedSystems_Tick(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.ListSystems() {
		t.Run(name, func(t *testing.T) {
			u := space.New(150, logging.Discard())
			if err := r.Seed(name, u); err != nil {
				t.Fatalf("Seed: %v", err)
			}
			for i := 0; i < 10; i++ {
				if err := u.Tick(); err != nil {
					t.Fatalf("tick %d: %v", i, err)
				}
			}
		})
	}
}

func TestSeedBinary_CenterOfMassAtRest(t *testing.T) {
	u := space.New(600, logging.Discard())
	if err := seedBinary(u); err != nil {
		t.Fatal(err)
	}
	stars := u.Stars()
	p := stars[0].Velocity.Scale(stars[0].Mass).Add(stars[1].Velocity.Scale(stars[1].Mass))
	if p.Len() != 0 {
		t.Errorf("stars should have zero net momentum, got %v", p)
	}
	for _, s := range stars {
		if _, ok := s.EmitterSlot(); !ok {
			t.Errorf("%s should hold an emitter slot", s.Name)
		}
	}
}

func TestSeed_UnknownSystem(t *testing.T) {
	r := NewRegistry()
	if err := r.Seed("nope", space.New(1, logging.Discard())); err == nil {
		t.Error("expected error")
	}
}

func TestDefaultMetrics(t *testing.T) {
	r := NewRegistry()
	ms := r.DefaultMetrics("solar")
	names := map[string]bool{}
	for _, m := range ms {
		names[m.Name()] = true
	}
	for _, want := range []string{"energy", "energy_drift", "momentum_drift", "angular_momentum_drift", "stability"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System = "sun-earth"
	cfg.Step = 3600
	cfg.Duration = 30 * 86400
	cfg.SampleEvery = 24

	e := New(cfg, nil, logging.Discard())
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("Run before Setup should fail")
	}
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TicksTaken != 720 {
		t.Errorf("expected 720 ticks, got %d", result.TicksTaken)
	}
	if len(result.Samples) != 31 {
		t.Errorf("expected 31 samples, got %d", len(result.Samples))
	}
	if drift := result.Metrics["energy_drift"]; drift <= 0 || drift > 5e-3 {
		t.Errorf("unexpected energy drift %g", drift)
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("sun-earth should stay bound, stability %g", result.Metrics["stability"])
	}
	if e.Universe().Elapsed() != 720*3600 {
		t.Errorf("elapsed = %g", e.Universe().Elapsed())
	}
}

func TestExperimentSetup_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workers = 0
	if err := New(cfg, nil, logging.Discard()).Setup(); err == nil {
		t.Error("expected validation error")
	}

	cfg = config.DefaultConfig()
	cfg.System = "nope"
	if err := New(cfg, nil, logging.Discard()).Setup(); err == nil {
		t.Error("expected unknown system error")
	}
}

func TestExperimentSweep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System = "sun-earth"
	cfg.Duration = 10 * 86400
	cfg.SampleEvery = 1000

	e := New(cfg, nil, logging.Discard())
	results, err := e.Sweep(context.Background(), []float64{600, 3600, 14400})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].TicksTaken != 1440 || results[2].TicksTaken != 60 {
		t.Errorf("unexpected tick counts %d, %d", results[0].TicksTaken, results[2].TicksTaken)
	}
	if results[0].Metrics["energy_drift"] >= results[2].Metrics["energy_drift"] {
		t.Errorf("smaller steps should drift less: %g vs %g",
			results[0].Metrics["energy_drift"], results[2].Metrics["energy_drift"])
	}
}

func TestExperimentSweep_BadStep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System = "sun-earth"
	cfg.Duration = 86400
	_, err := New(cfg, nil, logging.Discard()).Sweep(context.Background(), []float64{0})
	if err == nil {
		t.Fatal("expected error for zero step")
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("unexpected cancellation: %v", err)
	}
}
