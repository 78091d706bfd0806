package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/spacesim/internal/space"
)

func TestMomentumDrift(t *testing.T) {
	c := space.RGB(1, 1, 1)
	u := testUniverse(t,
		space.NewPlanet("a", 2, 1, space.Vector2{}, space.Vector2{X: 3}, c),
		space.NewPlanet("b", 1, 1, space.Vector2{X: 10}, space.Vector2{X: -6}, c),
	)
	m := NewMomentumDrift()

	// total momentum is zero; scale is 2*3 + 1*6 = 12
	m.Observe(u)
	if m.Value() != 0 {
		t.Fatalf("expected 0, got %g", m.Value())
	}

	u.Bodies()[1].Velocity = space.Vector2{X: -3}
	m.Observe(u)
	if got := m.Value(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected drift 0.25, got %g", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMomentumDrift_ConservedByTicks(t *testing.T) {
	u := sunEarth(t)
	m := NewMomentumDrift()
	m.Observe(u)
	for i := 0; i < 500; i++ {
		if err := u.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	m.Observe(u)
	if m.Value() > 1e-9 {
		t.Errorf("momentum drift = %g, want ~0", m.Value())
	}
}

func TestAngularMomentumDrift(t *testing.T) {
	c := space.RGB(1, 1, 1)
	u := testUniverse(t,
		space.NewPlanet("a", 1, 1, space.Vector2{X: 1}, space.Vector2{Y: 2}, c),
	)
	m := NewAngularMomentumDrift()

	m.Observe(u) // L = 2
	u.Bodies()[0].Velocity = space.Vector2{Y: 3}
	m.Observe(u) // L = 3

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected drift 0.5, got %g", got)
	}
}

func TestAngularMomentumDrift_ZeroInitial(t *testing.T) {
	c := space.RGB(1, 1, 1)
	u := testUniverse(t,
		space.NewPlanet("a", 1, 1, space.Vector2{X: 1}, space.Vector2{X: 1}, c),
	)
	m := NewAngularMomentumDrift()

	m.Observe(u) // L = 0
	u.Bodies()[0].Velocity = space.Vector2{Y: 4}
	m.Observe(u) // L = 4

	if got := m.Value(); got != 4 {
		t.Errorf("expected absolute drift 4, got %g", got)
	}
}

func TestStability(t *testing.T) {
	c := space.RGB(1, 1, 1)
	u := testUniverse(t,
		space.NewPlanet("a", 1, 1, space.Vector2{X: -1}, space.Vector2{}, c),
		space.NewPlanet("b", 1, 1, space.Vector2{X: 1}, space.Vector2{}, c),
	)
	s := NewStability(5)
	if s.Value() != 1 {
		t.Errorf("no samples should report 1, got %g", s.Value())
	}

	s.Observe(u)
	u.Bodies()[1].Position = space.Vector2{X: 20}
	s.Observe(u)

	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %g", got)
	}
	s.Reset()
	if s.Value() != 1 {
		t.Error("expected 1 after reset")
	}
}
