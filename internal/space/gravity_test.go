package space

import (
	"errors"
	"math"
	"testing"
)

func TestAccumulateGravity_Symmetry(t *testing.T) {
	u := newTestUniverse(1)
	a := NewPlanet("a", 5.97e24, 1, Vector2{-3e6, 2e6}, Vector2{}, RGB(1, 1, 1))
	b := NewPlanet("b", 7.35e22, 1, Vector2{4e7, -1e7}, Vector2{}, RGB(1, 1, 1))
	mustAdd(t, u, a)
	mustAdd(t, u, b)

	if err := u.AccumulateGravity(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Force.X != -b.Force.X || a.Force.Y != -b.Force.Y {
		t.Errorf("forces are not opposite: %v vs %v", a.Force, b.Force)
	}

	d := b.Position.Sub(a.Position)
	want := G * a.Mass * b.Mass / d.Dot(d)
	if got := a.Force.Len(); math.Abs(got-want)/want > 1e-12 {
		t.Errorf("force magnitude = %v, want %v", got, want)
	}
	if a.Force.Dot(d) <= 0 {
		t.Error("force on a should point toward b")
	}
	if a.Position != (Vector2{-3e6, 2e6}) || a.Velocity != (Vector2{}) {
		t.Error("gravity pass must only touch forces")
	}
}

func TestAccumulateGravity_DegeneratePairSkipped(t *testing.T) {
	u := newTestUniverse(1)
	a := NewPlanet("a", 1e20, 1, Vector2{5, 5}, Vector2{}, RGB(1, 1, 1))
	b := NewPlanet("b", 1e20, 1, Vector2{5, 5}, Vector2{}, RGB(1, 1, 1))
	c := NewPlanet("c", 1e20, 1, Vector2{1e6, 5}, Vector2{}, RGB(1, 1, 1))
	idA, idB := mustAdd(t, u, a), mustAdd(t, u, b)
	mustAdd(t, u, c)

	err := u.AccumulateGravity()
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
	var pe *PairError
	if !errors.As(err, &pe) || pe.A != idA || pe.B != idB {
		t.Errorf("expected pair %d/%d, got %+v", idA, idB, pe)
	}

	for _, body := range []*Body{a, b, c} {
		if !body.Force.IsFinite() {
			t.Errorf("%s force is not finite: %v", body.Name, body.Force)
		}
	}
	if c.Force.X >= 0 {
		t.Errorf("c should still be pulled toward a and b, got %v", c.Force)
	}
	if a.Force != b.Force {
		t.Errorf("coincident bodies should feel the same pull, got %v and %v", a.Force, b.Force)
	}
}

func TestTick_NearCoincidentPairStaysFinite(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		extra   int
	}{
		{"serial", 1, 0},
		{"parallel", 4, ParallelThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUniverse(1)
			u.SetWorkers(tt.workers)
			a := NewPlanet("a", 1e20, 1, Vector2{}, Vector2{}, RGB(1, 1, 1))
			b := NewPlanet("b", 1e20, 1, Vector2{1e-160, 0}, Vector2{}, RGB(1, 1, 1))
			idA, idB := mustAdd(t, u, a), mustAdd(t, u, b)
			for i := 0; i < tt.extra; i++ {
				mustAdd(t, u, NewPlanet("far", 1, 1, Vector2{1e9 * float64(i+1), 1e9}, Vector2{}, RGB(1, 1, 1)))
			}

			err := u.Tick()
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
			}
			var pe *PairError
			if !errors.As(err, &pe) || pe.A != idA || pe.B != idB {
				t.Errorf("expected pair %d/%d, got %+v", idA, idB, pe)
			}
			for _, body := range u.Bodies() {
				if !body.Position.IsFinite() || !body.Velocity.IsFinite() {
					t.Fatalf("%s left non-finite state: pos=%v vel=%v", body.Name, body.Position, body.Velocity)
				}
			}
		})
	}
}

func TestAdvanceTime_ZeroMassBody(t *testing.T) {
	u := newTestUniverse(10)
	ghost := NewPlanet("ghost", 0, 1, Vector2{0, 1e6}, Vector2{3, 0}, RGB(1, 1, 1))
	sun := NewStar("sun", 1e30, 1, Vector2{}, Vector2{}, RGB(1, 1, 0))
	mustAdd(t, u, sun)
	id := mustAdd(t, u, ghost)
	probe := NewPlanet("probe", 1, 1, Vector2{1e9, 0}, Vector2{}, RGB(1, 1, 1))
	mustAdd(t, u, probe)

	err := u.Tick()
	if !errors.Is(err, ErrZeroMassBody) {
		t.Fatalf("expected ErrZeroMassBody, got %v", err)
	}
	var be *BodyError
	if !errors.As(err, &be) || be.ID != id {
		t.Errorf("expected body error for %d, got %+v", id, be)
	}
	if ghost.Position != (Vector2{0, 1e6}) || ghost.Velocity != (Vector2{3, 0}) {
		t.Error("zero-mass body must be skipped entirely")
	}
	if probe.Position.X >= 1e9 {
		t.Error("other bodies should still advance")
	}
	if u.Elapsed() != 10 {
		t.Errorf("Elapsed() = %v, want 10", u.Elapsed())
	}
}

func TestAdvanceTime_UpdateOrder(t *testing.T) {
	u := newTestUniverse(2)
	b := NewPlanet("b", 4, 1, Vector2{1, 1}, Vector2{3, -1}, RGB(1, 1, 1))
	mustAdd(t, u, b)
	b.Force = Vector2{8, 0}

	if err := u.AdvanceTime(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a = (2, 0); pos = (1,1) + (6,-2) + (2,0)*4*0.5; vel = (3,-1) + (4,0)
	if b.Position != (Vector2{11, -1}) {
		t.Errorf("position = %v, want (11, -1)", b.Position)
	}
	if b.Velocity != (Vector2{7, -1}) {
		t.Errorf("velocity = %v, want (7, -1)", b.Velocity)
	}
	if b.Force != (Vector2{}) {
		t.Errorf("force not reset: %v", b.Force)
	}
}

func TestTick_ZeroStepIdempotence(t *testing.T) {
	u := newTestUniverse(0)
	bodies := []*Body{
		NewStar("sun", 1.9891e30, 1, Vector2{}, Vector2{}, RGB(1, 1, 0)),
		NewPlanet("earth", 5.9736e24, 1, Vector2{149598261e3, 0}, Vector2{0, 29783}, RGB(0, 1, 0)),
	}
	for _, b := range bodies {
		mustAdd(t, u, b)
	}
	bodies = append(bodies, NewSatellite(bodies[1], "moon", 7.3477e22, 1, 384399e3, RGB(1, 1, 1)))
	mustAdd(t, u, bodies[2])

	before := u.Snapshot()
	for i := 0; i < 5; i++ {
		if err := u.Tick(); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
	}

	for i, b := range u.Bodies() {
		if b.Position != before[i].Position || b.Velocity != before[i].Velocity {
			t.Errorf("%s moved with a zero step", b.Name)
		}
		if b.Force != (Vector2{}) {
			t.Errorf("%s force not reset: %v", b.Name, b.Force)
		}
	}
}

func TestTick_TwoBodyScenario(t *testing.T) {
	u := newTestUniverse(1)
	heavy := NewPlanet("heavy", 5.97e24, 1, Vector2{}, Vector2{}, RGB(1, 1, 1))
	light := NewPlanet("light", 1.0, 1, Vector2{1.0e7, 0}, Vector2{}, RGB(1, 1, 1))
	mustAdd(t, u, heavy)
	mustAdd(t, u, light)

	if err := u.Tick(); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	want := 0.5 * G * 5.97e24 / (1.0e7 * 1.0e7)
	moved := 1.0e7 - light.Position.X
	if math.Abs(moved-want)/want > 1e-6 {
		t.Errorf("light body moved %v m, want %v", moved, want)
	}
	if math.Abs(moved-1.99) > 0.01 {
		t.Errorf("expected about 1.99 m, got %v", moved)
	}
	if light.Position.Y != 0 {
		t.Errorf("light body left the x-axis: %v", light.Position)
	}

	ratio := heavy.Position.X / moved
	if math.Abs(ratio*5.97e24-1) > 1e-6 {
		t.Errorf("heavy displacement ratio = %v, want 1/5.97e24", ratio)
	}
}

func TestTick_MomentumConservation(t *testing.T) {
	u := newTestUniverse(3600)
	sun := NewStar("sun", 1.9891e30, 1, Vector2{}, Vector2{}, RGB(1, 1, 0))
	earth := NewPlanet("earth", 5.9736e24, 1, Vector2{149598261e3, 0}, Vector2{0, 29783}, RGB(0, 1, 0))
	mustAdd(t, u, sun)
	mustAdd(t, u, earth)

	p0 := u.TotalMomentum()
	scale := earth.Mass * earth.Speed()

	for i := 0; i < 2000; i++ {
		if err := u.Tick(); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	drift := u.TotalMomentum().Sub(p0).Len()
	if drift/scale > 1e-9 {
		t.Errorf("momentum drifted by %e (relative %e)", drift, drift/scale)
	}
	if sun.Velocity == (Vector2{}) {
		t.Error("sun should pick up recoil velocity")
	}
}

func TestAccumulateGravity_ParallelMatchesSerial(t *testing.T) {
	build := func(workers int) *Universe {
		u := newTestUniverse(60)
		u.SetWorkers(workers)
		for i := 0; i < ParallelThreshold+37; i++ {
			x := float64(i%11) * 1e7
			y := float64(i/11) * 1.3e7
			b := NewPlanet("b", 1e22*float64(1+i%5), 1, Vector2{x, y}, Vector2{}, RGB(1, 1, 1))
			if _, err := u.Add(b); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}
		return u
	}

	serial, parallel := build(1), build(4)
	if err := serial.AccumulateGravity(); err != nil {
		t.Fatalf("serial pass failed: %v", err)
	}
	if err := parallel.AccumulateGravity(); err != nil {
		t.Fatalf("parallel pass failed: %v", err)
	}

	sb, pb := serial.Bodies(), parallel.Bodies()
	largest := 0.0
	for _, b := range sb {
		largest = math.Max(largest, b.Force.Len())
	}

	var net Vector2
	for i := range sb {
		diff := sb[i].Force.Sub(pb[i].Force).Len()
		if diff > 1e-9*largest {
			t.Errorf("body %d: serial %v, parallel %v", i, sb[i].Force, pb[i].Force)
		}
		net = net.Add(pb[i].Force)
	}

	if net.Len() > 1e-9*largest {
		t.Errorf("parallel forces do not cancel: net %v", net)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	tests := []struct {
		n, workers, minChunk int
	}{
		{0, 4, 1},
		{5, 1, 1},
		{10, 4, 1},
		{100, 3, 16},
		{7, 16, 2},
	}

	for _, tt := range tests {
		hits := make([]int, tt.n)
		workers := make(map[int]bool)
		var calls = make(chan [3]int, 64)
		ParallelFor(tt.n, tt.workers, tt.minChunk, func(w, start, end int) {
			calls <- [3]int{w, start, end}
		})
		close(calls)
		for c := range calls {
			if workers[c[0]] {
				t.Errorf("n=%d: worker %d used twice", tt.n, c[0])
			}
			workers[c[0]] = true
			for i := c[1]; i < c[2]; i++ {
				hits[i]++
			}
		}
		for i, h := range hits {
			if h != 1 {
				t.Errorf("n=%d: index %d visited %d times", tt.n, i, h)
			}
		}
	}
}
