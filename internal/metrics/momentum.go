package metrics

import (
	"math"

	"github.com/san-kum/spacesim/internal/space"
)

// MomentumDrift is the largest change of total momentum from the first
// sample, relative to the sum of |m·v| at that sample. Total momentum is
// often near zero, so it cannot be its own scale.
type MomentumDrift struct {
	name     string
	initial  space.Vector2
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(u *space.Universe) {
	p := u.TotalMomentum()

	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for _, b := range u.Bodies() {
			m.scale += b.Mass * b.Speed()
		}
	}
	m.samples++

	if m.scale > 0 {
		m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len()/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = space.Vector2{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift is the largest relative change of angular momentum
// about the origin. When the initial value is zero the absolute change is
// reported.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(u *space.Universe) {
	l := u.AngularMomentum()

	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	drift := math.Abs(l - a.initial)
	if a.initial != 0 {
		drift /= math.Abs(a.initial)
	}
	a.maxDrift = math.Max(a.maxDrift, drift)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
