package metrics

import (
	"math"

	"github.com/san-kum/spacesim/internal/space"
)

// Energy reports the total mechanical energy at the latest sample.
type Energy struct {
	name    string
	current float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(u *space.Universe) {
	e.current = u.TotalEnergy()
}

func (e *Energy) Value() float64 { return e.current }

func (e *Energy) Reset() { e.current = 0 }

// EnergyDrift is the largest relative change of total energy from the first
// sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(u *space.Universe) {
	energy := u.TotalEnergy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
