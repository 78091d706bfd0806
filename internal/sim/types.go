package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/spacesim/internal/space"
)

// Metric is observed at every sample of a run.
type Metric interface {
	Name() string
	Observe(u *space.Universe)
	Value() float64
	Reset()
}

// Observer is notified after each recorded sample.
type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	StepDuration float64
	Duration     float64
	SampleEvery  int
	Workers      int
	StopOnError  bool
}

// MaxTicks bounds the length of a single run.
const MaxTicks = math.MaxInt32

// Ticks is the number of whole ticks needed to cover Duration, capped at
// MaxTicks.
func (c Config) Ticks() int {
	if c.StepDuration <= 0 {
		return 0
	}
	q := c.Duration / c.StepDuration
	if !(q < MaxTicks) {
		return MaxTicks
	}
	n := int(q)
	if float64(n)*c.StepDuration < c.Duration {
		n++
	}
	return n
}

// Sample is a recorded state of every body at one tick.
type Sample struct {
	Tick   int
	Time   float64
	Bodies []space.BodyState
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	Errors     []error
	TicksTaken int
}

// Times returns the simulated time of every sample.
func (r *Result) Times() []float64 {
	times := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
	}
	return times
}

// TickError records an error returned by one tick of the universe.
type TickError struct {
	Tick int
	Time float64
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.0fs): %v", e.Tick, e.Time, e.Err)
}

func (e *TickError) Unwrap() error { return e.Err }
