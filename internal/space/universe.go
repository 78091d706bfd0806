package space

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Universe owns the registered bodies and advances them in time.
type Universe struct {
	stepDuration float64
	elapsed      float64
	workers      int

	bodies  []*Body
	stars   []*Body
	planets []*Body
	moons   []*Body

	slots  [MaxEmitters]BodyID
	nextID BodyID

	logger *slog.Logger
}

// New creates an empty universe that advances stepDuration simulated
// seconds per tick. A nil logger falls back to slog.Default.
func New(stepDuration float64, logger *slog.Logger) *Universe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Universe{
		stepDuration: stepDuration,
		workers:      1,
		logger:       logger.With("component", "universe"),
	}
}

func (u *Universe) StepDuration() float64 { return u.stepDuration }

func (u *Universe) SetStepDuration(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidStep, seconds)
	}
	u.stepDuration = seconds
	return nil
}

// Elapsed returns the simulated seconds advanced so far.
func (u *Universe) Elapsed() float64 { return u.elapsed }

// SetWorkers sets the number of goroutines used by AccumulateGravity.
// Values below 1 are treated as 1.
func (u *Universe) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	u.workers = n
}

func (u *Universe) Workers() int { return u.workers }

// Add registers b, appends it to its category view and, for stars, assigns
// the lowest free emitter slot while any remain.
func (u *Universe) Add(b *Body) (BodyID, error) {
	if b == nil {
		return 0, ErrNilBody
	}
	if b.id != 0 {
		return 0, fmt.Errorf("%w: %s has id %d", ErrAlreadyRegistered, b.Name, b.id)
	}
	if !b.Category.valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, b.Category)
	}

	u.nextID++
	b.id = u.nextID
	b.slot = -1

	switch b.Category {
	case Star:
		u.stars = append(u.stars, b)
		if slot, ok := u.freeSlot(); ok {
			u.slots[slot] = b.id
			b.slot = slot
		} else {
			u.logger.Debug("No emitter slot left for star", "operation", "add", "body", b.Name, "max_emitters", MaxEmitters)
		}
	case Planet:
		u.planets = append(u.planets, b)
	case Moon:
		u.moons = append(u.moons, b)
	}
	u.bodies = append(u.bodies, b)

	u.logger.Debug("Body added", "operation", "add", "id", b.id, "body", b.Name, "category", b.Category)
	return b.id, nil
}

func (u *Universe) freeSlot() (int, bool) {
	for i, id := range u.slots {
		if id == 0 {
			return i, true
		}
	}
	return 0, false
}

// RemoveMostRecent removes the last added body from the registry and from
// its category view and returns it. The removed body keeps its ID.
func (u *Universe) RemoveMostRecent() (*Body, error) {
	if len(u.bodies) == 0 {
		return nil, ErrEmptyRegistry
	}
	last := u.bodies[len(u.bodies)-1]

	view := u.viewRef(last.Category)
	if view == nil || len(*view) == 0 || (*view)[len(*view)-1].id != last.id {
		return nil, &BodyError{ID: last.id, Name: last.Name, Err: ErrAmbiguousCategoryMatch}
	}

	*view = truncate(*view)
	u.bodies = truncate(u.bodies)

	if last.slot >= 0 {
		u.slots[last.slot] = 0
		last.slot = -1
	}

	u.logger.Debug("Body removed", "operation", "remove_most_recent", "id", last.id, "body", last.Name, "category", last.Category)
	return last, nil
}

// truncate drops the tail element and clears the freed pointer.
func truncate(s []*Body) []*Body {
	s[len(s)-1] = nil
	return s[:len(s)-1]
}

func (u *Universe) viewRef(c Category) *[]*Body {
	switch c {
	case Star:
		return &u.stars
	case Planet:
		return &u.planets
	case Moon:
		return &u.moons
	}
	return nil
}

// Tick performs one gravity pass followed by one time advance. Both passes
// always run; their errors are joined.
func (u *Universe) Tick() error {
	gerr := u.AccumulateGravity()
	aerr := u.AdvanceTime()
	return errors.Join(gerr, aerr)
}

func (u *Universe) Len() int { return len(u.bodies) }

// Bodies returns the registered bodies in insertion order.
func (u *Universe) Bodies() []*Body { return clone(u.bodies) }

func (u *Universe) Stars() []*Body   { return clone(u.stars) }
func (u *Universe) Planets() []*Body { return clone(u.planets) }
func (u *Universe) Moons() []*Body   { return clone(u.moons) }

// View returns the category view for c, or nil for an unknown category.
func (u *Universe) View(c Category) []*Body {
	if v := u.viewRef(c); v != nil {
		return clone(*v)
	}
	return nil
}

// Body looks a registered body up by id.
func (u *Universe) Body(id BodyID) (*Body, bool) {
	for _, b := range u.bodies {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

// Last returns the most recently added body.
func (u *Universe) Last() (*Body, bool) {
	if len(u.bodies) == 0 {
		return nil, false
	}
	return u.bodies[len(u.bodies)-1], true
}

// Snapshot copies the state of every body in insertion order.
func (u *Universe) Snapshot() []BodyState {
	out := make([]BodyState, len(u.bodies))
	for i, b := range u.bodies {
		out[i] = b.State()
	}
	return out
}

func clone(s []*Body) []*Body {
	c := make([]*Body, len(s))
	copy(c, s)
	return c
}
