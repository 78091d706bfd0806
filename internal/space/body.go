package space

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// G is the universal gravitational constant in m³/(kg·s²).
const G = 6.67428e-11

// MaxEmitters is the number of stars that can hold an emitter slot at once.
const MaxEmitters = 8

// BodyID identifies a registered body. Zero means unregistered.
type BodyID uint64

type Category uint8

const (
	Star Category = iota
	Planet
	Moon
)

var categoryNames = [...]string{Star: "star", Planet: "planet", Moon: "moon"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

func (c Category) valid() bool {
	return c <= Moon
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Body is a point mass. Fields are owned by the Universe once the body is
// added; presentation code should treat them as read-only.
type Body struct {
	Name     string
	Mass     float64
	Radius   float64
	Position Vector2
	Velocity Vector2
	Force    Vector2
	Color    colorful.Color
	Category Category

	id   BodyID
	slot int // emitter slot, -1 when unassigned
}

// NewBody creates a body of the given category at an explicit position and velocity.
func NewBody(category Category, name string, mass, radius float64, position, velocity Vector2, color colorful.Color) *Body {
	return &Body{
		Name:     name,
		Mass:     mass,
		Radius:   radius,
		Position: position,
		Velocity: velocity,
		Color:    color,
		Category: category,
		slot:     -1,
	}
}

func NewPlanet(name string, mass, radius float64, position, velocity Vector2, color colorful.Color) *Body {
	return NewBody(Planet, name, mass, radius, position, velocity, color)
}

// NewStar creates a light-emitting body. Its emitter slot is assigned when
// it is added to a Universe.
func NewStar(name string, mass, radius float64, position, velocity Vector2, color colorful.Color) *Body {
	return NewBody(Star, name, mass, radius, position, velocity, color)
}

// NewSatellite places a moon distance meters "above" parent and gives it the
// speed of a circular orbit around parent at that instant. The moon keeps no
// reference to parent. Use ValidateOrbit first when the inputs are untrusted.
func NewSatellite(parent *Body, name string, mass, radius, distance float64, color colorful.Color) *Body {
	position := parent.Position.Add(Vector2{0, distance})
	v := OrbitalSpeed(parent.Mass, distance)
	velocity := parent.Velocity.Add(Vector2{v, 0})
	return NewBody(Moon, name, mass, radius, position, velocity, color)
}

// OrbitalPeriod returns T = 2π·sqrt(d³/(G·M)).
func OrbitalPeriod(parentMass, distance float64) float64 {
	return 2 * math.Pi * math.Sqrt(distance*distance*distance/(G*parentMass))
}

// OrbitalSpeed returns the circumference of the orbit divided by its period.
func OrbitalSpeed(parentMass, distance float64) float64 {
	return 2 * math.Pi * distance / OrbitalPeriod(parentMass, distance)
}

func ValidateOrbit(parentMass, distance float64) error {
	if !(parentMass > 0) || !(distance > 0) || math.IsInf(parentMass, 0) || math.IsInf(distance, 0) {
		return fmt.Errorf("%w: mass=%g distance=%g", ErrInvalidOrbit, parentMass, distance)
	}
	return nil
}

// ID returns the handle assigned by Universe.Add, or zero.
func (b *Body) ID() BodyID { return b.id }

// EmitterSlot reports the star's emitter slot, if it holds one.
func (b *Body) EmitterSlot() (int, bool) {
	if b.slot < 0 {
		return 0, false
	}
	return b.slot, true
}

// Speed returns the length of the velocity.
func (b *Body) Speed() float64 { return b.Velocity.Len() }

// BodyState is a detached copy of a body's state.
type BodyState struct {
	ID       BodyID
	Name     string
	Category Category
	Mass     float64
	Radius   float64
	Position Vector2
	Velocity Vector2
	Force    Vector2
	Color    colorful.Color
	Slot     int
}

func (b *Body) State() BodyState {
	return BodyState{
		ID:       b.id,
		Name:     b.Name,
		Category: b.Category,
		Mass:     b.Mass,
		Radius:   b.Radius,
		Position: b.Position,
		Velocity: b.Velocity,
		Force:    b.Force,
		Color:    b.Color,
		Slot:     b.slot,
	}
}

// RGB builds a display color, clamping each channel to [0, 1].
func RGB(r, g, b float64) colorful.Color {
	return colorful.Color{R: r, G: g, B: b}.Clamped()
}

// Hex parses a "#rrggbb" display color.
func Hex(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}
