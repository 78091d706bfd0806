package space

import (
	"errors"
	"fmt"
)

// Domain errors for registry and stepping operations.
var (
	// ErrEmptyRegistry indicates a removal was attempted on an empty universe.
	ErrEmptyRegistry = errors.New("space: registry is empty")

	// ErrZeroMassBody indicates integration was attempted on a body with zero mass.
	ErrZeroMassBody = errors.New("space: body has zero mass")

	// ErrDegenerateGeometry indicates two bodies occupy the same position.
	ErrDegenerateGeometry = errors.New("space: zero distance between bodies")

	// ErrAmbiguousCategoryMatch indicates the category view tail does not
	// match the body being removed.
	ErrAmbiguousCategoryMatch = errors.New("space: category view does not match removed body")

	ErrNilBody           = errors.New("space: nil body")
	ErrAlreadyRegistered = errors.New("space: body already registered")
	ErrUnknownCategory   = errors.New("space: unknown body category")

	// ErrInvalidStep indicates a negative or non-finite step duration.
	ErrInvalidStep = errors.New("space: step duration must be finite and non-negative")

	// ErrInvalidOrbit indicates orbital parameters that would divide by zero.
	ErrInvalidOrbit = errors.New("space: orbit requires positive parent mass and distance")
)

// BodyError wraps an error with the body it concerns.
type BodyError struct {
	ID   BodyID
	Name string
	Err  error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

// PairError wraps an error raised while evaluating the pair (A, B).
type PairError struct {
	A, B BodyID
	Err  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair %d/%d: %v", e.A, e.B, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}
