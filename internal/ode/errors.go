package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")

	// ErrMaxSteps indicates the step budget was exhausted.
	ErrMaxSteps = errors.New("ode: step budget exhausted")

	// ErrNoEvent indicates the integration reached its upper bound without
	// the watched event firing.
	ErrNoEvent = errors.New("ode: event did not trigger before the integration bound")

	// ErrDimensionMismatch indicates the initial state does not match the system.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and system")
)

// StepError wraps an error with the integration position at which it occurred.
type StepError struct {
	Step    int
	Radius  float64
	H       float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (r=%.6g, h=%.3g): %v", e.Step, e.Radius, e.H, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
