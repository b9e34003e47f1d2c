package ode

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// AddScaled returns s + factor*other.
func (s State) AddScaled(factor float64, other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + factor*other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a first-order ODE system dX/dr = f(X, r).
type System interface {
	Derive(x State, r float64) State
	StateDim() int
}

// Stepper advances a state by one fixed step of size h.
type Stepper interface {
	Step(sys System, x State, r, h float64) State
}

// Event is a continuous scalar trigger evaluated on the solution. An
// integration watching an event stops at the first radius where the trigger
// falls from positive to zero or below.
type Event func(x State, r float64) float64

type Config struct {
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	RelTol      float64
	AbsTol      float64
	MaxSteps    int
}

func DefaultConfig() Config {
	return Config{
		InitialStep: 1e-5,
		MinStep:     1e-14,
		MaxStep:     0,
		RelTol:      1e-8,
		AbsTol:      1e-8,
		MaxSteps:    200000,
	}
}

func (c Config) Validate() error {
	if c.RelTol <= 0 || c.AbsTol <= 0 {
		return fmt.Errorf("tolerances must be positive, got rtol=%g atol=%g", c.RelTol, c.AbsTol)
	}
	if c.InitialStep <= 0 {
		return fmt.Errorf("initial step must be positive, got %g", c.InitialStep)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if c.MinStep < 0 || c.MaxStep < 0 {
		return fmt.Errorf("step bounds must be non-negative")
	}
	return nil
}

// Solution holds the accepted steps of an integration. Points[i] is the state
// at Radii[i].
type Solution struct {
	Radii  []float64
	Points []State

	// EventRadius and EventState are set when the integration stopped on an
	// event; Terminated reports whether that happened.
	Terminated  bool
	EventRadius float64
	EventState  State

	Steps    int
	Rejected int
	Evals    int
}

func (s *Solution) Len() int { return len(s.Radii) }

// Last returns the final recorded point.
func (s *Solution) Last() (float64, State) {
	n := len(s.Radii)
	if n == 0 {
		return 0, nil
	}
	return s.Radii[n-1], s.Points[n-1]
}
