package tov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a non-positive central pressure or an
	// unusable solver configuration.
	ErrInvalidInput = errors.New("tov: invalid input")

	// ErrIntegrationFailure indicates the integrator did not reach a surface:
	// step budget exhausted, non-finite state, step underflow, or no pressure
	// zero before the outer bound.
	ErrIntegrationFailure = errors.New("tov: integration failed")

	// ErrDegenerateSurface marks a solution with R <= 2M. It is reported as a
	// warning and carried on the model, never returned by Solve.
	ErrDegenerateSurface = errors.New("tov: degenerate surface (R <= 2M)")
)

// Stage names the part of a solve that failed.
type Stage string

const (
	StageSeed      Stage = "seed"
	StageIntegrate Stage = "integrate"
	StageMetric    Stage = "metric"
)

// SolveError carries the parameters needed to reproduce a failed solve.
type SolveError struct {
	Stage           Stage
	EOS             string
	CentralPressure float64
	Radius          float64
	Step            int
	Err             error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("tov: %s stage failed (eos=%s, pc=%g, r=%g, step=%d): %v",
		e.Stage, e.EOS, e.CentralPressure, e.Radius, e.Step, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
