package sequence

import (
	"errors"
	"log/slog"

	"github.com/san-kum/tovsim/internal/tov"
)

var (
	ErrNoPoints = errors.New("sequence: no central densities given")
	ErrNoModels = errors.New("sequence: no model converged")
)

// DefaultCausalityThreshold is the smallest energy-density step used for a
// sound speed estimate.
const DefaultCausalityThreshold = 1e-12

type Stability string

const (
	Stable   Stability = "stable"
	Unstable Stability = "unstable"
)

// Point is one central condition of a sweep.
type Point struct {
	Density  float64
	Pressure float64
}

type Causality struct {
	Causal          bool
	MaxSoundSpeed   float64
	MinSoundSpeedSq float64
}

// Failure records a sweep member that was skipped.
type Failure struct {
	Index    int
	Density  float64
	Pressure float64
	Err      error
}

type Sequence struct {
	EOS string

	// Models, Points, Causality and Stability are parallel and ordered like
	// the input points, minus failures.
	Models    []*tov.Model
	Points    []Point
	Causality []Causality
	Stability []Stability

	MaxMassIndex  int
	TurningPoints int
	Failures      []Failure
}

func (s *Sequence) Len() int { return len(s.Models) }

// MaxMass returns the heaviest model, or nil for an empty sequence.
func (s *Sequence) MaxMass() *tov.Model {
	if s.MaxMassIndex < 0 || s.MaxMassIndex >= len(s.Models) {
		return nil
	}
	return s.Models[s.MaxMassIndex]
}

// StableCount returns the length of the stable prefix.
func (s *Sequence) StableCount() int {
	n := 0
	for _, st := range s.Stability {
		if st == Stable {
			n++
		}
	}
	return n
}

// AllCausal reports whether every model passed the causality check.
func (s *Sequence) AllCausal() bool {
	for _, c := range s.Causality {
		if !c.Causal {
			return false
		}
	}
	return true
}

type Config struct {
	// Workers bounds concurrent solves; zero means GOMAXPROCS.
	Workers            int
	CausalityThreshold float64
	Solver             tov.Config
	Logger             *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		CausalityThreshold: DefaultCausalityThreshold,
		Solver:             tov.DefaultConfig(),
	}
}
