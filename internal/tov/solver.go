package tov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/integrators"
	"github.com/san-kum/tovsim/internal/ode"
)

const (
	DefaultRInit    = 1e-8
	DefaultRMax     = 1000.0
	DefaultRelTol   = 1e-8
	DefaultAbsTol   = 1e-8
	DefaultMaxSteps = 200000
)

type Config struct {
	RInit       float64
	RMax        float64
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	MaxSteps    int

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		RInit:       DefaultRInit,
		RMax:        DefaultRMax,
		RelTol:      DefaultRelTol,
		AbsTol:      DefaultAbsTol,
		InitialStep: 1e-5,
		MinStep:     1e-14,
		MaxSteps:    DefaultMaxSteps,
	}
}

func (c Config) validate() error {
	if !(c.RInit > 0) {
		return fmt.Errorf("r_init must be positive, got %g", c.RInit)
	}
	if !(c.RMax > c.RInit) {
		return fmt.Errorf("r_max (%g) must exceed r_init (%g)", c.RMax, c.RInit)
	}
	return c.odeConfig().Validate()
}

func (c Config) odeConfig() ode.Config {
	return ode.Config{
		InitialStep: c.InitialStep,
		MinStep:     c.MinStep,
		MaxStep:     c.MaxStep,
		RelTol:      c.RelTol,
		AbsTol:      c.AbsTol,
		MaxSteps:    c.MaxSteps,
	}
}

type Solver struct {
	cfg    Config
	integ  *integrators.RK45
	logger *slog.Logger
}

func NewSolver(cfg Config) *Solver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{cfg: cfg, integ: integrators.NewRK45(), logger: logger}
}

func (s *Solver) Config() Config { return s.cfg }

// surface is the event trigger: the pressure itself.
func surface(x ode.State, r float64) float64 {
	return x[IdxPressure]
}

// Solve integrates from the center at central pressure pc to the surface.
func (s *Solver) Solve(ctx context.Context, e eos.EOS, pc float64) (*Model, error) {
	fail := func(stage Stage, r float64, step int, err error) error {
		return &SolveError{Stage: stage, EOS: e.Name(), CentralPressure: pc, Radius: r, Step: step, Err: err}
	}

	if !(pc > 0) || math.IsInf(pc, 0) {
		return nil, fail(StageSeed, 0, 0, fmt.Errorf("%w: central pressure must be positive and finite, got %g", ErrInvalidInput, pc))
	}
	if err := s.cfg.validate(); err != nil {
		return nil, fail(StageSeed, 0, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	x0 := Seed(e, pc, s.cfg.RInit)
	if !x0.IsValid() {
		return nil, fail(StageSeed, s.cfg.RInit, 0, fmt.Errorf("%w: %w", ErrIntegrationFailure, ode.ErrInvalidState))
	}
	if x0[IdxPressure] <= 0 {
		return nil, fail(StageSeed, s.cfg.RInit, 0, fmt.Errorf("%w: seed pressure %g is not positive, r_init too large", ErrInvalidInput, x0[IdxPressure]))
	}

	sol, err := s.integ.Integrate(ctx, NewIntegrand(e), x0, s.cfg.RInit, s.cfg.RMax, surface, s.cfg.odeConfig())
	if err != nil {
		r, step := s.cfg.RInit, 0
		var stepErr *ode.StepError
		if errors.As(err, &stepErr) {
			r, step = stepErr.Radius, stepErr.Step
		}
		if ctx.Err() != nil {
			return nil, fail(StageIntegrate, r, step, err)
		}
		return nil, fail(StageIntegrate, r, step, fmt.Errorf("%w: %w", ErrIntegrationFailure, err))
	}
	if !sol.Terminated {
		return nil, fail(StageIntegrate, s.cfg.RMax, sol.Steps, fmt.Errorf("%w: %w", ErrIntegrationFailure, ode.ErrNoEvent))
	}

	surf := sol.EventState.Clone()
	surf[IdxPressure] = math.Max(0, surf[IdxPressure])
	radius, mass := sol.EventRadius, surf[IdxMass]
	if !surf.IsValid() || !(radius > s.cfg.RInit) || !(mass > 0) {
		return nil, fail(StageIntegrate, radius, sol.Steps, fmt.Errorf("%w: surface state not physical (R=%g, M=%g)", ErrIntegrationFailure, radius, mass))
	}

	n := sol.Len() + 1
	prof := Profile{
		R:       make([]float64, n),
		P:       make([]float64, n),
		Epsilon: make([]float64, n),
		M:       make([]float64, n),
		Mb:      make([]float64, n),
		Nu:      make([]float64, n),
	}
	for i := 0; i < n; i++ {
		r, x := radius, surf
		if i < sol.Len() {
			r, x = sol.Radii[i], sol.Points[i]
		}
		prof.R[i] = r
		prof.P[i] = x[IdxPressure]
		prof.M[i] = x[IdxMass]
		prof.Mb[i] = x[IdxBaryonMass]
		prof.Nu[i] = x[IdxNu]
		prof.Epsilon[i] = e.EnergyDensityFromPressure(prof.P[i])
	}

	model := &Model{
		EOS:                  e.Name(),
		CentralPressure:      pc,
		CentralEnergyDensity: e.EnergyDensityFromPressure(pc),
		Mass:                 mass,
		Radius:               radius,
		BaryonMass:           surf[IdxBaryonMass],
		Profile:              prof,
		Steps:                sol.Steps,
		Rejected:             sol.Rejected,
	}

	if err := s.matchExterior(model); err != nil {
		return nil, fail(StageMetric, radius, sol.Steps, err)
	}
	return model, nil
}

// matchExterior shifts nu by a constant so that exp(2 nu(R)) = 1 - 2M/R. A
// surface inside its own Schwarzschild radius is left unshifted and flagged.
func (s *Solver) matchExterior(m *Model) error {
	if m.Radius <= 2*m.Mass {
		m.Degenerate = true
		s.logger.Warn("skipping metric shift",
			"err", ErrDegenerateSurface,
			"eos", m.EOS,
			"central_pressure", m.CentralPressure,
			"radius", m.Radius,
			"mass", m.Mass,
		)
		return nil
	}

	nu := m.Profile.Nu
	exact := 0.5 * math.Log(1-2*m.Mass/m.Radius)
	shift := exact - nu[len(nu)-1]
	if math.IsNaN(shift) || math.IsInf(shift, 0) {
		return fmt.Errorf("%w: metric shift is not finite (nu(R)=%g)", ErrIntegrationFailure, nu[len(nu)-1])
	}
	for i := range nu {
		nu[i] += shift
	}
	// the surface sample takes the exact exterior value
	nu[len(nu)-1] = exact
	return nil
}

// Solve integrates one star with the default configuration.
func Solve(ctx context.Context, e eos.EOS, pc float64) (*Model, error) {
	return NewSolver(DefaultConfig()).Solve(ctx, e, pc)
}
