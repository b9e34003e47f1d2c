package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
	"gopkg.in/yaml.v3"
)

const (
	DefaultK              = 100.0
	DefaultGamma          = 2.0
	DefaultCentralDensity = 1.28e-3
	DefaultDensityMin     = 1e-4
	DefaultDensityMax     = 5e-3
	DefaultPoints         = 10

	SpacingLinear = "linear"
	SpacingLog    = "log"
)

// ErrNoDensitySweep is returned for an EOS whose pressure does not follow
// from density, so a central-density sweep cannot be turned into pressures.
var ErrNoDensitySweep = errors.New("config: constant-density eos has no pressure-density relation, solve single stars with --pc instead")

type Config struct {
	EOS      EOSConfig      `yaml:"eos"`
	Solver   SolverConfig   `yaml:"solver"`
	Star     StarConfig     `yaml:"star"`
	Sequence SequenceConfig `yaml:"sequence"`
}

type EOSConfig struct {
	Type       string    `yaml:"type"`
	K          float64   `yaml:"k,omitempty"`
	Gamma      float64   `yaml:"gamma,omitempty"`
	Boundaries []float64 `yaml:"boundaries,omitempty"`
	Gammas     []float64 `yaml:"gammas,omitempty"`
	Epsilon0   float64   `yaml:"epsilon0,omitempty"`
	// Table is a CSV file of density, pressure, energy density rows.
	Table         string `yaml:"table,omitempty"`
	Extrapolation string `yaml:"extrapolation,omitempty"`
}

type SolverConfig struct {
	RInit       float64 `yaml:"r_init"`
	RMax        float64 `yaml:"r_max"`
	RelTol      float64 `yaml:"rtol"`
	AbsTol      float64 `yaml:"atol"`
	InitialStep float64 `yaml:"initial_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"`
	MaxSteps    int     `yaml:"max_steps"`
}

// StarConfig selects the central condition of a single solve. A positive
// pressure wins over the density.
type StarConfig struct {
	CentralDensity  float64 `yaml:"central_density"`
	CentralPressure float64 `yaml:"central_pressure,omitempty"`
}

type SequenceConfig struct {
	DensityMin         float64 `yaml:"density_min"`
	DensityMax         float64 `yaml:"density_max"`
	Points             int     `yaml:"points"`
	Spacing            string  `yaml:"spacing"`
	Workers            int     `yaml:"workers"`
	CausalityThreshold float64 `yaml:"causality_threshold"`
}

func DefaultConfig() *Config {
	sc := tov.DefaultConfig()
	return &Config{
		EOS: EOSConfig{
			Type:  eos.TypePolytrope,
			K:     DefaultK,
			Gamma: DefaultGamma,
		},
		Solver: SolverConfig{
			RInit:       sc.RInit,
			RMax:        sc.RMax,
			RelTol:      sc.RelTol,
			AbsTol:      sc.AbsTol,
			InitialStep: sc.InitialStep,
			MinStep:     sc.MinStep,
			MaxStep:     sc.MaxStep,
			MaxSteps:    sc.MaxSteps,
		},
		Star: StarConfig{
			CentralDensity: DefaultCentralDensity,
		},
		Sequence: SequenceConfig{
			DensityMin:         DefaultDensityMin,
			DensityMax:         DefaultDensityMax,
			Points:             DefaultPoints,
			Spacing:            SpacingLinear,
			CausalityThreshold: sequence.DefaultCausalityThreshold,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildEOS constructs the configured equation of state, reading the table
// file for tabulated types.
func (c *Config) BuildEOS() (eos.EOS, error) {
	params := eos.Params{
		Type:       c.EOS.Type,
		K:          c.EOS.K,
		Gamma:      c.EOS.Gamma,
		Boundaries: c.EOS.Boundaries,
		Gammas:     c.EOS.Gammas,
		Epsilon0:   c.EOS.Epsilon0,
	}

	if c.EOS.Type == eos.TypeTabulated {
		if c.EOS.Table == "" {
			return nil, fmt.Errorf("%w: tabulated eos needs a table file", eos.ErrInvalidParameters)
		}
		mode, err := eos.ParseExtrapolation(c.EOS.Extrapolation)
		if err != nil {
			return nil, err
		}
		rho, p, eps, err := LoadTable(c.EOS.Table)
		if err != nil {
			return nil, err
		}
		params.Density, params.Pressure, params.EnergyDensity, params.Extrapolation = rho, p, eps, mode
	}

	return eos.New(params)
}

func (c *Config) SolverConfig() tov.Config {
	return tov.Config{
		RInit:       c.Solver.RInit,
		RMax:        c.Solver.RMax,
		RelTol:      c.Solver.RelTol,
		AbsTol:      c.Solver.AbsTol,
		InitialStep: c.Solver.InitialStep,
		MinStep:     c.Solver.MinStep,
		MaxStep:     c.Solver.MaxStep,
		MaxSteps:    c.Solver.MaxSteps,
	}
}

func (c *Config) SequenceConfig() sequence.Config {
	return sequence.Config{
		Workers:            c.Sequence.Workers,
		CausalityThreshold: c.Sequence.CausalityThreshold,
		Solver:             c.SolverConfig(),
	}
}

// CentralPressure resolves the single-star central condition against e.
func (c *Config) CentralPressure(e eos.EOS) float64 {
	if c.Star.CentralPressure > 0 {
		return c.Star.CentralPressure
	}
	return e.PressureFromDensity(c.Star.CentralDensity)
}

// Densities returns the central densities of the configured sweep.
func (c *Config) Densities() ([]float64, error) {
	s := c.Sequence
	if s.Points <= 0 || !(s.DensityMin > 0) || !(s.DensityMax > s.DensityMin) {
		return nil, fmt.Errorf("config: bad density range [%g, %g] with %d points", s.DensityMin, s.DensityMax, s.Points)
	}
	switch s.Spacing {
	case "", SpacingLinear:
		return sequence.LinearDensities(s.DensityMin, s.DensityMax, s.Points), nil
	case SpacingLog:
		return sequence.LogDensities(s.DensityMin, s.DensityMax, s.Points), nil
	default:
		return nil, fmt.Errorf("config: unknown spacing %q (want %s or %s)", s.Spacing, SpacingLinear, SpacingLog)
	}
}

// SequencePoints resolves the configured sweep into central conditions for e.
func (c *Config) SequencePoints(e eos.EOS) ([]sequence.Point, error) {
	if c.EOS.Type == eos.TypeConstantDensity {
		return nil, ErrNoDensitySweep
	}
	rhos, err := c.Densities()
	if err != nil {
		return nil, err
	}
	return sequence.PressuresFromDensities(e, rhos), nil
}
