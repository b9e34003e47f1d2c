package eos

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidParameters is wrapped by every construction failure.
var ErrInvalidParameters = errors.New("eos: invalid parameters")

type EOS interface {
	Name() string
	PressureFromDensity(rho float64) float64
	EnergyDensityFromDensity(rho float64) float64
	DensityFromPressure(p float64) float64
	RestMassDensityFromPressure(p float64) float64
	EnergyDensityFromPressure(p float64) float64
}

const (
	TypePolytrope          = "polytrope"
	TypePiecewisePolytrope = "piecewise"
	TypeTabulated          = "tabulated"
	TypeConstantDensity    = "constant"
)

// Params is a plain description of an equation of state, as read from
// configuration. Only the fields relevant to Type are consulted.
type Params struct {
	Type string

	K     float64
	Gamma float64

	Boundaries []float64
	Gammas     []float64

	Density       []float64
	Pressure      []float64
	EnergyDensity []float64
	Extrapolation Extrapolation

	Epsilon0 float64
}

type Registry struct {
	builders map[string]func(Params) (EOS, error)
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]func(Params) (EOS, error))}

	r.builders[TypePolytrope] = func(s Params) (EOS, error) {
		p, err := NewPolytrope(s.K, s.Gamma)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	r.builders[TypePiecewisePolytrope] = func(s Params) (EOS, error) {
		pp, err := NewPiecewisePolytrope(s.K, s.Boundaries, s.Gammas)
		if err != nil {
			return nil, err
		}
		return pp, nil
	}
	r.builders[TypeTabulated] = func(s Params) (EOS, error) {
		t, err := NewTabulated(s.Density, s.Pressure, s.EnergyDensity, s.Extrapolation)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	r.builders[TypeConstantDensity] = func(s Params) (EOS, error) {
		c, err := NewConstantDensity(s.Epsilon0)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return r
}

func (r *Registry) Build(s Params) (EOS, error) {
	fn, ok := r.builders[s.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q (available: %v)", ErrInvalidParameters, s.Type, r.Types())
	}
	return fn(s)
}

func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// New builds an equation of state from its description.
func New(s Params) (EOS, error) {
	return defaultRegistry.Build(s)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameters}, args...)...)
}
