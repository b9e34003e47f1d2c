package eos

import (
	"fmt"
	"math"
	"strings"
)

// PiecewisePolytrope joins polytropic segments at fixed rest-mass density
// boundaries. Only the first K is free; the remaining K_i and the energy
// constants a_i follow from continuity of pressure and energy density.
type PiecewisePolytrope struct {
	boundaries []float64
	pressures  []float64 // pressure at each density boundary
	ks         []float64
	gammas     []float64
	as         []float64
}

func NewPiecewisePolytrope(k1 float64, boundaries, gammas []float64) (*PiecewisePolytrope, error) {
	if !(k1 > 0) || math.IsInf(k1, 0) {
		return nil, invalid("piecewise K must be positive and finite, got %g", k1)
	}
	if len(gammas) != len(boundaries)+1 {
		return nil, invalid("piecewise needs len(gammas) = len(boundaries)+1, got %d and %d", len(gammas), len(boundaries))
	}
	for i, b := range boundaries {
		if !(b > 0) || math.IsInf(b, 0) {
			return nil, invalid("piecewise boundary %d must be positive and finite, got %g", i, b)
		}
		if i > 0 && b <= boundaries[i-1] {
			return nil, invalid("piecewise boundaries must be strictly increasing (%g <= %g at %d)", b, boundaries[i-1], i)
		}
	}
	for i, g := range gammas {
		if !(g > 0) || math.IsInf(g, 0) || g == 1 {
			return nil, invalid("piecewise Gamma_%d must be positive, finite and != 1, got %g", i, g)
		}
	}

	n := len(gammas)
	pp := &PiecewisePolytrope{
		boundaries: append([]float64(nil), boundaries...),
		gammas:     append([]float64(nil), gammas...),
		ks:         make([]float64, n),
		as:         make([]float64, n),
		pressures:  make([]float64, len(boundaries)),
	}
	pp.ks[0] = k1
	for i, rho := range boundaries {
		gi, gn := gammas[i], gammas[i+1]
		pp.ks[i+1] = pp.ks[i] * math.Pow(rho, gi-gn)
		pp.as[i+1] = pp.as[i] +
			pp.ks[i]*math.Pow(rho, gi-1)/(gi-1) -
			pp.ks[i+1]*math.Pow(rho, gn-1)/(gn-1)
		pp.pressures[i] = pp.ks[i] * math.Pow(rho, gi)
	}
	return pp, nil
}

func (pp *PiecewisePolytrope) Name() string {
	gs := make([]string, len(pp.gammas))
	for i, g := range pp.gammas {
		gs[i] = fmt.Sprintf("%g", g)
	}
	return fmt.Sprintf("piecewise(K1=%g,Gammas=[%s])", pp.ks[0], strings.Join(gs, ","))
}

// Segment returns K_i, Gamma_i and a_i for region i.
func (pp *PiecewisePolytrope) Segment(i int) (k, gamma, a float64) {
	return pp.ks[i], pp.gammas[i], pp.as[i]
}

// regionFor returns the smallest i with v <= bounds[i], or the last region.
// A value exactly on a boundary belongs to the lower-density region.
func regionFor(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v <= b {
			return i
		}
	}
	return len(bounds)
}

// DensityRegion reports which segment applies at rest-mass density rho.
func (pp *PiecewisePolytrope) DensityRegion(rho float64) int {
	return regionFor(rho, pp.boundaries)
}

func (pp *PiecewisePolytrope) PressureFromDensity(rho float64) float64 {
	i := regionFor(rho, pp.boundaries)
	return pp.ks[i] * math.Pow(rho, pp.gammas[i])
}

func (pp *PiecewisePolytrope) EnergyDensityFromDensity(rho float64) float64 {
	i := regionFor(rho, pp.boundaries)
	return (1+pp.as[i])*rho + pp.ks[i]*math.Pow(rho, pp.gammas[i])/(pp.gammas[i]-1)
}

func (pp *PiecewisePolytrope) DensityFromPressure(p float64) float64 {
	i := regionFor(p, pp.pressures)
	return math.Pow(p/pp.ks[i], 1/pp.gammas[i])
}

func (pp *PiecewisePolytrope) RestMassDensityFromPressure(p float64) float64 {
	return pp.DensityFromPressure(p)
}

func (pp *PiecewisePolytrope) EnergyDensityFromPressure(p float64) float64 {
	i := regionFor(p, pp.pressures)
	rho := math.Pow(p/pp.ks[i], 1/pp.gammas[i])
	return (1+pp.as[i])*rho + p/(pp.gammas[i]-1)
}
