package eos

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Extrapolation selects how a Tabulated EOS answers outside its samples.
type Extrapolation int

const (
	// ExtrapolateClamp holds the value of the nearest table end.
	ExtrapolateClamp Extrapolation = iota
	// ExtrapolateLinear extends the end segment, floored at zero.
	ExtrapolateLinear
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateClamp:
		return "clamp"
	case ExtrapolateLinear:
		return "linear"
	default:
		return fmt.Sprintf("extrapolation(%d)", int(e))
	}
}

func ParseExtrapolation(s string) (Extrapolation, error) {
	switch s {
	case "", "clamp":
		return ExtrapolateClamp, nil
	case "linear":
		return ExtrapolateLinear, nil
	default:
		return 0, invalid("unknown extrapolation %q (want clamp or linear)", s)
	}
}

// table is one monotonic lookup xs -> ys.
type table struct {
	pl     interp.PiecewiseLinear
	xs, ys []float64
	mode   Extrapolation
}

func newTable(xs, ys []float64, mode Extrapolation) (*table, error) {
	t := &table{xs: xs, ys: ys, mode: mode}
	if err := t.pl.Fit(xs, ys); err != nil {
		return nil, invalid("table fit: %v", err)
	}
	return t, nil
}

func (t *table) at(x float64) float64 {
	n := len(t.xs)
	if t.mode == ExtrapolateLinear {
		switch {
		case x < t.xs[0]:
			return math.Max(0, lerp(t.xs[0], t.ys[0], t.xs[1], t.ys[1], x))
		case x > t.xs[n-1]:
			return math.Max(0, lerp(t.xs[n-2], t.ys[n-2], t.xs[n-1], t.ys[n-1], x))
		}
	}
	return t.pl.Predict(x)
}

func lerp(x0, y0, x1, y1, x float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Tabulated interpolates sampled (density, pressure, energy density) triples.
// Density and pressure must both be strictly increasing so each direction of
// lookup is single valued.
type Tabulated struct {
	rhoToP   *table
	rhoToEps *table
	pToRho   *table
	pToEps   *table

	pMin, pMax float64
	mode       Extrapolation
}

func NewTabulated(density, pressure, energyDensity []float64, mode Extrapolation) (*Tabulated, error) {
	n := len(density)
	if n < 2 {
		return nil, invalid("tabulated EOS needs at least 2 samples, got %d", n)
	}
	if len(pressure) != n || len(energyDensity) != n {
		return nil, invalid("tabulated columns differ in length: density=%d pressure=%d energy=%d", n, len(pressure), len(energyDensity))
	}
	if mode != ExtrapolateClamp && mode != ExtrapolateLinear {
		return nil, invalid("unknown extrapolation %v", mode)
	}
	for i := 0; i < n; i++ {
		if !(density[i] >= 0) || !(pressure[i] >= 0) || !(energyDensity[i] >= 0) {
			return nil, invalid("tabulated sample %d out of domain (rho=%g p=%g eps=%g)", i, density[i], pressure[i], energyDensity[i])
		}
		if i == 0 {
			continue
		}
		if density[i] <= density[i-1] {
			return nil, invalid("tabulated density not strictly increasing at sample %d", i)
		}
		if pressure[i] <= pressure[i-1] {
			return nil, invalid("tabulated pressure not strictly increasing at sample %d", i)
		}
	}

	rho := append([]float64(nil), density...)
	p := append([]float64(nil), pressure...)
	eps := append([]float64(nil), energyDensity...)

	t := &Tabulated{pMin: p[0], pMax: p[n-1], mode: mode}
	var err error
	if t.rhoToP, err = newTable(rho, p, mode); err != nil {
		return nil, err
	}
	if t.rhoToEps, err = newTable(rho, eps, mode); err != nil {
		return nil, err
	}
	if t.pToRho, err = newTable(p, rho, mode); err != nil {
		return nil, err
	}
	if t.pToEps, err = newTable(p, eps, mode); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tabulated) Name() string {
	return fmt.Sprintf("tabulated(n=%d,%s)", len(t.pToRho.xs), t.mode)
}

// InRange reports whether p lies inside the sampled pressure range.
func (t *Tabulated) InRange(p float64) bool {
	return p >= t.pMin && p <= t.pMax
}

func (t *Tabulated) Extrapolation() Extrapolation { return t.mode }

func (t *Tabulated) PressureFromDensity(rho float64) float64 { return t.rhoToP.at(rho) }

func (t *Tabulated) EnergyDensityFromDensity(rho float64) float64 { return t.rhoToEps.at(rho) }

func (t *Tabulated) DensityFromPressure(p float64) float64 { return t.pToRho.at(p) }

func (t *Tabulated) RestMassDensityFromPressure(p float64) float64 { return t.pToRho.at(p) }

func (t *Tabulated) EnergyDensityFromPressure(p float64) float64 { return t.pToEps.at(p) }

// TabulatedFrom samples src at the given densities, producing a table that
// reproduces it to interpolation accuracy.
func TabulatedFrom(src EOS, densities []float64, mode Extrapolation) (*Tabulated, error) {
	p := make([]float64, len(densities))
	eps := make([]float64, len(densities))
	for i, rho := range densities {
		p[i] = src.PressureFromDensity(rho)
		eps[i] = src.EnergyDensityFromDensity(rho)
	}
	return NewTabulated(densities, p, eps, mode)
}
