// Package units converts geometric quantities (G = c = M_sun = 1) to physical
// units. A System is computed once from fixed constants and never mutated.
package units

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConstants = errors.New("units: constants must be positive and finite")

// Constants are the SI values a System is derived from.
type Constants struct {
	G    float64 // m^3 kg^-1 s^-2
	C    float64 // m/s
	Msun float64 // kg
}

// CODATA 2018 G and c, IAU nominal solar mass.
var SI = Constants{
	G:    6.67430e-11,
	C:    299792458,
	Msun: 1.98841e30,
}

type System struct {
	consts Constants

	length   float64 // m
	time     float64 // s
	mass     float64 // kg
	density  float64 // kg/m^3
	pressure float64 // Pa
}

func New(c Constants) (System, error) {
	for _, v := range []float64{c.G, c.C, c.Msun} {
		if !(v > 0) || math.IsInf(v, 0) {
			return System{}, fmt.Errorf("%w: %+v", ErrInvalidConstants, c)
		}
	}

	l := c.G * c.Msun / (c.C * c.C)
	rho := c.Msun / (l * l * l)
	return System{
		consts:   c,
		length:   l,
		time:     l / c.C,
		mass:     c.Msun,
		density:  rho,
		pressure: rho * c.C * c.C,
	}, nil
}

var geometric = mustNew(SI)

func mustNew(c Constants) System {
	s, err := New(c)
	if err != nil {
		panic(err)
	}
	return s
}

// Geometric returns the system built from SI.
func Geometric() System { return geometric }

func (s System) Constants() Constants { return s.consts }

// LengthMeters is the geometric length unit G M_sun / c^2 in meters.
func (s System) LengthMeters() float64 { return s.length }

func (s System) LengthKm(r float64) float64 { return r * s.length / 1e3 }

func (s System) LengthFromKm(km float64) float64 { return km * 1e3 / s.length }

func (s System) TimeMs(t float64) float64 { return t * s.time * 1e3 }

func (s System) MassSolar(m float64) float64 { return m * s.mass / s.consts.Msun }

func (s System) MassKg(m float64) float64 { return m * s.mass }

// DensityCGS converts a rest-mass density to g/cm^3.
func (s System) DensityCGS(rho float64) float64 { return rho * s.density * 1e-3 }

func (s System) DensityFromCGS(gcc float64) float64 { return gcc * 1e3 / s.density }

// PressureCGS converts a pressure or energy density to dyn/cm^2 (erg/cm^3).
func (s System) PressureCGS(p float64) float64 { return p * s.pressure * 10 }

func (s System) PressureFromCGS(dyn float64) float64 { return dyn / 10 / s.pressure }
