package eos

import (
	"fmt"
	"math"
)

// ConstantDensity is incompressible matter: the energy density is Epsilon0
// whatever the pressure. Its stars have the closed-form Schwarzschild
// interior solution.
type ConstantDensity struct {
	Epsilon0 float64
}

func NewConstantDensity(eps0 float64) (*ConstantDensity, error) {
	if !(eps0 > 0) || math.IsInf(eps0, 0) {
		return nil, invalid("constant density epsilon0 must be positive and finite, got %g", eps0)
	}
	return &ConstantDensity{Epsilon0: eps0}, nil
}

func (c *ConstantDensity) Name() string {
	return fmt.Sprintf("constant(eps0=%g)", c.Epsilon0)
}

// PressureFromDensity returns 0: pressure is not a function of density for
// incompressible matter.
func (c *ConstantDensity) PressureFromDensity(rho float64) float64 { return 0 }

func (c *ConstantDensity) EnergyDensityFromDensity(rho float64) float64 { return c.Epsilon0 }

func (c *ConstantDensity) DensityFromPressure(p float64) float64 { return c.Epsilon0 }

func (c *ConstantDensity) RestMassDensityFromPressure(p float64) float64 { return c.Epsilon0 }

func (c *ConstantDensity) EnergyDensityFromPressure(p float64) float64 { return c.Epsilon0 }
