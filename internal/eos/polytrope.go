package eos

import (
	"fmt"
	"math"
)

type Polytrope struct {
	K     float64
	Gamma float64
}

func NewPolytrope(k, gamma float64) (*Polytrope, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, invalid("polytrope K must be positive and finite, got %g", k)
	}
	if !(gamma > 0) || math.IsInf(gamma, 0) || gamma == 1 {
		return nil, invalid("polytrope Gamma must be positive, finite and != 1, got %g", gamma)
	}
	return &Polytrope{K: k, Gamma: gamma}, nil
}

func (p *Polytrope) Name() string {
	return fmt.Sprintf("polytrope(K=%g,Gamma=%g)", p.K, p.Gamma)
}

func (p *Polytrope) PressureFromDensity(rho float64) float64 {
	return p.K * math.Pow(rho, p.Gamma)
}

func (p *Polytrope) EnergyDensityFromDensity(rho float64) float64 {
	return rho + p.PressureFromDensity(rho)/(p.Gamma-1)
}

func (p *Polytrope) DensityFromPressure(pr float64) float64 {
	return math.Pow(pr/p.K, 1/p.Gamma)
}

func (p *Polytrope) RestMassDensityFromPressure(pr float64) float64 {
	return p.DensityFromPressure(pr)
}

func (p *Polytrope) EnergyDensityFromPressure(pr float64) float64 {
	return p.DensityFromPressure(pr) + pr/(p.Gamma-1)
}
