// Package eos provides the equations of state that close the stellar
// structure equations.
//
// Every variant implements [EOS], five pure conversions between rest-mass
// density, pressure and total energy density in geometric units
// (G = c = M_sun = 1):
//
//   - [Polytrope]: P = K rho^Gamma
//   - [PiecewisePolytrope]: polytropic segments joined continuously
//   - [Tabulated]: piecewise-linear interpolation of sampled data
//   - [ConstantDensity]: incompressible matter, for closed-form checks
//
// Values are immutable after construction and safe to share across
// goroutines. Inputs must be non-negative; callers guard before calling.
//
//	e, err := eos.New(eos.Params{Type: eos.TypePolytrope, K: 100, Gamma: 2})
//	eps := e.EnergyDensityFromPressure(1e-3)
package eos
