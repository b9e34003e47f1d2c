package tov

import (
	"math"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/ode"
)

// State vector layout.
const (
	IdxPressure = iota
	IdxMass
	IdxNu
	IdxBaryonMass

	StateDim
)

// Integrand is the TOV right-hand side for one equation of state.
type Integrand struct {
	eos eos.EOS
}

func NewIntegrand(e eos.EOS) *Integrand {
	return &Integrand{eos: e}
}

func (in *Integrand) StateDim() int { return StateDim }

// Derive returns dX/dr. Once the pressure has dropped to zero the state is
// outside the star and frozen.
func (in *Integrand) Derive(x ode.State, r float64) ode.State {
	dx := make(ode.State, StateDim)

	p, m := x[IdxPressure], x[IdxMass]
	if p <= 0 || r <= 0 {
		return dx
	}

	eps := in.eos.EnergyDensityFromPressure(p)
	rho := in.eos.RestMassDensityFromPressure(p)
	r2 := r * r

	dP := -(eps + p) * (m + 4*math.Pi*r2*r*p) / (r * (r - 2*m))
	dx[IdxPressure] = dP
	dx[IdxMass] = 4 * math.Pi * r2 * eps
	dx[IdxNu] = -dP / (eps + p)

	if radicand := 1 - 2*m/r; radicand > 0 {
		dx[IdxBaryonMass] = 4 * math.Pi * r2 * rho / math.Sqrt(radicand)
	}

	return dx
}

// Seed returns the state at rInit from the leading-order expansion about the
// center, where the right-hand side is 0/0.
func Seed(e eos.EOS, pc, rInit float64) ode.State {
	epsC := e.EnergyDensityFromPressure(pc)
	rhoC := e.RestMassDensityFromPressure(pc)
	r2 := rInit * rInit
	r3 := r2 * rInit

	x := make(ode.State, StateDim)
	x[IdxPressure] = pc - (2.0/3.0)*math.Pi*(epsC+pc)*(epsC+3*pc)*r2
	x[IdxMass] = (4.0 / 3.0) * math.Pi * epsC * r3
	x[IdxNu] = 0
	x[IdxBaryonMass] = (4.0 / 3.0) * math.Pi * rhoC * r3
	return x
}
