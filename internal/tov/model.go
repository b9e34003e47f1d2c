package tov

import (
	"math"
	"sort"
)

// Profile holds parallel radial samples ordered by increasing radius; the
// last sample is the surface.
type Profile struct {
	R       []float64
	P       []float64
	Epsilon []float64
	M       []float64
	Mb      []float64
	Nu      []float64
}

func (p Profile) Len() int { return len(p.R) }

// Model is the result of one solve. It is not modified after Solve returns
// and may be shared read-only.
type Model struct {
	EOS                  string
	CentralPressure      float64
	CentralEnergyDensity float64

	Mass       float64
	Radius     float64
	BaryonMass float64

	Profile Profile

	// Degenerate is set when R <= 2M; Nu is then left unshifted.
	Degenerate bool

	Steps    int
	Rejected int
}

func (m *Model) Len() int { return m.Profile.Len() }

// Compactness returns M/R.
func (m *Model) Compactness() float64 {
	if m.Radius == 0 {
		return 0
	}
	return m.Mass / m.Radius
}

// BindingEnergy returns M_b - M, positive for a bound star.
func (m *Model) BindingEnergy() float64 {
	return m.BaryonMass - m.Mass
}

// MetricMismatch returns |exp(2 nu(R)) - (1 - 2M/R)|, the distance from the
// exterior Schwarzschild metric at the surface.
func (m *Model) MetricMismatch() float64 {
	n := m.Len()
	if n == 0 || m.Radius == 0 {
		return math.Inf(1)
	}
	return math.Abs(math.Exp(2*m.Profile.Nu[n-1]) - (1 - 2*m.Mass/m.Radius))
}

// IndexNear returns the index of the sample whose radius is closest to r.
func (m *Model) IndexNear(r float64) int {
	rs := m.Profile.R
	if len(rs) == 0 {
		return -1
	}
	i := sort.SearchFloat64s(rs, r)
	switch {
	case i == 0:
		return 0
	case i == len(rs):
		return len(rs) - 1
	case r-rs[i-1] <= rs[i]-r:
		return i - 1
	default:
		return i
	}
}
