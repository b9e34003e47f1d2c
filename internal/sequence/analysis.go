package sequence

import (
	"math"

	"github.com/san-kum/tovsim/internal/tov"
	"gonum.org/v1/gonum/floats"
)

// CheckCausality estimates c_s^2 = dP/d(epsilon) on adjacent profile samples,
// skipping pairs whose energy density differs by less than threshold. A
// profile with no usable pair is reported causal with zero sound speed.
func CheckCausality(m *tov.Model, threshold float64) Causality {
	p, eps := m.Profile.P, m.Profile.Epsilon

	maxSq, minSq := math.Inf(-1), math.Inf(1)
	used := 0
	for i := 1; i < len(p) && i < len(eps); i++ {
		dEps := eps[i] - eps[i-1]
		if math.Abs(dEps) < threshold {
			continue
		}
		cs2 := (p[i] - p[i-1]) / dEps
		maxSq = math.Max(maxSq, cs2)
		minSq = math.Min(minSq, cs2)
		used++
	}

	if used == 0 {
		return Causality{Causal: true}
	}

	c := Causality{MinSoundSpeedSq: minSq}
	if maxSq > 0 {
		c.MaxSoundSpeed = math.Sqrt(maxSq)
	}
	c.Causal = c.MaxSoundSpeed <= 1 && minSq >= 0
	return c
}

// Branch is the stability split of a sequence ordered by central density.
type Branch struct {
	Labels        []Stability
	MaxMassIndex  int
	TurningPoints int
}

// FindStabilityBranch labels models up to and including the global maximum
// mass stable and the rest unstable. Only the first maximum is treated as a
// stability change; TurningPoints counts every extremum of M so callers can
// tell when that split is too coarse.
func FindStabilityBranch(models []*tov.Model) Branch {
	if len(models) == 0 {
		return Branch{MaxMassIndex: -1}
	}

	masses := make([]float64, len(models))
	for i, m := range models {
		masses[i] = m.Mass
	}
	imax := floats.MaxIdx(masses)

	labels := make([]Stability, len(models))
	for i := range labels {
		if i <= imax {
			labels[i] = Stable
		} else {
			labels[i] = Unstable
		}
	}

	return Branch{Labels: labels, MaxMassIndex: imax, TurningPoints: turningPoints(masses)}
}

// turningPoints counts sign changes of dM between consecutive models.
func turningPoints(masses []float64) int {
	n, prev := 0, 0.0
	for i := 1; i < len(masses); i++ {
		d := masses[i] - masses[i-1]
		if d == 0 {
			continue
		}
		if prev != 0 && (d > 0) != (prev > 0) {
			n++
		}
		prev = d
	}
	return n
}
