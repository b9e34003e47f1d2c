package sequence

import (
	"github.com/san-kum/tovsim/internal/eos"
	"gonum.org/v1/gonum/floats"
)

// LinearDensities returns n evenly spaced densities from lo to hi.
func LinearDensities(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// LogDensities returns n logarithmically spaced densities from lo to hi.
// Both ends must be positive.
func LogDensities(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0 || !(lo > 0) || !(hi > 0):
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}

func PressuresFromDensities(e eos.EOS, rhos []float64) []Point {
	pts := make([]Point, len(rhos))
	for i, rho := range rhos {
		pts[i] = Point{Density: rho, Pressure: e.PressureFromDensity(rho)}
	}
	return pts
}
