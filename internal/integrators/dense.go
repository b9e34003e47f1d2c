package integrators

import (
	"math"

	"github.com/san-kum/tovsim/internal/ode"
)

// dense is the fourth-order continuous extension of one accepted
// Dormand-Prince step on [r0, r0+h].
type dense struct {
	r0, h float64
	c     [5]ode.State
}

func newDense(x0 ode.State, tr trial, r0, h float64) *dense {
	n := len(x0)
	d := &dense{r0: r0, h: h}
	for j := range d.c {
		d.c[j] = make(ode.State, n)
	}
	k := tr.k
	for i := 0; i < n; i++ {
		diff := tr.x1[i] - x0[i]
		bspl := h*k[0][i] - diff
		d.c[0][i] = x0[i]
		d.c[1][i] = diff
		d.c[2][i] = bspl
		d.c[3][i] = diff - h*k[6][i] - bspl
		d.c[4][i] = h * (d1*k[0][i] + d3*k[2][i] + d4*k[3][i] + d5*k[4][i] + d6*k[5][i] + d7*k[6][i])
	}
	return d
}

// At evaluates the interpolant at radius r inside the step.
func (d *dense) At(r float64) ode.State {
	theta := (r - d.r0) / d.h
	theta1 := 1 - theta
	out := make(ode.State, len(d.c[0]))
	for i := range out {
		out[i] = d.c[0][i] + theta*(d.c[1][i]+theta1*(d.c[2][i]+theta*(d.c[3][i]+theta1*d.c[4][i])))
	}
	return out
}

const (
	rootMaxIter = 200
	rootRelTol  = 1e-15
)

// locateRoot brackets the downward crossing of g in [a, b] where g(a) > 0 and
// g(b) <= 0, using Illinois-modified regula falsi on the interpolant with a
// bisection fallback. The returned radius always satisfies g <= 0 up to the
// bracket width.
func locateRoot(g ode.Event, d *dense, a, b float64) float64 {
	fa := g(d.At(a), a)
	fb := g(d.At(b), b)
	if fb == 0 {
		return b
	}
	side := 0
	for i := 0; i < rootMaxIter; i++ {
		if b-a <= rootRelTol*math.Max(1, math.Abs(b)) {
			break
		}
		m := (a*fb - b*fa) / (fb - fa)
		if !(m > a && m < b) || i%8 == 7 {
			m = 0.5 * (a + b)
		}
		fm := g(d.At(m), m)
		switch {
		case fm == 0:
			return m
		case fm > 0:
			a, fa = m, fm
			if side == -1 {
				fb *= 0.5
			}
			side = -1
		default:
			b, fb = m, fm
			if side == 1 {
				fa *= 0.5
			}
			side = 1
		}
	}
	return b
}
