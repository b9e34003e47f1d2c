package integrators

import "github.com/san-kum/tovsim/internal/ode"

var (
	_ ode.Stepper = (*RK4)(nil)
	_ ode.Stepper = (*RK45)(nil)
)

// Run takes n fixed steps of size h from (t0, x0) and returns the final
// state. x0 is left untouched.
func Run(s ode.Stepper, sys ode.System, x0 ode.State, t0, h float64, n int) ode.State {
	x := x0.Clone()
	for i := 0; i < n; i++ {
		x = s.Step(sys, x, t0+float64(i)*h, h)
	}
	return x
}
