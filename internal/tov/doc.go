// Package tov integrates the Tolman-Oppenheimer-Volkoff equations for a
// static, spherically symmetric star.
//
// The state vector is (P, m, nu, m_b): pressure, enclosed gravitational
// mass, metric potential and enclosed baryonic mass, in geometric units.
// [Integrand] supplies dX/dr; [Seed] supplies the series expansion used to
// start off the singular origin; [Solver] drives the adaptive integration to
// the surface and returns a [Model].
//
//	e, _ := eos.NewPolytrope(100, 2)
//	model, err := tov.NewSolver(tov.DefaultConfig()).Solve(ctx, e, 1e-3)
//	if err != nil {
//	    var serr *tov.SolveError
//	    errors.As(err, &serr) // serr.Stage names what failed
//	}
//
// A Solver is safe for concurrent use; each Solve call is independent.
package tov
