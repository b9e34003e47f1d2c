// Package ode provides the primitives shared by the integrators and the
// stellar structure solver.
//
// The package defines the fundamental types for integrating first-order
// ordinary differential equation systems in one independent variable:
//
//   - [State]: vector representing the dependent variables
//   - [System]: interface for ODE systems (dX/dr = f(X, r))
//   - [Stepper]: fixed-step integrator interface
//   - [Event]: scalar trigger whose zero crossing terminates an integration
//
// # Thread Safety
//
// State values are plain slices. Systems handed to the integrators must be
// safe for concurrent use if the same value is shared across goroutines;
// the integrators themselves keep no state between calls.
package ode
