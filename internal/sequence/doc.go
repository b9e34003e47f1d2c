// Package sequence builds and analyzes families of stellar models that share
// one equation of state.
//
//   - [Build]: solve every central density on a bounded worker pool
//   - [CheckCausality]: sound speed c_s^2 = dP/d(epsilon) along a profile
//   - [FindStabilityBranch]: split a mass curve at its global maximum
//   - [LinearDensities], [LogDensities], [PressuresFromDensities]: sweep points
//
// # Mass-radius curve
//
//	rhos := sequence.LogDensities(1e-4, 5e-3, 10)
//	seq, err := sequence.Build(ctx, e, sequence.PressuresFromDensities(e, rhos), sequence.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	best := seq.MaxMass()
package sequence
