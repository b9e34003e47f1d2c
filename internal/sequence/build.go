package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/metrics"
	"github.com/san-kum/tovsim/internal/tov"
	"golang.org/x/sync/errgroup"
)

// Build solves one model per point on a pool of cfg.Workers goroutines and
// analyzes the result. Failed solves are logged and listed in Failures; the
// surviving models keep the input order.
func Build(ctx context.Context, e eos.EOS, points []Point, cfg Config) (*Sequence, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	solverCfg := cfg.Solver
	if solverCfg.Logger == nil {
		solverCfg.Logger = logger
	}
	solver := tov.NewSolver(solverCfg)

	models := make([]*tov.Model, len(points))
	errs := make([]error, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pt := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			m, err := solver.Solve(gctx, e, pt.Pressure)
			metrics.ObserveSolve(m, err, start)
			models[i], errs[i] = m, err
			// one bad star does not stop the sweep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seq := &Sequence{EOS: e.Name(), MaxMassIndex: -1}
	for i, pt := range points {
		if errs[i] != nil {
			logger.Warn("skipping sequence member",
				"index", i,
				"central_density", pt.Density,
				"central_pressure", pt.Pressure,
				"err", errs[i],
			)
			seq.Failures = append(seq.Failures, Failure{Index: i, Density: pt.Density, Pressure: pt.Pressure, Err: errs[i]})
			continue
		}
		seq.Models = append(seq.Models, models[i])
		seq.Points = append(seq.Points, pt)
	}
	metrics.SequenceModels.Set(float64(len(seq.Models)))

	if len(seq.Models) == 0 {
		return seq, fmt.Errorf("%w: all %d solves failed", ErrNoModels, len(points))
	}

	threshold := cfg.CausalityThreshold
	if threshold <= 0 {
		threshold = DefaultCausalityThreshold
	}
	seq.Causality = make([]Causality, len(seq.Models))
	for i, m := range seq.Models {
		seq.Causality[i] = CheckCausality(m, threshold)
	}

	branch := FindStabilityBranch(seq.Models)
	seq.Stability = branch.Labels
	seq.MaxMassIndex = branch.MaxMassIndex
	seq.TurningPoints = branch.TurningPoints
	if branch.TurningPoints > 1 {
		logger.Warn("mass curve has several turning points, only the global maximum splits stability",
			"eos", seq.EOS,
			"turning_points", branch.TurningPoints,
		)
	}

	heaviest := seq.MaxMass()
	logger.Info("sequence built",
		"eos", seq.EOS,
		"models", len(seq.Models),
		"failures", len(seq.Failures),
		"max_mass", heaviest.Mass,
		"max_mass_radius", heaviest.Radius,
	)
	return seq, nil
}
