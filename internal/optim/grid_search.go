package optim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
)

var ErrBadBracket = errors.New("optim: density bracket must satisfy 0 < lo < hi")

// GridSearch locates the maximum-mass star by solving a grid of central
// densities, then zooming into the neighbors of the heaviest grid point.
type GridSearch struct {
	points int
	rounds int
	relTol float64
}

func NewGridSearch(points, rounds int, relTol float64) *GridSearch {
	if points < 3 {
		points = 3
	}
	if rounds < 1 {
		rounds = 1
	}
	return &GridSearch{points: points, rounds: rounds, relTol: relTol}
}

type Result struct {
	Density     float64
	Model       *tov.Model
	Rounds      int
	Evaluations int
}

// MaxMass searches [lo, hi]. A maximum on the bracket edge is reported as
// is; the search cannot tell it from a maximum outside the bracket.
func (g *GridSearch) MaxMass(ctx context.Context, e eos.EOS, lo, hi float64, cfg sequence.Config) (*Result, error) {
	if !(lo > 0) || !(hi > lo) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrBadBracket, lo, hi)
	}

	best := &Result{}
	for round := 1; round <= g.rounds; round++ {
		rhos := sequence.LinearDensities(lo, hi, g.points)
		seq, err := sequence.Build(ctx, e, sequence.PressuresFromDensities(e, rhos), cfg)
		if err != nil {
			return nil, fmt.Errorf("optim: round %d on [%g, %g]: %w", round, lo, hi, err)
		}
		best.Rounds = round
		best.Evaluations += len(rhos)

		i := seq.MaxMassIndex
		if m := seq.Models[i]; best.Model == nil || m.Mass > best.Model.Mass {
			best.Model = m
			best.Density = seq.Points[i].Density
		}

		if i > 0 {
			lo = seq.Points[i-1].Density
		}
		if i < seq.Len()-1 {
			hi = seq.Points[i+1].Density
		}
		if hi-lo <= g.relTol*best.Density {
			break
		}
	}
	return best, nil
}
