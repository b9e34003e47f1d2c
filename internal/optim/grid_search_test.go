package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/sequence"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestMaxMassPolytrope(t *testing.T) {
	e, _ := eos.NewPolytrope(100, 2)
	cfg := sequence.DefaultConfig()
	cfg.Workers = 4

	res, err := NewGridSearch(7, 4, 1e-4).MaxMass(context.Background(), e, 1e-3, 6e-3, cfg)
	if err != nil {
		t.Fatalf("MaxMass: %v", err)
	}
	if !scalar.EqualWithinRel(res.Density, 3.2e-3, 0.1) {
		t.Errorf("max-mass density %g, want about 3.2e-3", res.Density)
	}
	if !scalar.EqualWithinRel(res.Model.Mass, 1.637, 0.02) {
		t.Errorf("max mass %g, want about 1.637", res.Model.Mass)
	}
	if res.Evaluations != 7*res.Rounds {
		t.Errorf("evaluations %d for %d rounds", res.Evaluations, res.Rounds)
	}

	coarse, err := sequence.Build(context.Background(), e,
		sequence.PressuresFromDensities(e, sequence.LinearDensities(1e-3, 6e-3, 7)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Model.Mass < coarse.MaxMass().Mass {
		t.Errorf("refined mass %g below coarse grid maximum %g", res.Model.Mass, coarse.MaxMass().Mass)
	}
}

func TestMaxMassOnEdge(t *testing.T) {
	e, _ := eos.NewPolytrope(100, 2)

	res, err := NewGridSearch(5, 3, 1e-4).MaxMass(context.Background(), e, 2e-4, 8e-4, sequence.DefaultConfig())
	if err != nil {
		t.Fatalf("MaxMass: %v", err)
	}
	if !scalar.EqualWithinRel(res.Density, 8e-4, 1e-12) {
		t.Errorf("rising branch maximum at %g, want the upper edge", res.Density)
	}
}

func TestMaxMassBadBracket(t *testing.T) {
	e, _ := eos.NewPolytrope(100, 2)
	g := NewGridSearch(5, 2, 1e-3)

	for _, b := range [][2]float64{{0, 1e-3}, {2e-3, 1e-3}, {1e-3, 1e-3}} {
		if _, err := g.MaxMass(context.Background(), e, b[0], b[1], sequence.DefaultConfig()); !errors.Is(err, ErrBadBracket) {
			t.Errorf("bracket %v: expected ErrBadBracket, got %v", b, err)
		}
	}
}
