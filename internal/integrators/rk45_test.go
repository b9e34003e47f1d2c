package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/tovsim/internal/ode"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x ode.State, t float64) ode.State {
	return ode.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x ode.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// exponential growth never crosses zero
type growth struct{}

func (g *growth) StateDim() int                           { return 1 }
func (g *growth) Derive(x ode.State, t float64) ode.State { return ode.State{x[0]} }

func TestRK45_Step(t *testing.T) {
	dyn := &harmonicOscillator{}
	x := Run(NewRK45(), dyn, ode.State{1.0, 0.0}, 0, 0.01, 1000)

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
	if drift := math.Abs(dyn.Energy(x) - 0.5); drift > 1e-8 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestSteppers(t *testing.T) {
	tests := []struct {
		name    string
		stepper ode.Stepper
		tol     float64
	}{
		{"rk4", NewRK4(), 1e-8},
		{"rk45", NewRK45(), 1e-10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0 := ode.State{1.0, 0.0}
			x := Run(tt.stepper, &harmonicOscillator{}, x0, 0, 0.01, 100)

			if d := math.Abs(x[0] - math.Cos(1)); d > tt.tol {
				t.Errorf("position error %e exceeds %e", d, tt.tol)
			}
			if d := math.Abs(x[1] + math.Sin(1)); d > tt.tol {
				t.Errorf("velocity error %e exceeds %e", d, tt.tol)
			}
			if x0[0] != 1.0 || x0[1] != 0 {
				t.Error("Run modified the initial state")
			}
		})
	}
}

func TestRK45_VsRK4(t *testing.T) {
	dyn := &harmonicOscillator{}
	x0 := ode.State{1.0, 0.0}

	x4 := Run(NewRK4(), dyn, x0, 0, 0.001, 1000)

	sol, err := NewRK45().Integrate(context.Background(), dyn, x0, 0, 1.0, nil, ode.DefaultConfig())
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}
	rEnd, x45 := sol.Last()
	if math.Abs(rEnd-1.0) > 1e-12 {
		t.Fatalf("integration ended at %v, want 1", rEnd)
	}
	if d := x45.Sub(x4).Norm(); d > 1e-6 {
		t.Errorf("RK45 and RK4 disagree by %e", d)
	}
	if math.Abs(x45[0]-math.Cos(1)) > 1e-6 {
		t.Errorf("x(1) = %.10f, want %.10f", x45[0], math.Cos(1))
	}
}

func TestRK45_EventLocation(t *testing.T) {
	dyn := &harmonicOscillator{}
	cfg := ode.DefaultConfig()
	cfg.InitialStep = 0.1
	cfg.RelTol, cfg.AbsTol = 1e-11, 1e-11

	position := func(x ode.State, r float64) float64 { return x[0] }
	sol, err := NewRK45().Integrate(context.Background(), dyn, ode.State{1, 0}, 0, 10, position, cfg)
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}
	if !sol.Terminated {
		t.Fatal("event did not terminate integration")
	}
	if math.Abs(sol.EventRadius-math.Pi/2) > 1e-8 {
		t.Errorf("event at %.12f, want %.12f", sol.EventRadius, math.Pi/2)
	}
	if math.Abs(sol.EventState[1]+1) > 1e-8 {
		t.Errorf("velocity at event = %v, want -1", sol.EventState[1])
	}
	for i := 1; i < sol.Len(); i++ {
		if sol.Radii[i] <= sol.Radii[i-1] {
			t.Fatalf("radii not increasing at %d", i)
		}
		if sol.Points[i][0] <= 0 {
			t.Fatalf("recorded point %d is past the event", i)
		}
	}
}

func TestRK45_EventAlreadyFired(t *testing.T) {
	position := func(x ode.State, r float64) float64 { return x[0] }
	sol, err := NewRK45().Integrate(context.Background(), &harmonicOscillator{}, ode.State{-1, 0}, 0, 10, position, ode.DefaultConfig())
	if err != nil {
		t.Fatalf("Integrate failed: %v", err)
	}
	if !sol.Terminated || sol.EventRadius != 0 {
		t.Errorf("expected immediate termination at 0, got terminated=%v r=%v", sol.Terminated, sol.EventRadius)
	}
}

func TestRK45_Failures(t *testing.T) {
	value := func(x ode.State, r float64) float64 { return x[0] }

	tests := []struct {
		name string
		cfg  func(ode.Config) ode.Config
		want error
	}{
		{"no event", func(c ode.Config) ode.Config { return c }, ode.ErrNoEvent},
		{"step budget", func(c ode.Config) ode.Config { c.MaxSteps = 3; return c }, ode.ErrMaxSteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRK45().Integrate(context.Background(), &growth{}, ode.State{1}, 0, 5, value, tt.cfg(ode.DefaultConfig()))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var stepErr *ode.StepError
			if !errors.As(err, &stepErr) {
				t.Fatalf("error %T is not a StepError", err)
			}
		})
	}
}

func TestRK45_InvalidInput(t *testing.T) {
	integ := NewRK45()

	if _, err := integ.Integrate(context.Background(), &harmonicOscillator{}, ode.State{1}, 0, 1, nil, ode.DefaultConfig()); !errors.Is(err, ode.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}

	bad := ode.DefaultConfig()
	bad.RelTol = 0
	if _, err := integ.Integrate(context.Background(), &harmonicOscillator{}, ode.State{1, 0}, 0, 1, nil, bad); err == nil {
		t.Error("expected config error, got nil")
	}

	if _, err := integ.Integrate(context.Background(), &harmonicOscillator{}, ode.State{math.NaN(), 0}, 0, 1, nil, ode.DefaultConfig()); !errors.Is(err, ode.ErrInvalidState) {
		t.Errorf("expected invalid state, got %v", err)
	}
}

func TestRK45_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRK45().Integrate(ctx, &harmonicOscillator{}, ode.State{1, 0}, 0, 1, nil, ode.DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDenseOutput(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK45()
	x0 := ode.State{1, 0}
	h := 0.05

	tr := integ.attempt(dyn, x0, dyn.Derive(x0, 0), 0, h, 1e-10, 1e-10)
	d := newDense(x0, tr, 0, h)

	for _, r := range []float64{0, 0.01, 0.025, 0.04, h} {
		got := d.At(r)
		if math.Abs(got[0]-math.Cos(r)) > 1e-8 || math.Abs(got[1]+math.Sin(r)) > 1e-8 {
			t.Errorf("dense(%v) = %v, want [%v %v]", r, got, math.Cos(r), -math.Sin(r))
		}
	}
	if end := d.At(h); end.Sub(tr.x1).Norm() > 1e-14 {
		t.Errorf("dense output does not reproduce the step endpoint: %v vs %v", end, tr.x1)
	}
}
