package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/tovsim/internal/ode"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// continuous extension (Hairer & Wanner, dopri5 contd5)
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// trial is one Dormand-Prince step from (r, x) with size h. k7 is the
// derivative at the new point, reused as k1 of the following step.
type trial struct {
	x1      ode.State
	k       [7]ode.State
	errNorm float64
}

func (r *RK45) attempt(sys ode.System, x, k1 ode.State, t, h, rtol, atol float64) trial {
	n := len(x)
	var tr trial
	tr.k[0] = k1

	stage := func(coef ...float64) ode.State {
		xs := make(ode.State, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, c := range coef {
				sum += c * tr.k[j][i]
			}
			xs[i] = x[i] + h*sum
		}
		return xs
	}

	tr.k[1] = sys.Derive(stage(b21), t+a2*h)
	tr.k[2] = sys.Derive(stage(b31, b32), t+a3*h)
	tr.k[3] = sys.Derive(stage(b41, b42, b43), t+a4*h)
	tr.k[4] = sys.Derive(stage(b51, b52, b53, b54), t+a5*h)
	tr.k[5] = sys.Derive(stage(b61, b62, b63, b64, b65), t+h)

	tr.x1 = stage(c1, 0, c3, c4, c5, c6)
	tr.k[6] = sys.Derive(tr.x1, t+h)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*tr.k[0][i] + dc3*tr.k[2][i] + dc4*tr.k[3][i] + dc5*tr.k[4][i] + dc6*tr.k[5][i] + dc7*tr.k[6][i])
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(tr.x1[i]))
		sum += (errEst / scale) * (errEst / scale)
	}
	if n > 0 {
		tr.errNorm = math.Sqrt(sum / float64(n))
	}
	return tr
}

// Step advances x by one fifth-order step of size h without error control.
func (r *RK45) Step(sys ode.System, x ode.State, t, h float64) ode.State {
	return r.attempt(sys, x, sys.Derive(x, t), t, h, 1, 1).x1
}

func (r *RK45) scale(errNorm float64, rejected bool) float64 {
	if errNorm > 1 {
		return math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	}
	if errNorm == 0 {
		if rejected {
			return 1
		}
		return r.maxScale
	}
	s := math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	if rejected {
		s = math.Min(s, 1)
	}
	return s
}

// Integrate advances sys from (r0, x0) towards rEnd with error control,
// recording every accepted step. When event is non-nil the integration
// terminates at its first downward zero crossing, located on the dense
// output of the step that brackets it.
func (r *RK45) Integrate(ctx context.Context, sys ode.System, x0 ode.State, r0, rEnd float64, event ode.Event, cfg ode.Config) (*ode.Solution, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d", ode.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return nil, &ode.StepError{Radius: r0, State: x0.Clone(), Wrapped: ode.ErrInvalidState}
	}

	sol := &ode.Solution{
		Radii:  []float64{r0},
		Points: []ode.State{x0.Clone()},
	}

	x := x0.Clone()
	t := r0
	if event != nil {
		if g0 := event(x, t); g0 <= 0 {
			sol.Terminated = true
			sol.EventRadius = t
			sol.EventState = x.Clone()
			return sol, nil
		}
	}

	maxStep := cfg.MaxStep
	if maxStep <= 0 {
		maxStep = rEnd - r0
	}
	h := math.Min(cfg.InitialStep, maxStep)
	k1 := sys.Derive(x, t)
	sol.Evals++
	rejected := false

	for t < rEnd {
		select {
		case <-ctx.Done():
			return sol, ctx.Err()
		default:
		}

		if sol.Steps >= cfg.MaxSteps {
			return sol, &ode.StepError{Step: sol.Steps, Radius: t, H: h, State: x.Clone(), Wrapped: ode.ErrMaxSteps}
		}
		if h < cfg.MinStep {
			return sol, &ode.StepError{Step: sol.Steps, Radius: t, H: h, State: x.Clone(), Wrapped: ode.ErrStepTooSmall}
		}

		h = math.Min(h, math.Min(maxStep, rEnd-t))
		tr := r.attempt(sys, x, k1, t, h, cfg.RelTol, cfg.AbsTol)
		sol.Evals += 6

		if !tr.x1.IsValid() || math.IsNaN(tr.errNorm) || math.IsInf(tr.errNorm, 0) {
			sol.Rejected++
			rejected = true
			h *= r.minScale
			if h < cfg.MinStep {
				return sol, &ode.StepError{Step: sol.Steps, Radius: t, H: h, State: x.Clone(), Wrapped: ode.ErrInvalidState}
			}
			continue
		}

		if tr.errNorm > 1 {
			sol.Rejected++
			rejected = true
			h *= r.scale(tr.errNorm, true)
			continue
		}

		sol.Steps++
		tNew := t + h
		if tNew == t {
			return sol, &ode.StepError{Step: sol.Steps, Radius: t, H: h, State: x.Clone(), Wrapped: ode.ErrStepTooSmall}
		}

		if event != nil {
			gNew := event(tr.x1, tNew)
			if gNew <= 0 {
				d := newDense(x, tr, t, h)
				root := locateRoot(event, d, t, tNew)
				sol.Terminated = true
				sol.EventRadius = root
				sol.EventState = d.At(root)
				return sol, nil
			}
		}

		sol.Radii = append(sol.Radii, tNew)
		sol.Points = append(sol.Points, tr.x1)

		x = tr.x1
		k1 = tr.k[6]
		t = tNew
		h *= r.scale(tr.errNorm, rejected)
		rejected = false
	}

	if event != nil {
		return sol, &ode.StepError{Step: sol.Steps, Radius: t, H: h, State: x.Clone(), Wrapped: ode.ErrNoEvent}
	}
	return sol, nil
}
