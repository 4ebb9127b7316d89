package solvers

import (
	"context"
	"math"

	"github.com/aquatox/debsim/internal/ode"
)

// Step-size controller constants shared by all families.
const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0
)

// stepResult is one attempted step of width h from (t, x).
type stepResult struct {
	x ode.State // candidate state at t+h
	// err is the weighted RMS error norm; the step is accepted when <= 1.
	err   float64
	fEnd  ode.State // derivative at (t+h, x) when the family has it for free
	evals int
}

// stepper is the per-family single-step kernel. fx is f(t, x), carried
// over from the previous accepted step.
type stepper interface {
	order() int
	step(f ode.Func, t float64, x, fx ode.State, h float64, opt ode.Options) stepResult
}

// drive walks the grid with adaptive steps, clamping each step to land
// exactly on the next grid point, scanning for event sign changes on
// every accepted step.
func drive(ctx context.Context, st stepper, f ode.Func, ev ode.EventFunc, grid []float64, x0 ode.State, opt ode.Options) (*ode.Solution, error) {
	if err := checkGrid(grid); err != nil {
		return nil, err
	}
	if !x0.IsValid() {
		return nil, ode.ErrInvalidState
	}

	sol := &ode.Solution{
		Times:  append([]float64(nil), grid...),
		States: make([]ode.State, 0, len(grid)),
	}
	sol.States = append(sol.States, x0.Clone())
	if len(grid) == 1 {
		return sol, nil
	}

	span := grid[len(grid)-1] - grid[0]
	if span == 0 {
		for i := 1; i < len(grid); i++ {
			sol.States = append(sol.States, x0.Clone())
		}
		return sol, nil
	}

	h := opt.InitialStep
	if h <= 0 {
		h = span / 100
	}
	if opt.MaxStep > 0 && h > opt.MaxStep {
		h = opt.MaxStep
	}

	t := grid[0]
	x := x0.Clone()
	fx := f(t, x)
	stats := ode.Statistics{Evaluations: 1}

	g0 := 0.0
	if ev != nil {
		g0 = ev(t, x)
	}

	for gi := 1; gi < len(grid); gi++ {
		target := grid[gi]
		for t < target {
			select {
			case <-ctx.Done():
				return nil, &ode.StepError{Time: t, Step: stats.Steps, Wrapped: ode.ErrCanceled}
			default:
			}
			if stats.Steps+stats.Rejected >= opt.MaxSteps {
				return nil, &ode.StepError{Time: t, Step: stats.Steps, Wrapped: ode.ErrMaxSteps}
			}
			// Duplicate grid points collapse to a state copy.
			if target-t <= opt.MinStep {
				t = target
				break
			}

			hTry := h
			clamped := false
			if t+hTry >= target {
				hTry = target - t
				clamped = true
			}

			res := st.step(f, t, x, fx, hTry, opt)
			stats.Evaluations += res.evals

			if !(res.err <= 1) {
				stats.Rejected++
				h = hTry * shrinkFactor(res.err, st.order())
				if h < opt.MinStep {
					return nil, &ode.StepError{Time: t, Step: stats.Steps, Wrapped: ode.ErrStepUnderflow}
				}
				continue
			}

			stats.Steps++
			if !res.x.IsValid() {
				return nil, &ode.StepError{Time: t, Step: stats.Steps, Wrapped: ode.ErrInvalidState}
			}
			fEnd := res.fEnd
			if fEnd == nil {
				fEnd = f(t+hTry, res.x)
				stats.Evaluations++
			}
			if ev != nil {
				g1 := ev(t+hTry, res.x)
				if isCrossing(g0, g1) {
					sol.Events = append(sol.Events, locate(ev, t, hTry, x, res.x, fx, fEnd, g0, g1))
				}
				g0 = g1
			}
			if clamped {
				t = target
			} else {
				t += hTry
			}
			x = res.x
			fx = fEnd
			h = hTry * growFactor(res.err, st.order())
			if opt.MaxStep > 0 && h > opt.MaxStep {
				h = opt.MaxStep
			}
		}
		sol.States = append(sol.States, x.Clone())
	}

	sol.Stats = stats
	return sol, nil
}

func checkGrid(grid []float64) error {
	if len(grid) == 0 {
		return ode.ErrBadGrid
	}
	for i, v := range grid {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ode.ErrBadGrid
		}
		if i > 0 && v < grid[i-1] {
			return ode.ErrBadGrid
		}
	}
	return nil
}

func shrinkFactor(err float64, order int) float64 {
	if math.IsNaN(err) || math.IsInf(err, 0) {
		return minScale
	}
	return math.Max(minScale, safety*math.Pow(err, -1.0/float64(order+1)))
}

func growFactor(err float64, order int) float64 {
	if err <= 0 {
		return maxScale
	}
	return math.Min(maxScale, safety*math.Pow(err, -1.0/float64(order+1)))
}

// wrms is the weighted RMS of the error estimate against the
// per-component tolerance atol + rtol*max(|x0|, |x1|).
func wrms(errEst, x0, x1 ode.State, opt ode.Options) float64 {
	sum := 0.0
	for i := range errEst {
		w := opt.AbsTol + opt.RelTol*math.Max(math.Abs(x0[i]), math.Abs(x1[i]))
		r := errEst[i] / w
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

func isCrossing(g0, g1 float64) bool {
	if g0 == 0 {
		return false
	}
	if g1 == 0 {
		return true
	}
	return (g0 < 0) != (g1 < 0)
}

// locate refines a sign change inside [t, t+h] by bisection on the
// cubic Hermite interpolant of the accepted step.
func locate(ev ode.EventFunc, t, h float64, x0, x1, f0, f1 ode.State, g0, g1 float64) float64 {
	if g1 == 0 {
		return t + h
	}
	a, b := 0.0, 1.0
	ga := g0
	for i := 0; i < 50; i++ {
		m := 0.5 * (a + b)
		gm := ev(t+m*h, hermite(x0, x1, f0, f1, h, m))
		if gm == 0 {
			return t + m*h
		}
		if (ga < 0) != (gm < 0) {
			b = m
		} else {
			a = m
			ga = gm
		}
	}
	return t + 0.5*(a+b)*h
}

// hermite evaluates the cubic interpolant through (x0, f0) and (x1, f1)
// at fraction theta of the step.
func hermite(x0, x1, f0, f1 ode.State, h, theta float64) ode.State {
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	out := make(ode.State, len(x0))
	for i := range out {
		out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
	}
	return out
}
