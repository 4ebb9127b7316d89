package ode

import (
	"context"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Func is the right-hand side of dX/dt = f(t, X). Implementations must
// be pure in t: solvers probe forward and backward inside a step.
type Func func(t float64, x State) State

// EventFunc maps (t, X) to a scalar whose zero crossings are located
// and recorded during integration.
type EventFunc func(t float64, x State) float64

// Options bounds the adaptive step-size control.
type Options struct {
	RelTol float64
	AbsTol float64

	// InitialStep of 0 picks a fraction of the grid span.
	InitialStep float64
	// MinStep below which the controller gives up with ErrStepUnderflow.
	MinStep float64
	// MaxStep of 0 leaves the step unbounded (grid points still clamp it).
	MaxStep float64
	// MaxSteps bounds accepted plus rejected attempts.
	MaxSteps int
}

func DefaultOptions() Options {
	return Options{
		RelTol:   1e-4,
		AbsTol:   1e-7,
		MinStep:  1e-10,
		MaxSteps: 500000,
	}
}

// ForTier maps an accuracy tier to tolerance options: 0 is the default
// pair (1e-4, 1e-7), 1 tightens to (1e-5, 1e-8), 2 to (1e-6, 1e-9).
// Out-of-range tiers fall back to tier 0.
func ForTier(tier int) Options {
	opt := DefaultOptions()
	switch tier {
	case 1:
		opt.RelTol, opt.AbsTol = 1e-5, 1e-8
	case 2:
		opt.RelTol, opt.AbsTol = 1e-6, 1e-9
	}
	return opt
}

// Statistics counts the work done by a single Solve call.
type Statistics struct {
	Steps       int
	Rejected    int
	Evaluations int
}

// Solution holds the integrated trajectory on the requested grid.
type Solution struct {
	Times  []float64
	States []State
	// Events lists every located zero crossing of the event function,
	// in increasing time order.
	Events []float64
	Stats  Statistics
}

// Solver integrates f from the first to the last grid point, reporting
// the state at every grid point. A nil event function disables the
// crossing scan.
type Solver interface {
	Name() string
	Solve(ctx context.Context, f Func, ev EventFunc, grid []float64, x0 State, opt Options) (*Solution, error)
}
