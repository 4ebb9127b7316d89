package solvers

import (
	"context"

	"github.com/aquatox/debsim/internal/ode"
)

// Bogacki-Shampine coefficients (RK23)
var (
	p2 = 1.0 / 2.0
	p3 = 3.0 / 4.0

	q1 = 2.0 / 9.0
	q2 = 1.0 / 3.0
	q3 = 4.0 / 9.0

	dq1 = q1 - 7.0/24.0
	dq2 = q2 - 1.0/4.0
	dq3 = q3 - 1.0/3.0
	dq4 = -1.0 / 8.0
)

// BogackiShampine is the explicit embedded RK23 pair. Lower order than
// [DormandPrince], so cheaper per step at loose tolerances and less
// wasteful on mildly stiff right-hand sides.
type BogackiShampine struct{}

func NewBogackiShampine() *BogackiShampine {
	return &BogackiShampine{}
}

func (b *BogackiShampine) Name() string { return "bs23" }

func (b *BogackiShampine) Solve(ctx context.Context, f ode.Func, ev ode.EventFunc, grid []float64, x0 ode.State, opt ode.Options) (*ode.Solution, error) {
	return drive(ctx, b, f, ev, grid, x0, opt)
}

func (b *BogackiShampine) order() int { return 2 }

func (b *BogackiShampine) step(f ode.Func, t float64, x, fx ode.State, h float64, opt ode.Options) stepResult {
	n := len(x)
	k1 := fx

	x2 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + h*p2*k1[i]
	}
	k2 := f(t+p2*h, x2)

	x3 := make(ode.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + h*p3*k2[i]
	}
	k3 := f(t+p3*h, x3)

	xNew := make(ode.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(q1*k1[i]+q2*k2[i]+q3*k3[i])
	}
	k4 := f(t+h, xNew)

	errEst := make(ode.State, n)
	for i := 0; i < n; i++ {
		errEst[i] = h * (dq1*k1[i] + dq2*k2[i] + dq3*k3[i] + dq4*k4[i])
	}

	return stepResult{x: xNew, err: wrms(errEst, x, xNew, opt), fEnd: k4, evals: 3}
}
