package solvers

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aquatox/debsim/internal/ode"
)

// Rosenbrock(2,3) constants, Shampine form.
var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

// Rosenbrock is a semi-implicit Rosenbrock(2,3) method with a forward
// difference Jacobian refreshed every step. The implicit stages make it
// stable on stiff right-hand sides, such as sharply varying forcing,
// at the price of a linear solve per stage.
type Rosenbrock struct{}

func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{}
}

func (r *Rosenbrock) Name() string { return "rosenbrock" }

func (r *Rosenbrock) Solve(ctx context.Context, f ode.Func, ev ode.EventFunc, grid []float64, x0 ode.State, opt ode.Options) (*ode.Solution, error) {
	return drive(ctx, r, f, ev, grid, x0, opt)
}

func (r *Rosenbrock) order() int { return 2 }

func (r *Rosenbrock) step(f ode.Func, t float64, x, fx ode.State, h float64, opt ode.Options) stepResult {
	n := len(x)
	evals := 0
	reject := stepResult{err: math.Inf(1)}

	// Forward-difference Jacobian df/dx and time derivative df/dt.
	jac := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		dx := 1.5e-8 * math.Max(math.Abs(x[j]), 1.0)
		xp := x.Clone()
		xp[j] += dx
		fp := f(t, xp)
		evals++
		for i := 0; i < n; i++ {
			jac.Set(i, j, (fp[i]-fx[i])/dx)
		}
	}
	dt := 1.5e-8 * math.Max(math.Abs(t), 1.0)
	ft := f(t+dt, x)
	evals++
	tder := make(ode.State, n)
	for i := range tder {
		tder[i] = (ft[i] - fx[i]) / dt
	}

	// W = I - h*d*J, shared by all three stages.
	w := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -h * rosD * jac.At(i, j)
			if i == j {
				v += 1
			}
			w.Set(i, j, v)
		}
	}
	var lu mat.LU
	lu.Factorize(w)

	solve := func(b ode.State) (ode.State, bool) {
		var dst mat.VecDense
		if err := lu.SolveVecTo(&dst, false, mat.NewVecDense(n, b)); err != nil {
			return nil, false
		}
		out := make(ode.State, n)
		for i := range out {
			out[i] = dst.AtVec(i)
		}
		return out, true
	}

	b1 := make(ode.State, n)
	for i := range b1 {
		b1[i] = fx[i] + h*rosD*tder[i]
	}
	k1, ok := solve(b1)
	if !ok {
		reject.evals = evals
		return reject
	}

	xm := make(ode.State, n)
	for i := range xm {
		xm[i] = x[i] + 0.5*h*k1[i]
	}
	f1 := f(t+0.5*h, xm)
	evals++

	b2 := make(ode.State, n)
	for i := range b2 {
		b2[i] = f1[i] - k1[i]
	}
	k2, ok := solve(b2)
	if !ok {
		reject.evals = evals
		return reject
	}
	for i := range k2 {
		k2[i] += k1[i]
	}

	xNew := make(ode.State, n)
	for i := range xNew {
		xNew[i] = x[i] + h*k2[i]
	}
	f2 := f(t+h, xNew)
	evals++

	b3 := make(ode.State, n)
	for i := range b3 {
		b3[i] = f2[i] - rosE32*(k2[i]-f1[i]) - 2*(k1[i]-fx[i]) + h*rosD*tder[i]
	}
	k3, ok := solve(b3)
	if !ok {
		reject.evals = evals
		return reject
	}

	errEst := make(ode.State, n)
	for i := range errEst {
		errEst[i] = (h / 6) * (k1[i] - 2*k2[i] + k3[i])
	}

	return stepResult{x: xNew, err: wrms(errEst, x, xNew, opt), fEnd: f2, evals: evals}
}
