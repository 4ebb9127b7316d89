package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/aquatox/debsim/internal/deb"
	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/ode"
	"github.com/aquatox/debsim/internal/solvers"
)

// Result is the externally visible outcome of one simulation: the
// state trajectory at the requested times, every puberty crossing the
// solver located, and the work statistics.
type Result struct {
	Times  []float64
	States []ode.State
	Labels []string

	// Events holds every zero crossing of the puberty function in
	// increasing order; Puberty is the first one, +Inf when the
	// threshold is never reached.
	Events  []float64
	Puberty float64

	Solver string
	Stats  ode.Statistics
}

// Column extracts one state column of the trajectory.
func (r *Result) Column(i int) []float64 {
	out := make([]float64, len(r.States))
	for j, x := range r.States {
		out[j] = x[i]
	}
	return out
}

// Driver binds one parameter set, global configuration and forcing set
// and runs simulations against them. The bound values are never
// mutated, so a single Driver may serve concurrent Run calls.
type Driver struct {
	par *deb.Set
	glo deb.Global
	env *forcing.Set
}

// New validates the configuration once and returns a ready driver.
// env may be nil when no scenario carries an environmental driver.
func New(par *deb.Set, glo deb.Global, env *forcing.Set) (*Driver, error) {
	if err := glo.Validate(); err != nil {
		return nil, err
	}
	return &Driver{par: par.Clone(), glo: glo, env: env}, nil
}

func (d *Driver) Global() deb.Global { return d.glo }

func (d *Driver) Params() *deb.Set { return d.par }

// Run simulates one scenario. x0v carries the scenario identifier in
// its leading element; the remaining entries are the initial state in
// the layout's order, with the size entry given as physical length
// when the length mode is on.
//
// The trajectory is integrated once over a working grid that may be
// finer than the requested times (brood-pouch shift points, no-shrink
// densification), post-processed on that full grid, and only then
// subset to the requested times.
func (d *Driver) Run(ctx context.Context, times []float64, x0v []float64) (*Result, error) {
	if len(x0v) < 1+d.glo.StateDim() {
		return nil, fmt.Errorf("%w: initial vector has %d entries, scenario plus %d state entries needed",
			deb.ErrConfig, len(x0v), d.glo.StateDim())
	}
	if len(times) == 0 {
		return nil, ode.ErrBadGrid
	}

	scenario := x0v[0]
	x0 := ode.State(x0v[1:]).Clone()

	// The flux variant integrates on mass even when lengths are
	// reported; convert the initial entry once here.
	if d.glo.Kind == deb.Flux && d.glo.Len != deb.LenMass {
		lw := x0[d.glo.LocSize]
		x0[d.glo.LocSize] = d.glo.DV * math.Pow(lw*d.glo.DelM, 3)
	}

	requested := sortedUnique(times)
	grid := d.buildGrid(requested)

	model, err := deb.NewModel(d.par, d.glo, d.env.Lookup(scenario), x0)
	if err != nil {
		return nil, err
	}

	solver := solverFor(d.glo.Stiff)
	opt := toleranceFor(d.glo.Tol)

	sol, err := solver.Solve(ctx, model.Derivs, model.Event, grid, x0, opt)
	if err != nil {
		return nil, err
	}

	states := make([]ode.State, len(sol.States))
	for i, x := range sol.States {
		states[i] = x.Clone()
	}

	if d.glo.Kind == deb.Flux && d.glo.Len != deb.LenMass {
		massToLength(states, d.glo)
	}
	if d.glo.Len == deb.LenNoShrink {
		CumMax(states, d.glo.LocSize)
	}
	if d.glo.Tbp > 0 {
		remapBrood(grid, states, requested, d.glo)
	}

	res := &Result{
		Times:   requested,
		States:  subset(grid, states, requested),
		Labels:  d.glo.Labels(),
		Events:  sol.Events,
		Puberty: math.Inf(1),
		Solver:  solver.Name(),
		Stats:   sol.Stats,
	}
	if len(sol.Events) > 0 {
		res.Puberty = sol.Events[0]
	}
	return res, nil
}

// buildGrid turns the requested times into the integration grid:
// shifted copies of the post-delay times when the brood pouch is
// active, and densification to the grid floor in no-shrink mode so the
// running maximum is taken over a fine trajectory.
func (d *Driver) buildGrid(requested []float64) []float64 {
	grid := append([]float64(nil), requested...)

	// Shift points before the first requested time are dropped, so the
	// integration never starts earlier than the caller's grid.
	if tbp := d.glo.Tbp; tbp > 0 {
		for _, t := range requested {
			if t > tbp && t-tbp >= requested[0] {
				grid = append(grid, t-tbp)
			}
		}
	}

	if d.glo.Len == deb.LenNoShrink && len(requested) > 1 {
		floor := d.glo.GridFloor()
		if len(grid) < floor {
			fine := make([]float64, floor)
			floats.Span(fine, requested[0], requested[len(requested)-1])
			grid = append(grid, fine...)
		}
	}

	return sortedUnique(grid)
}

// solverFor maps the stiffness selector to a solver family. An
// unrecognized selector is a configuration slip, not a fatal error:
// warn and integrate with the default family.
func solverFor(s deb.Stiffness) ode.Solver {
	switch s {
	case deb.NonStiff:
		return solvers.NewDormandPrince()
	case deb.MildlyStiff:
		return solvers.NewBogackiShampine()
	case deb.Stiff:
		return solvers.NewRosenbrock()
	}
	slog.Warn("unknown solver family, falling back to dopri", "stiff", int(s))
	return solvers.NewDormandPrince()
}

func toleranceFor(tier int) ode.Options {
	if tier < 0 || tier > 2 {
		slog.Warn("unknown tolerance tier, falling back to tier 0", "tol", tier)
		tier = 0
	}
	return ode.ForTier(tier)
}

func massToLength(states []ode.State, glo deb.Global) {
	for _, x := range states {
		wv := x[glo.LocSize]
		if wv < 0 {
			wv = 0
		}
		x[glo.LocSize] = math.Cbrt(wv/glo.DV) / glo.DelM
	}
}

// CumMax replaces column col with its running maximum. Applying it a
// second time changes nothing.
func CumMax(states []ode.State, col int) {
	max := math.Inf(-1)
	for _, x := range states {
		if x[col] > max {
			max = x[col]
		}
		x[col] = max
	}
}

// remapBrood delays the reproduction column by the brood-pouch time:
// offspring observed at t were committed at t-Tbp, so the output at t
// is the raw accumulator at t-Tbp, and zero before the delay has
// passed or when t-Tbp falls before the grid origin. Growth and the
// other columns stay on the true clock.
func remapBrood(grid []float64, states []ode.State, requested []float64, glo deb.Global) {
	idx := make(map[float64]int, len(grid))
	for i, t := range grid {
		idx[t] = i
	}

	shifted := make(map[float64]float64, len(requested))
	for _, t := range requested {
		if t <= glo.Tbp {
			continue
		}
		if i, ok := idx[t-glo.Tbp]; ok {
			shifted[t] = states[i][glo.LocRepro]
		}
	}

	for i, t := range grid {
		states[i][glo.LocRepro] = shifted[t]
	}
}

func subset(grid []float64, states []ode.State, requested []float64) []ode.State {
	idx := make(map[float64]int, len(grid))
	for i, t := range grid {
		idx[t] = i
	}
	out := make([]ode.State, len(requested))
	for i, t := range requested {
		out[i] = states[idx[t]]
	}
	return out
}

func sortedUnique(times []float64) []float64 {
	out := append([]float64(nil), times...)
	sort.Float64s(out)
	n := 0
	for i, t := range out {
		if i == 0 || t != out[n-1] {
			out[n] = t
			n++
		}
	}
	return out[:n]
}
