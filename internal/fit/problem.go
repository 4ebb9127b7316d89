package fit

import (
	"context"
	"errors"
	"math"

	"github.com/aquatox/debsim/internal/dataset"
	"github.com/aquatox/debsim/internal/deb"
	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/simulate"
)

var (
	// ErrNoFreeParams indicates a parameter set without fit flags.
	ErrNoFreeParams = errors.New("fit: no parameters are flagged free")

	// ErrNoData indicates a problem without observation tables.
	ErrNoData = errors.New("fit: no observation tables")
)

// badFit is the objective value for parameter vectors that cannot be
// simulated at all; penalties for out-of-bounds vectors stay below it
// so the simplex keeps a gradient back toward the feasible box.
const badFit = 1e12

// Problem is one calibration task. X0 is the initial state shared by
// all scenarios; the scenario identifier of each observed column is
// prepended per run.
type Problem struct {
	Params *deb.Set
	Global deb.Global
	Env    *forcing.Set
	Tables []*dataset.Table
	X0     []float64

	free []string
}

// Free lists the parameter names being calibrated.
func (p *Problem) Free() []string {
	if p.free == nil {
		p.free = p.Params.Free()
	}
	return p.free
}

func (p *Problem) validate() error {
	if len(p.Free()) == 0 {
		return ErrNoFreeParams
	}
	if len(p.Tables) == 0 {
		return ErrNoData
	}
	if err := p.Params.Validate(); err != nil {
		return err
	}
	return p.Global.Validate()
}

// encode maps the current free values into search space, log10 for the
// log-flagged parameters.
func (p *Problem) encode() []float64 {
	free := p.Free()
	x := make([]float64, len(free))
	for i, name := range free {
		par, _ := p.Params.Get(name)
		x[i] = par.Value
		if par.Log {
			x[i] = math.Log10(par.Value)
		}
	}
	return x
}

// bounds returns the box limits in search space.
func (p *Problem) bounds() (lo, hi []float64) {
	free := p.Free()
	lo = make([]float64, len(free))
	hi = make([]float64, len(free))
	for i, name := range free {
		par, _ := p.Params.Get(name)
		lo[i], hi[i] = par.Min, par.Max
		if par.Log {
			lo[i], hi[i] = math.Log10(par.Min), math.Log10(par.Max)
		}
	}
	return lo, hi
}

// decode writes a search-space vector into a copy of the parameter
// set.
func (p *Problem) decode(x []float64) *deb.Set {
	set := p.Params.Clone()
	for i, name := range p.Free() {
		par, _ := set.Get(name)
		v := x[i]
		if par.Log {
			v = math.Pow(10, v)
		}
		set.SetValue(name, v)
	}
	return set
}

// SSQ is the weighted sum of squared residuals over every table and
// scenario for the given search-space vector. Vectors outside the box
// are penalized without simulating; simulation failures score badFit.
func (p *Problem) SSQ(ctx context.Context, x []float64) float64 {
	lo, hi := p.bounds()
	penalty := 0.0
	for i := range x {
		if x[i] < lo[i] {
			d := lo[i] - x[i]
			penalty += 1e6 * (1 + d*d)
		} else if x[i] > hi[i] {
			d := x[i] - hi[i]
			penalty += 1e6 * (1 + d*d)
		}
	}
	if penalty > 0 {
		return penalty
	}

	set := p.decode(x)
	driver, err := simulate.New(set, p.Global, p.Env)
	if err != nil {
		return badFit
	}

	ssq := 0.0
	for _, tab := range p.Tables {
		for j, id := range tab.Scenarios {
			x0v := make([]float64, 0, len(p.X0)+1)
			x0v = append(x0v, id)
			x0v = append(x0v, p.X0...)

			res, err := driver.Run(ctx, tab.Times, x0v)
			if err != nil {
				return badFit
			}
			at := make(map[float64]int, len(res.Times))
			for i, t := range res.Times {
				at[t] = i
			}
			for i, t := range tab.Times {
				obs := tab.Values[i][j]
				if math.IsNaN(obs) {
					continue
				}
				r := res.States[at[t]][tab.StateCol] - obs
				ssq += tab.Weight * r * r
			}
		}
	}
	return ssq
}
