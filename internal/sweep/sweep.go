// Package sweep runs the simulation across a range of one parameter
// and records scalar ecological responses per value, for dose-response
// and food-level curves.
package sweep

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aquatox/debsim/internal/deb"
	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/simulate"
)

// Point is the response of one run in a sweep.
type Point struct {
	Value        float64
	FinalSize    float64
	PeakSize     float64
	Reproduction float64
	Survival     float64
	PubertyDay   float64
}

// Request describes a sweep: vary the named parameter from From to To
// in Steps runs, simulating scenario x0v over the times grid each
// time.
type Request struct {
	Param string
	From  float64
	To    float64
	Steps int

	Times []float64
	X0    []float64
}

// Run executes the sweep sequentially; every value gets a fresh
// parameter set, so the input set is never mutated.
func Run(ctx context.Context, par *deb.Set, glo deb.Global, env *forcing.Set, req Request) ([]Point, error) {
	if req.Steps < 2 {
		return nil, fmt.Errorf("sweep: need at least 2 steps, got %d", req.Steps)
	}
	if _, ok := par.Get(req.Param); !ok {
		return nil, fmt.Errorf("sweep: unknown parameter: %s", req.Param)
	}

	axis := make([]float64, req.Steps)
	floats.Span(axis, req.From, req.To)

	out := make([]Point, 0, req.Steps)
	for _, v := range axis {
		set := par.Clone()
		if err := set.SetValue(req.Param, v); err != nil {
			return nil, err
		}
		driver, err := simulate.New(set, glo, env)
		if err != nil {
			return nil, err
		}
		res, err := driver.Run(ctx, req.Times, req.X0)
		if err != nil {
			return nil, fmt.Errorf("sweep: %s=%g: %w", req.Param, v, err)
		}

		sum := simulate.Summarize(res, glo)
		p := Point{
			Value:        v,
			FinalSize:    sum["final_size"],
			PeakSize:     sum["peak_size"],
			Reproduction: sum["reproduction"],
			Survival:     math.NaN(),
			PubertyDay:   res.Puberty,
		}
		if s, ok := sum["survival"]; ok {
			p.Survival = s
		}
		out = append(out, p)
	}
	return out, nil
}

// Column extracts one response across the sweep for plotting.
func Column(points []Point, pick func(Point) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = pick(p)
	}
	return out
}
