package fit

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// Options bounds the calibration work.
type Options struct {
	// GridPoints per free parameter for the coarse seeding stage;
	// values below 2 skip it.
	GridPoints int
	// MaxIters and MaxEvals cap the Nelder-Mead stage; 0 leaves the
	// respective budget open.
	MaxIters int
	MaxEvals int
}

func DefaultOptions() Options {
	return Options{GridPoints: 5, MaxIters: 500, MaxEvals: 2000}
}

// Calibrate minimizes the problem's weighted sum of squares over its
// free parameters and reports the start and fitted values.
func Calibrate(ctx context.Context, prob *Problem, opts Options) (*Report, error) {
	if err := prob.validate(); err != nil {
		return nil, err
	}
	free := prob.Free()
	evals := 0
	eval := func(x []float64) float64 {
		evals++
		return prob.SSQ(ctx, x)
	}

	start := prob.encode()
	ssq0 := eval(start)
	slog.Info("calibration started", "free", free, "ssq0", ssq0)

	x0 := start
	if opts.GridPoints > 1 {
		lo, hi := prob.bounds()
		gx, gv := gridSearch(ctx, eval, lo, hi, opts.GridPoints)
		if gx != nil && gv < ssq0 {
			x0 = gx
		}
		slog.Debug("grid stage done", "best", gv, "evals", evals)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settings := &optimize.Settings{
		MajorIterations: opts.MaxIters,
		FuncEvaluations: opts.MaxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-8,
			Iterations: 50,
		},
	}
	result, err := optimize.Minimize(optimize.Problem{Func: eval}, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fitted := prob.decode(result.X)
	report := &Report{
		When:        time.Now(),
		Evaluations: evals,
		SSQStart:    ssq0,
		SSQ:         result.F,
	}
	for _, name := range free {
		was, _ := prob.Params.Get(name)
		now, _ := fitted.Get(name)
		report.Params = append(report.Params, ParamResult{
			Name:   name,
			Start:  was.Value,
			Fitted: now.Value,
			Min:    was.Min,
			Max:    was.Max,
			Log:    was.Log,
		})
	}

	slog.Info("calibration finished", "ssq", result.F, "evals", evals, "status", result.Status.String())
	return report, nil
}
