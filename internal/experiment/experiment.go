package experiment

import (
	"context"
	"log/slog"

	"github.com/aquatox/debsim/internal/config"
	"github.com/aquatox/debsim/internal/simulate"
)

// ScenarioRun is the outcome of one scenario within an experiment.
type ScenarioRun struct {
	Scenario config.Scenario
	Result   *simulate.Result
	Metrics  map[string]float64
}

// Experiment runs every scenario of one configuration.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

// Run simulates all scenarios over the shared reporting grid. A named
// solver in the config overrides the stiffness selector; an unknown
// name warns and keeps the configured default.
func (e *Experiment) Run(ctx context.Context) ([]ScenarioRun, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	glo := e.cfg.Global
	if e.cfg.Solver != "" {
		stiff, err := e.registry.GetSolver(e.cfg.Solver)
		if err != nil {
			slog.Warn("unknown solver in config, keeping default", "solver", e.cfg.Solver)
		} else {
			glo.Stiff = stiff
		}
	}

	env, err := e.cfg.Forcing()
	if err != nil {
		return nil, err
	}
	driver, err := simulate.New(e.cfg.Params, glo, env)
	if err != nil {
		return nil, err
	}

	times := e.cfg.Grid()
	out := make([]ScenarioRun, 0, len(e.cfg.Scenarios))
	for _, sc := range e.cfg.Scenarios {
		res, err := driver.Run(ctx, times, sc.InitialVector())
		if err != nil {
			return nil, err
		}
		out = append(out, ScenarioRun{
			Scenario: sc,
			Result:   res,
			Metrics:  simulate.Summarize(res, glo),
		})
	}
	return out, nil
}
