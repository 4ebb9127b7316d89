package deb

import (
	"fmt"
	"math"

	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/ode"
)

// Model binds one parameter set, one global configuration and one
// optional environmental driver. Its derivative and event callbacks
// share this context, so both always see identical inputs.
//
// The dynamics variant is chosen once here; per-step evaluation never
// re-dispatches on configuration.
type Model struct {
	par Set
	glo Global
	env *forcing.Series

	derivs func(t float64, x ode.State) ode.State

	// Captured at binding time.
	size0 float64 // initial size in native units
	thr   float64 // puberty threshold in native units
	lag   float64
}

// NewModel binds the context for one simulation. x0 is the initial
// state in the model's native units (mass already converted when the
// caller works in length). env may be nil for an undriven run.
func NewModel(par *Set, glo Global, env *forcing.Series, x0 ode.State) (*Model, error) {
	if err := glo.Validate(); err != nil {
		return nil, err
	}
	if len(x0) < glo.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, layout needs %d", ErrConfig, len(x0), glo.StateDim())
	}

	m := &Model{
		par:   *par,
		glo:   glo,
		env:   env,
		size0: x0[glo.LocSize],
		lag:   par.Tlag.Value,
	}

	kap := par.Kap.Value
	if kap <= 0 || kap >= 1 {
		return nil, fmt.Errorf("%w: kap=%g must lie in (0, 1)", ErrParamBounds, kap)
	}

	switch glo.Kind {
	case Compound:
		if par.Lm.Value <= 0 {
			return nil, fmt.Errorf("%w: Lm=%g must be positive", ErrParamBounds, par.Lm.Value)
		}
		if par.Lm.Value == par.Lp.Value {
			return nil, fmt.Errorf("%w: Lm and Lp coincide", ErrParamBounds)
		}
		if par.YAV.Value <= 0 {
			return nil, fmt.Errorf("%w: yAV=%g must be positive", ErrParamBounds, par.YAV.Value)
		}
		m.thr = par.Lp.Value
		m.derivs = m.compound
	case Flux:
		if par.YAV.Value <= 0 || par.YVA.Value <= 0 {
			return nil, fmt.Errorf("%w: yields must be positive", ErrParamBounds)
		}
		if par.WB0.Value <= 0 {
			return nil, fmt.Errorf("%w: WB0=%g must be positive", ErrParamBounds, par.WB0.Value)
		}
		lp := par.Lwp.Value * glo.DelM
		m.thr = glo.DV * lp * lp * lp
		m.derivs = m.flux
	default:
		return nil, fmt.Errorf("%w: unknown model kind %d", ErrConfig, int(glo.Kind))
	}

	return m, nil
}

// Derivs is the right-hand side of the budget ODE. Before the
// developmental lag has passed, nothing changes.
func (m *Model) Derivs(t float64, x ode.State) ode.State {
	if t < m.lag {
		return make(ode.State, len(x))
	}
	return m.derivs(t, x)
}

// Event is positive once the organism's size exceeds the puberty
// threshold. Reproduction parameters never enter here: the crossing
// time depends on growth alone.
func (m *Model) Event(t float64, x ode.State) float64 {
	return x[m.glo.LocSize] - m.thr
}

// Threshold reports the puberty threshold in native units.
func (m *Model) Threshold() float64 { return m.thr }

func (m *Model) Kind() ModelKind { return m.glo.Kind }

func (m *Model) StateDim() int { return m.glo.StateDim() }

// stress evaluates the dissolved-oxygen stress level at t, 0 when the
// run has no driver.
func (m *Model) stress(t float64) float64 {
	if m.env == nil {
		return 0
	}
	return Stress(m.env.At(t), m.par.CL.Value, m.par.CU.Value)
}

// survival writes the hazard derivative when the layout tracks it.
// The background hazard switches from embryo to juvenile once the egg
// buffer is spent; a nonzero hS adds stress-dependent mortality.
func (m *Model) survival(dx ode.State, x ode.State, inEgg bool, s float64) {
	if m.glo.LocSurv < 0 {
		return
	}
	h := m.par.Hj.Value
	if inEgg {
		h = m.par.Hb.Value
	}
	if m.par.HS.Value > 0 {
		h += m.par.HS.Value * s
	}
	dx[m.glo.LocSurv] = -h * x[m.glo.LocSurv]
}

// cbrt of a non-negative quantity; negative solver overshoot clamps
// to zero rather than producing a negative length.
func cbrtPos(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Cbrt(v)
}
