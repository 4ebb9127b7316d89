package deb

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/ode"
)

func snailModel(t *testing.T, mutate func(*Set, *Global)) *Model {
	t.Helper()
	par := SnailParams()
	glo := SnailGlobal()
	if mutate != nil {
		mutate(par, &glo)
	}
	m, err := NewModel(par, glo, nil, ode.State{12.8, 0})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func TestCompound_Growth(t *testing.T) {
	m := snailModel(t, nil)

	dx := m.Derivs(0, ode.State{12.8, 0})
	want := 0.02 * (35 - 12.8)
	if math.Abs(dx[0]-want) > 1e-12 {
		t.Errorf("dL = %g, want %g", dx[0], want)
	}
	if dx[1] != 0 {
		t.Errorf("juvenile reproduction should be zero, got %g", dx[1])
	}
}

func TestCompound_ReproductionAbovePuberty(t *testing.T) {
	m := snailModel(t, nil)

	L := 30.0
	dx := m.Derivs(0, ode.State{L, 0})
	lp3 := 22.0 * 22 * 22
	lm3 := 35.0 * 35 * 35
	want := 10 * (35*L*L - lp3) / (lm3 - lp3)
	if math.Abs(dx[1]-want) > 1e-9 {
		t.Errorf("dR = %g, want %g", dx[1], want)
	}
}

func TestCompound_StarvationStages(t *testing.T) {
	t.Run("growth freeze", func(t *testing.T) {
		// kap*L/Lm < f < L/Lm: growth stops, no shrinking yet.
		m := snailModel(t, func(p *Set, g *Global) { p.F.Value = 0.65 })
		dx := m.Derivs(0, ode.State{25, 0})
		if dx[0] != 0 {
			t.Errorf("expected frozen growth, dL = %g", dx[0])
		}
	})

	t.Run("shrink", func(t *testing.T) {
		// f below the kappa budget: structure is burned.
		m := snailModel(t, func(p *Set, g *Global) { p.F.Value = 0 })
		dx := m.Derivs(0, ode.State{25, 0})
		want := 0.02 * (0 - 25) / (0.79 * 0.8)
		if math.Abs(dx[0]-want) > 1e-12 {
			t.Errorf("dL = %g, want %g", dx[0], want)
		}
		if dx[0] >= 0 {
			t.Error("starved snail must shrink")
		}
		if dx[1] != 0 {
			t.Errorf("starved snail must not reproduce, dR = %g", dx[1])
		}
	})

	t.Run("half-size guard", func(t *testing.T) {
		m := snailModel(t, func(p *Set, g *Global) { p.F.Value = 0 })
		dx := m.Derivs(0, ode.State{6, 0}) // below 12.8/2
		if dx[0] != 0 {
			t.Errorf("shrinking below half the initial size, dL = %g", dx[0])
		}
	})
}

func TestCompound_SizeFloor(t *testing.T) {
	m := snailModel(t, func(p *Set, g *Global) { p.F.Value = 0 })
	dx := m.Derivs(0, ode.State{0, 0})
	for i, v := range dx {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("derivative %d not finite at zero length: %g", i, v)
		}
	}
}

func TestCompound_Lag(t *testing.T) {
	m := snailModel(t, func(p *Set, g *Global) { p.Tlag.Value = 5 })

	dx := m.Derivs(3, ode.State{12.8, 0})
	for i, v := range dx {
		if v != 0 {
			t.Errorf("derivative %d nonzero during lag: %g", i, v)
		}
	}
	dx = m.Derivs(5, ode.State{12.8, 0})
	if dx[0] == 0 {
		t.Error("growth should resume once the lag has passed")
	}
}

func TestCompound_FeedingCorrections(t *testing.T) {
	base := snailModel(t, nil)
	limited := snailModel(t, func(p *Set, g *Global) { p.Lf.Value = 10 })
	accel := snailModel(t, func(p *Set, g *Global) { p.Lj.Value = 20 })

	x := ode.State{12.8, 0}
	dBase := base.Derivs(0, x)[0]
	dLim := limited.Derivs(0, x)[0]
	dAcc := accel.Derivs(0, x)[0]

	if dLim >= dBase {
		t.Errorf("feeding limitation should slow growth: %g vs %g", dLim, dBase)
	}
	if dAcc >= dBase {
		t.Errorf("early acceleration should reduce f below Lj: %g vs %g", dAcc, dBase)
	}

	// Above Lj the acceleration factor saturates at one.
	tall := ode.State{25, 0}
	if got, want := accel.Derivs(0, tall)[0], base.Derivs(0, tall)[0]; got != want {
		t.Errorf("acceleration should be inert above Lj: %g vs %g", got, want)
	}
}

func TestCompound_EventIgnoresReproduction(t *testing.T) {
	a := snailModel(t, nil)
	b := snailModel(t, func(p *Set, g *Global) { p.Rm.Value = 999 })

	for _, L := range []float64{5, 21.9, 22, 22.1, 34} {
		x := ode.State{L, 0}
		if a.Event(0, x) != b.Event(0, x) {
			t.Fatalf("event value at L=%g depends on reproduction parameters", L)
		}
	}
	if got := a.Event(0, ode.State{22, 0}); got != 0 {
		t.Errorf("event at the threshold = %g, want 0", got)
	}
}

func TestCompound_Survival(t *testing.T) {
	env := forcing.Constant(1) // below cL: full stress
	par := SnailParams()
	par.Hj.Value = 0.01
	par.HS.Value = 0.3
	par.CL.Value = 2
	par.CU.Value = 6
	glo := SnailGlobal()
	glo.LocSurv = 2

	m, err := NewModel(par, glo, env, ode.State{12.8, 0, 1})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	dx := m.Derivs(0, ode.State{12.8, 0, 1})
	want := -(0.01 + 0.3)
	if math.Abs(dx[2]-want) > 1e-12 {
		t.Errorf("dS = %g, want %g", dx[2], want)
	}
}

func TestCompound_ReproductionNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		par := SnailParams()
		par.F.Value = rng.Float64() * 1.5
		par.Kap.Value = 0.5 + rng.Float64()*0.45
		par.Rm.Value = rng.Float64() * 50
		par.Lp.Value = 5 + rng.Float64()*25
		par.Lm.Value = par.Lp.Value + 1 + rng.Float64()*20
		glo := SnailGlobal()
		m, err := NewModel(par, glo, nil, ode.State{12.8, 0})
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		L := rng.Float64() * par.Lm.Value * 1.1
		dx := m.Derivs(0, ode.State{L, 0})
		if dx[1] < 0 {
			t.Fatalf("draw %d: negative reproduction flux %g at L=%g", i, dx[1], L)
		}
	}
}

func TestNewModel_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Set, *Global)
		x0     ode.State
	}{
		{"kap zero", func(p *Set, g *Global) { p.Kap.Value = 0 }, ode.State{12.8, 0}},
		{"kap one", func(p *Set, g *Global) { p.Kap.Value = 1 }, ode.State{12.8, 0}},
		{"Lm equals Lp", func(p *Set, g *Global) { p.Lm.Value = p.Lp.Value }, ode.State{12.8, 0}},
		{"short state", nil, ode.State{12.8}},
		{"duplicate locations", func(p *Set, g *Global) { g.LocRepro = 0 }, ode.State{12.8, 0}},
		{"unknown kind", func(p *Set, g *Global) { g.Kind = ModelKind(9) }, ode.State{12.8, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			par := SnailParams()
			glo := SnailGlobal()
			if tt.mutate != nil {
				tt.mutate(par, &glo)
			}
			if _, err := NewModel(par, glo, nil, tt.x0); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestModel_BindingIsolation(t *testing.T) {
	par := SnailParams()
	m := func() *Model {
		m, err := NewModel(par, SnailGlobal(), nil, ode.State{12.8, 0})
		if err != nil {
			t.Fatalf("new model: %v", err)
		}
		return m
	}()

	before := m.Derivs(0, ode.State{12.8, 0})[0]
	par.Rb.Value = 99
	after := m.Derivs(0, ode.State{12.8, 0})[0]
	if before != after {
		t.Error("bound model must not see later parameter mutations")
	}
}
