package deb

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/ode"
)

// larvaModel uses a low puberty threshold so adult fluxes are
// reachable at test sizes: Lwp=10mm, delM=0.2 gives WVp=1.6mg.
func larvaModel(t *testing.T, env *forcing.Series, mutate func(*Set, *Global)) *Model {
	t.Helper()
	par := SilversideParams()
	par.Lwp.Value = 10
	glo := SilversideGlobal()
	glo.Mat = false
	if mutate != nil {
		mutate(par, &glo)
	}
	m, err := NewModel(par, glo, env, ode.State{0.01, 0, 0.15, 1})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func wvAt(lv float64) float64 { return 0.2 * lv * lv * lv }

func TestFlux_EmbryoPhase(t *testing.T) {
	m := larvaModel(t, nil, nil)

	x := ode.State{0.01, 0, 0.15, 1}
	dx := m.Derivs(0, x)

	if dx[0] <= 0 {
		t.Errorf("embryo should grow, dWV = %g", dx[0])
	}
	if dx[2] >= 0 {
		t.Errorf("egg buffer should drain, dWB = %g", dx[2])
	}
	lv := math.Cbrt(0.01 / 0.2)
	ja := 1.0 * 0.1 * lv * lv
	if math.Abs(dx[2]+ja) > 1e-12 {
		t.Errorf("dWB = %g, want %g", dx[2], -ja)
	}
	if dx[1] != 0 {
		t.Errorf("embryo must not reproduce, dR = %g", dx[1])
	}
	if want := -0.05 * 1.0; math.Abs(dx[3]-want) > 1e-12 {
		t.Errorf("embryo hazard dS = %g, want %g", dx[3], want)
	}
}

func TestFlux_BufferDepletionSwitches(t *testing.T) {
	m := larvaModel(t, nil, func(p *Set, g *Global) {
		p.F.Value = 0.5 // external food is scarcer than the buffer
	})

	inEgg := m.Derivs(0, ode.State{0.05, 0, 0.01, 1})
	hatched := m.Derivs(0, ode.State{0.05, 0, 0, 1})

	if inEgg[2] >= 0 {
		t.Error("buffer should still drain while positive")
	}
	if hatched[2] != 0 {
		t.Errorf("depleted buffer must stay put, dWB = %g", hatched[2])
	}
	if hatched[0] >= inEgg[0] {
		t.Errorf("growth on scarce external food (%g) should fall below buffer feeding (%g)", hatched[0], inEgg[0])
	}
	if inEgg[3] >= hatched[3] {
		t.Errorf("embryo hazard (%g/d) should exceed juvenile hazard (%g/d)", -inEgg[3], -hatched[3])
	}
}

func TestFlux_AdultReproduction(t *testing.T) {
	m := larvaModel(t, nil, nil)

	wv := wvAt(2) // exactly the puberty threshold
	dx := m.Derivs(0, ode.State{wv, 0, 0, 1})

	lv := 2.0
	ja := 0.1 * lv * lv
	jr := (1 - 0.8) * ja
	want := 0.95 * jr / 0.15
	if math.Abs(dx[1]-want) > 1e-9 {
		t.Errorf("dR = %g, want %g", dx[1], want)
	}

	juvenile := m.Derivs(0, ode.State{wv * 0.99, 0, 0, 1})
	if juvenile[1] != 0 {
		t.Errorf("sub-threshold organism must not reproduce, dR = %g", juvenile[1])
	}
}

func TestFlux_StarvationCascade(t *testing.T) {
	// With kap=0.8, JAm=0.1, JvM=0.02 and f=1 the kappa budget fails
	// beyond lv=4 and assimilation falls below maintenance beyond lv=5.
	t.Run("growth freeze keeps reproduction", func(t *testing.T) {
		m := larvaModel(t, nil, nil)
		dx := m.Derivs(0, ode.State{wvAt(4.5), 0, 0, 1})
		if dx[0] != 0 {
			t.Errorf("growth should freeze, dWV = %g", dx[0])
		}
		lv := 4.5
		jr := 0.1*lv*lv - 0.02*lv*lv*lv
		want := 0.95 * jr / 0.15
		if math.Abs(dx[1]-want) > 1e-9 {
			t.Errorf("dR = %g, want %g", dx[1], want)
		}
	})

	t.Run("maturity maintenance absorbs the rest", func(t *testing.T) {
		m := larvaModel(t, nil, func(p *Set, g *Global) { g.Mat = true })
		dx := m.Derivs(0, ode.State{wvAt(4.5), 0, 0, 1})
		if dx[0] != 0 {
			t.Errorf("growth should freeze, dWV = %g", dx[0])
		}
		if dx[1] != 0 {
			t.Errorf("reproduction should freeze too, dR = %g", dx[1])
		}
	})

	t.Run("shrink", func(t *testing.T) {
		m := larvaModel(t, nil, nil)
		dx := m.Derivs(0, ode.State{wvAt(6), 0, 0, 1})
		lv := 6.0
		want := (0.1*lv*lv - 0.02*lv*lv*lv) / 0.8
		if math.Abs(dx[0]-want) > 1e-9 {
			t.Errorf("dWV = %g, want %g", dx[0], want)
		}
		if dx[0] >= 0 {
			t.Error("structure must burn when assimilation cannot pay maintenance")
		}
		if dx[1] != 0 {
			t.Errorf("shrinking organism must not reproduce, dR = %g", dx[1])
		}
	})
}

func TestFlux_OxygenStress(t *testing.T) {
	t.Run("full stress stops assimilation", func(t *testing.T) {
		m := larvaModel(t, forcing.Constant(1), nil) // below cL=2
		dx := m.Derivs(0, ode.State{wvAt(3), 0, 0, 1})
		if dx[0] >= 0 {
			t.Errorf("anoxia should force shrinking, dWV = %g", dx[0])
		}
		if want := -(0.01 + 0.2); math.Abs(dx[3]-want) > 1e-12 {
			t.Errorf("dS = %g, want %g", dx[3], want)
		}
	})

	t.Run("half stress halves assimilation", func(t *testing.T) {
		clean := larvaModel(t, nil, nil)
		stressed := larvaModel(t, forcing.Constant(4), nil) // midway in [2, 6]

		x := ode.State{0.05, 0, 0.1, 1}
		ja := -clean.Derivs(0, x)[2]
		jaStressed := -stressed.Derivs(0, x)[2]
		if math.Abs(jaStressed-0.5*ja) > 1e-12 {
			t.Errorf("assimilation under half stress = %g, want %g", jaStressed, 0.5*ja)
		}
	})

	t.Run("no driver means no stress", func(t *testing.T) {
		m := larvaModel(t, nil, func(p *Set, g *Global) { p.HS.Value = 0 })
		dx := m.Derivs(0, ode.State{0.05, 0, 0, 1})
		if want := -0.01; math.Abs(dx[3]-want) > 1e-12 {
			t.Errorf("dS = %g, want %g", dx[3], want)
		}
	})

	t.Run("zero hS disables the stress hazard", func(t *testing.T) {
		m := larvaModel(t, forcing.Constant(1), func(p *Set, g *Global) { p.HS.Value = 0 })
		dx := m.Derivs(0, ode.State{0.05, 0, 0, 1})
		if want := -0.01; math.Abs(dx[3]-want) > 1e-12 {
			t.Errorf("dS = %g, want %g", dx[3], want)
		}
	})
}

func TestFlux_EventThresholdConversion(t *testing.T) {
	m := larvaModel(t, nil, nil)

	if want := 0.2 * math.Pow(10*0.2, 3); math.Abs(m.Threshold()-want) > 1e-12 {
		t.Errorf("threshold = %g, want %g", m.Threshold(), want)
	}
	if got := m.Event(0, ode.State{m.Threshold(), 0, 0, 1}); got != 0 {
		t.Errorf("event at the converted threshold = %g, want 0", got)
	}
}

func TestFlux_ReproductionNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 500; i++ {
		par := SilversideParams()
		par.F.Value = rng.Float64() * 1.5
		par.FB.Value = rng.Float64() * 1.5
		par.Kap.Value = 0.5 + rng.Float64()*0.45
		par.JAm.Value = 0.005 + rng.Float64()*0.5
		par.JvM.Value = 0.0005 + rng.Float64()*0.2
		par.Lwp.Value = 5 + rng.Float64()*20
		glo := SilversideGlobal()
		glo.Mat = rng.Intn(2) == 0

		m, err := NewModel(par, glo, nil, ode.State{0.01, 0, 0.15, 1})
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		x := ode.State{rng.Float64() * 50, 0, rng.Float64() * 0.2, 1}
		dx := m.Derivs(rng.Float64()*100, x)
		if dx[1] < 0 {
			t.Fatalf("draw %d: negative reproduction flux %g", i, dx[1])
		}
	}
}

func TestFlux_NonMonotonicTime(t *testing.T) {
	m := larvaModel(t, forcing.Constant(4), nil)
	x := ode.State{0.05, 0, 0.1, 1}

	first := m.Derivs(8, x)
	m.Derivs(2, x)
	m.Derivs(11, x)
	again := m.Derivs(8, x)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("derivative %d changed between evaluations at the same t", i)
		}
	}
}
