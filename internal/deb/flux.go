package deb

import "github.com/aquatox/debsim/internal/ode"

// flux is the mass-based variant: explicit assimilation, maintenance,
// growth and reproduction fluxes on volumetric length, an egg buffer
// feeding the embryo, and a stepped starvation cascade.
func (m *Model) flux(t float64, x ode.State) ode.State {
	p := &m.par
	g := m.glo

	wv := x[g.LocSize]
	if floor := 1e-9 * m.size0; wv < floor {
		wv = floor
	}
	wb := 0.0
	if g.LocBuffer >= 0 {
		wb = x[g.LocBuffer]
	}
	inEgg := wb > 0

	s := m.stress(t)
	f := p.F.Value
	if inEgg {
		f = p.FB.Value
	}

	lv := cbrtPos(wv / g.DV)
	ja := f * p.JAm.Value * lv * lv * (1 - s)
	jm := p.JvM.Value * lv * lv * lv
	kap := p.Kap.Value
	jj := 0.0
	if g.Mat {
		jj = (1 - kap) / kap * jm
	}

	adult := wv >= m.thr

	jv := p.YVA.Value * (kap*ja - jm)
	jr := 0.0
	if adult {
		jr = (1-kap)*ja - jj
		if jr < 0 {
			jr = 0
		}
	}

	if kap*ja < jm {
		// Starvation ranking: drop growth, then reproduction, then
		// maturity maintenance, and only then burn structure.
		switch {
		case ja-jm-jj >= 0:
			jv = 0
			if adult {
				jr = ja - jm - jj
			}
		case ja-jm >= 0:
			jv = 0
			jr = 0
		default:
			jv = (ja - jm) / p.YAV.Value
			jr = 0
		}
	}

	dx := make(ode.State, len(x))
	dx[g.LocSize] = jv
	if jr > 0 {
		dx[g.LocRepro] = p.YBA.Value * jr / p.WB0.Value
	}
	if g.LocBuffer >= 0 && inEgg {
		dx[g.LocBuffer] = -ja
	}
	m.survival(dx, x, inEgg, s)
	return dx
}
