package deb

import "github.com/aquatox/debsim/internal/ode"

// compound is the length-based variant: von Bertalanffy growth toward
// f*Lm, with the kappa rule entering only under starvation, and
// reproduction from the compound parameters.
func (m *Model) compound(t float64, x ode.State) ode.State {
	p := &m.par
	g := m.glo

	L := x[g.LocSize]
	if floor := 1e-3 * m.size0; L < floor {
		L = floor
	}

	f := p.F.Value
	if p.Lf.Value > 0 {
		f *= L / (L + p.Lf.Value)
	}
	if p.Lj.Value > 0 && L < p.Lj.Value {
		f *= L / p.Lj.Value
	}
	s := m.stress(t)
	f *= 1 - s

	lm := p.Lm.Value
	kap := p.Kap.Value

	fR := f
	dL := p.Rb.Value * (f*lm - L)
	if f < L/lm {
		// Assimilation no longer covers the kappa budget: first stop
		// growing, and once the reproduction flux is exhausted too,
		// burn structure.
		fR = (f - kap*L/lm) / (1 - kap)
		if fR >= 0 {
			dL = 0
		} else {
			fR = 0
			dL = p.Rb.Value * (f*lm - L) / (kap * p.YAV.Value)
		}
	}
	if L < 0.5*m.size0 && dL < 0 {
		dL = 0 // no starving below half the starting size
	}

	dR := 0.0
	if lp := p.Lp.Value; L > lp {
		lp3 := lp * lp * lp
		lm3 := lm * lm * lm
		dR = p.Rm.Value * (fR*lm*L*L - lp3) / (lm3 - lp3)
		if dR < 0 {
			dR = 0
		}
	}

	dx := make(ode.State, len(x))
	dx[g.LocSize] = dL
	dx[g.LocRepro] = dR
	m.survival(dx, x, false, s)
	return dx
}
