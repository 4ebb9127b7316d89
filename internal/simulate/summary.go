package simulate

import (
	"math"

	"github.com/aquatox/debsim/internal/deb"
)

// Summarize reduces a trajectory to the handful of scalar responses
// reported after a run and stored with it: final and peak size,
// cumulative reproduction, final survival when tracked, and the day
// of the puberty crossing when one occurred.
func Summarize(res *Result, glo deb.Global) map[string]float64 {
	out := make(map[string]float64)
	if len(res.States) == 0 {
		return out
	}

	last := res.States[len(res.States)-1]
	out["final_size"] = last[glo.LocSize]

	peak := math.Inf(-1)
	for _, x := range res.States {
		if x[glo.LocSize] > peak {
			peak = x[glo.LocSize]
		}
	}
	out["peak_size"] = peak
	out["reproduction"] = last[glo.LocRepro]

	if glo.LocSurv >= 0 {
		out["survival"] = last[glo.LocSurv]
	}
	if !math.IsInf(res.Puberty, 1) {
		out["puberty_day"] = res.Puberty
	}
	return out
}
