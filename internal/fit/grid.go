package fit

import (
	"context"
	"math"
)

// gridSearch walks a full factorial grid of points per axis inside
// [lo, hi] and returns the best vector and its objective value. It
// seeds the simplex stage with a coarse scan of the declared ranges.
func gridSearch(ctx context.Context, eval func([]float64) float64, lo, hi []float64, points int) ([]float64, float64) {
	best := math.Inf(1)
	var bestX []float64

	current := make([]float64, len(lo))
	var walk func(depth int)
	walk = func(depth int) {
		if ctx.Err() != nil {
			return
		}
		if depth == len(lo) {
			val := eval(current)
			if val < best {
				best = val
				bestX = append([]float64(nil), current...)
			}
			return
		}
		for i := 0; i < points; i++ {
			current[depth] = lo[depth] + (hi[depth]-lo[depth])*float64(i)/float64(points-1)
			walk(depth + 1)
		}
	}
	walk(0)

	return bestX, best
}
