package simulate

import (
	"context"
	"sync"
)

// Batch runs one simulation per initial-state vector concurrently and
// returns the results in input order. Each run is independent; the
// first error encountered wins and discards the rest.
func (d *Driver) Batch(ctx context.Context, times []float64, x0vs [][]float64) ([]*Result, error) {
	results := make([]*Result, len(x0vs))
	errs := make([]error, len(x0vs))

	var wg sync.WaitGroup
	for i := range x0vs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = d.Run(ctx, times, x0vs[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
