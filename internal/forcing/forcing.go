package forcing

import (
	"errors"
	"sort"
)

var (
	// ErrEmpty indicates a series with no samples.
	ErrEmpty = errors.New("forcing: series needs at least one sample")

	// ErrMismatch indicates time and value slices of different lengths.
	ErrMismatch = errors.New("forcing: time and value counts differ")

	// ErrNotIncreasing indicates unsorted or duplicate sample times.
	ErrNotIncreasing = errors.New("forcing: sample times must increase strictly")
)

// Series is a piecewise-linear environmental driver sampled at
// strictly increasing times.
type Series struct {
	times  []float64
	values []float64
}

func NewSeries(times, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, ErrMismatch
	}
	if len(times) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, ErrNotIncreasing
		}
	}
	return &Series{
		times:  append([]float64(nil), times...),
		values: append([]float64(nil), values...),
	}, nil
}

// Constant builds a series that evaluates to v at every time.
func Constant(v float64) *Series {
	return &Series{times: []float64{0}, values: []float64{v}}
}

// At returns the interpolated value at t, clamped to the first and
// last samples outside the sampled range.
func (s *Series) At(t float64) float64 {
	n := len(s.times)
	if t <= s.times[0] {
		return s.values[0]
	}
	if t >= s.times[n-1] {
		return s.values[n-1]
	}
	i := sort.SearchFloat64s(s.times, t)
	t0, t1 := s.times[i-1], s.times[i]
	v0, v1 := s.values[i-1], s.values[i]
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// Span reports the sampled time range.
func (s *Series) Span() (float64, float64) {
	return s.times[0], s.times[len(s.times)-1]
}

func (s *Series) Len() int { return len(s.times) }

// Set maps scenario identifiers to their driver series. A nil Set is
// valid and resolves nothing.
type Set struct {
	series map[float64]*Series
}

func NewSet() *Set {
	return &Set{series: make(map[float64]*Series)}
}

func (s *Set) Add(id float64, sr *Series) {
	s.series[id] = sr
}

// Lookup returns the series for a scenario, or nil when the scenario
// carries no driver. Missing scenarios are not an error: an organism
// without an exposure profile simply sees no stress.
func (s *Set) Lookup(id float64) *Series {
	if s == nil {
		return nil
	}
	return s.series[id]
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.series)
}

// IDs lists the scenario identifiers in ascending order.
func (s *Set) IDs() []float64 {
	if s == nil {
		return nil
	}
	ids := make([]float64, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Float64s(ids)
	return ids
}
