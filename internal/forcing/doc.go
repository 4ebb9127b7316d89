// Package forcing provides time-varying environmental drivers for
// energy-budget models.
//
// A [Series] is a piecewise-linear interpolation over sampled
// time/value pairs, typically dissolved oxygen or temperature read
// from an exposure profile. A [Set] maps scenario identifiers to their
// series so one parameter set can be simulated against many exposure
// treatments.
//
// Series are evaluated at arbitrary times: adaptive solvers probe
// forward and backward within a step, so lookups clamp to the end
// values outside the sampled range instead of extrapolating.
package forcing
