// Package simulate orchestrates energy-budget runs: it owns the
// scenario split, unit conversions, grid construction, solver
// selection and output post-processing around one call into the
// solver.
//
// A [Driver] binds a parameter set, the global configuration and the
// forcing set once; [Driver.Run] is then safe to call concurrently,
// so many scenarios can be simulated in parallel with [Driver.Batch].
//
// The post-processing pipeline runs on the full integration grid
// before rows are subset to the requested times: mass to length
// conversion, the no-shrink running maximum, and the brood-pouch
// output delay.
package simulate
