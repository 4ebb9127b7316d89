// Package fit calibrates model parameters against observed time
// series.
//
// A [Problem] binds a parameter set, the run configuration and the
// observation tables into a weighted sum-of-squares objective over the
// parameters flagged free. [Calibrate] minimizes it with Nelder-Mead,
// optionally seeded by a coarse grid search over the declared
// parameter ranges. Log-flagged parameters are searched on a log10
// scale; box bounds are enforced by penalty.
package fit
