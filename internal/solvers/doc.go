// Package solvers implements the adaptive solver families behind the
// [ode.Solver] interface.
//
// Three families with differing stiffness handling are provided:
//
//   - [DormandPrince]: explicit embedded RK45, the default choice
//   - [BogackiShampine]: explicit embedded RK23, cheaper per step and
//     tolerant of mildly stiff right-hand sides
//   - [Rosenbrock]: semi-implicit Rosenbrock(2,3) with numeric Jacobian
//     for stiff forcing regimes
//
// All families share one step-size controller: a weighted RMS error
// norm against the configured tolerances, acceptance at norm <= 1, and
// growth/shrink factors clamped to [0.2, 10] with a safety factor of
// 0.9. Steps are clamped to land exactly on every grid point. Event
// zero crossings are located by bisection on a cubic Hermite
// interpolant over the accepted step.
package solvers
