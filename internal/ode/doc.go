// Package ode provides core primitives for tolerance-controlled
// integration of ordinary differential equations.
//
// The package defines the fundamental types shared by all solver
// families:
//
//   - [State]: vector representing system state
//   - [Func]: right-hand side of dX/dt = f(t, X)
//   - [EventFunc]: scalar event function whose zero crossings are recorded
//   - [Options]: tolerances and step-size limits
//   - [Solution]: grid states, event times and step statistics
//   - [Solver]: interface implemented by the solver families
//
// # Events
//
// Event functions are non-terminal: every sign change of the event
// value across an accepted step is located and recorded, and the
// integration continues to the end of the grid.
//
// # Thread Safety
//
// Solvers hold no per-run state and may be shared. A single Solve call
// owns its working arrays; concurrent Solve calls are safe as long as
// the supplied callbacks are.
package ode
