// Package deb implements the energy-budget dynamics of a single
// aquatic organism.
//
// A [Model] binds a parameter [Set], the run [Global] configuration
// and an optional environmental driver into two callbacks sharing that
// one context:
//
//   - [Model.Derivs]: the right-hand side of the budget ODE
//   - [Model.Event]: the puberty crossing function
//
// Two dynamics variants are selected at construction:
//
//   - [Compound]: length-based growth dL = rB(f*Lm - L) with the
//     kappa starvation cascade and compound reproduction, the pond
//     snail formulation
//   - [Flux]: explicit mass fluxes (assimilation, maintenance, growth,
//     reproduction) with an optional egg buffer and survival state,
//     the fish larva formulation
//
// Both variants honor the convention that a zero-valued parameter
// disables its mechanism: a zero feeding-limitation length, a zero
// developmental lag and a zero stress hazard all reduce to the plain
// model.
//
// # Units
//
// Time is days. Physical length is mm; structural mass is mg dry
// weight, related through mass = dV*(length*delM)^3. Reproduction is
// cumulative offspring, survival is a probability.
package deb
