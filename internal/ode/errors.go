package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrStepUnderflow indicates the adaptive step fell below MinStep.
	ErrStepUnderflow = errors.New("ode: step size underflow")

	// ErrMaxSteps indicates the step budget ran out before the grid end.
	ErrMaxSteps = errors.New("ode: step budget exhausted")

	// ErrBadGrid indicates a grid that is empty or not sorted ascending.
	ErrBadGrid = errors.New("ode: grid must be finite and sorted ascending")

	// ErrCanceled indicates the integration was interrupted.
	ErrCanceled = errors.New("ode: integration canceled by context")
)

// StepError wraps an error with the time and step count at failure.
type StepError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
