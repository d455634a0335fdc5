package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidGraph is wrapped by every topology validation error
var ErrInvalidGraph = errors.New("invalid graph")

// StepError reports the step that stopped a run
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func invalidGraph(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidGraph, fmt.Sprintf(format, args...))
}
