package pipeline

import (
	"context"
	"time"
)

// StepStatus is the outcome of a single step
type StepStatus string

const (
	// StepCompleted means the step ran and its update was merged
	StepCompleted StepStatus = "completed"

	// StepSkipped means the step's guard evaluated to false
	StepSkipped StepStatus = "skipped"

	// StepFailed means the step returned an error and the run stopped
	StepFailed StepStatus = "failed"
)

// StepEvent describes one executed step
type StepEvent struct {
	RunID    string        `json:"run_id"`
	Step     string        `json:"step"`
	Status   StepStatus    `json:"status"`
	Fields   []string      `json:"fields,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Observer receives step events in execution order
type Observer interface {
	StepFinished(ctx context.Context, event StepEvent) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event StepEvent) error

// StepFinished calls f
func (f ObserverFunc) StepFinished(ctx context.Context, event StepEvent) error {
	return f(ctx, event)
}
