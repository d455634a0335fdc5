package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/dago-library-assistant/internal/eval/cel"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type runIDKey struct{}

// WithRunID attaches a caller-chosen run identifier to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run identifier carried by ctx, if any
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Option configures a Router
type Option func(*Router)

// WithParallelLevels runs the steps of a level concurrently
func WithParallelLevels(enabled bool) Option {
	return func(r *Router) {
		r.parallel = enabled
	}
}

// WithObserver registers an observer for step events
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observers = append(r.observers, o)
	}
}

// Router runs a graph of steps over a shared state
type Router struct {
	graph        *Graph
	celEvaluator *cel.Evaluator
	observers    []Observer
	parallel     bool
	logger       *zap.Logger
}

// NewRouter creates a router for the graph and validates its guards
func NewRouter(graph *Graph, logger *zap.Logger, opts ...Option) (*Router, error) {
	if graph == nil {
		return nil, invalidGraph("graph is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		graph:        graph,
		celEvaluator: cel.NewEvaluator(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, n := range graph.nodes {
		if n.When == "" {
			continue
		}
		if err := r.celEvaluator.ValidateExpression(n.When); err != nil {
			return nil, invalidGraph("step %q guard: %v", n.Name, err)
		}
	}

	return r, nil
}

// Graph returns the router topology
func (r *Router) Graph() *Graph {
	return r.graph
}

type stepOutcome struct {
	update   Update
	status   StepStatus
	duration time.Duration
	err      error
}

// Run executes every step in topological order and returns the final state.
// The initial state is not modified.
func (r *Router) Run(ctx context.Context, initial State) (State, error) {
	runID := RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = WithRunID(ctx, runID)
	}

	state := initial.Clone()
	started := time.Now()

	r.logger.Info("run started",
		zap.String("run_id", runID),
		zap.Int("steps", len(r.graph.nodes)),
		zap.Bool("parallel", r.parallel),
	)

	for _, level := range r.graph.levels {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
		}

		outcomes := r.runLevel(ctx, level, state)

		for i, name := range level {
			out := outcomes[i]
			r.notify(ctx, runID, name, out)

			if out.err != nil {
				r.logger.Error("step failed",
					zap.String("run_id", runID),
					zap.String("step", name),
					zap.Error(out.err),
				)
				return nil, &StepError{Step: name, Err: out.err}
			}

			state.Merge(out.update)
		}
	}

	r.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Duration("duration", time.Since(started)),
	)

	return state, nil
}

// runLevel executes one level; outcomes are returned in level order
func (r *Router) runLevel(ctx context.Context, level []string, state State) []stepOutcome {
	outcomes := make([]stepOutcome, len(level))

	if !r.parallel || len(level) == 1 {
		for i, name := range level {
			outcomes[i] = r.runStep(ctx, name, state.Clone())
			if outcomes[i].err != nil {
				break
			}
			// Later steps of the level see earlier updates in sequential mode
			state = state.Clone()
			state.Merge(outcomes[i].update)
		}
		return outcomes
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range level {
		snapshot := state.Clone()
		g.Go(func() error {
			outcomes[i] = r.runStep(gctx, name, snapshot)
			return outcomes[i].err
		})
	}
	_ = g.Wait()

	return outcomes
}

// runStep evaluates the guard and runs a single step
func (r *Router) runStep(ctx context.Context, name string, state State) stepOutcome {
	node := r.graph.nodes[r.graph.index[name]]
	started := time.Now()

	if node.When != "" {
		run, err := r.celEvaluator.EvaluateBool(ctx, node.When, state.celVars())
		if err != nil {
			return stepOutcome{status: StepFailed, duration: time.Since(started), err: fmt.Errorf("guard: %w", err)}
		}
		if !run {
			r.logger.Debug("step skipped",
				zap.String("run_id", RunID(ctx)),
				zap.String("step", name),
				zap.String("guard", node.When),
			)
			return stepOutcome{status: StepSkipped, duration: time.Since(started)}
		}
	}

	r.logger.Debug("step started",
		zap.String("run_id", RunID(ctx)),
		zap.String("step", name),
	)

	update, err := node.Run(ctx, state)
	if err != nil {
		return stepOutcome{status: StepFailed, duration: time.Since(started), err: err}
	}

	r.logger.Debug("step completed",
		zap.String("run_id", RunID(ctx)),
		zap.String("step", name),
		zap.Strings("fields", update.Keys()),
	)

	return stepOutcome{update: update, status: StepCompleted, duration: time.Since(started)}
}

// notify forwards a step event to observers; observer errors are logged only
func (r *Router) notify(ctx context.Context, runID, name string, out stepOutcome) {
	if len(r.observers) == 0 || out.status == "" {
		return
	}

	event := StepEvent{
		RunID:    runID,
		Step:     name,
		Status:   out.status,
		Fields:   out.update.Keys(),
		Duration: out.duration,
	}
	if out.err != nil {
		event.Error = out.err.Error()
	}

	for _, o := range r.observers {
		if err := o.StepFinished(ctx, event); err != nil {
			r.logger.Warn("step observer failed",
				zap.String("run_id", runID),
				zap.String("step", name),
				zap.Error(err),
			)
		}
	}
}
