package library

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-library-assistant/internal/completion"
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"go.uber.org/zap"
)

// Router answers library questions with the classify → {faq, checkout} → respond graph
type Router struct {
	pipeline *pipeline.Router
	logger   *zap.Logger
}

// NewGraph builds the fixed library topology around a completion collaborator
func NewGraph(completer completion.Completer, logger *zap.Logger) (*pipeline.Graph, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &steps{completer: completer, logger: logger}

	return pipeline.NewGraph(
		pipeline.Node{
			Name: StepClassify,
			Run:  s.classify,
		},
		pipeline.Node{
			Name:      StepFAQ,
			DependsOn: []string{StepClassify},
			When:      faqMissing,
			Run:       defaultFAQ,
		},
		pipeline.Node{
			Name:      StepCheckout,
			DependsOn: []string{StepClassify},
			When:      checkoutMissing,
			Run:       defaultCheckout,
		},
		pipeline.Node{
			Name:      StepRespond,
			DependsOn: []string{StepFAQ, StepCheckout},
			Run:       respond,
		},
	)
}

// NewRouter creates a library router
func NewRouter(completer completion.Completer, logger *zap.Logger, opts ...pipeline.Option) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	graph, err := NewGraph(completer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	p, err := pipeline.NewRouter(graph, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	return &Router{pipeline: p, logger: logger}, nil
}

// Graph returns the router topology
func (r *Router) Graph() *pipeline.Graph {
	return r.pipeline.Graph()
}

// Run executes the graph over an initial state holding the question
func (r *Router) Run(ctx context.Context, initial pipeline.State) (pipeline.State, error) {
	return r.pipeline.Run(ctx, initial)
}

// Answer runs one question through the graph and returns the final answer
func (r *Router) Answer(ctx context.Context, question string) (string, error) {
	final, err := r.Run(ctx, pipeline.NewState(map[string]string{FieldQuestion: question}))
	if err != nil {
		return "", err
	}
	return final.Get(FieldFinalAnswer), nil
}
