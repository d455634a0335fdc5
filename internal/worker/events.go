package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StepEventPublisher publishes router step events to a Redis stream
type StepEventPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

var _ pipeline.Observer = (*StepEventPublisher)(nil)

// NewStepEventPublisher creates a new step event publisher
func NewStepEventPublisher(client *redis.Client, stream string, logger *zap.Logger) *StepEventPublisher {
	return &StepEventPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// StepFinished implements pipeline.Observer
func (p *StepEventPublisher) StepFinished(ctx context.Context, event pipeline.StepEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"step": event.Step,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published step event",
		zap.String("run_id", event.RunID),
		zap.String("step", event.Step),
		zap.String("status", string(event.Status)),
	)

	return nil
}
