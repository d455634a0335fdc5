package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/dago-library-assistant/internal/config"
	"github.com/aescanero/dago-library-assistant/internal/library"
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Answerer runs one question through the library graph
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

var _ Answerer = (*library.Router)(nil)

// Worker consumes questions from a Redis stream and publishes answers
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	answerer      Answerer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	answerer Answerer,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		answerer:      answerer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting library worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.running.Store(true)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processWork()
	}()

	w.logger.Info("library worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop cancels the read loop and waits for the in-flight question to finish
func (w *Worker) Stop() error {
	w.logger.Info("stopping library worker", zap.String("worker_id", w.id))

	w.running.Store(false)
	w.cancel()
	w.wg.Wait()

	w.logger.Info("library worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// Ready reports whether the read loop is running and the consumer group
// exists, and returns the number of questions read but not yet acknowledged
func (w *Worker) Ready(ctx context.Context) (int64, error) {
	if !w.running.Load() {
		return 0, errors.New("worker is not running")
	}

	pending, err := w.redisClient.XPending(ctx, w.streamKey, w.consumerGroup).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to inspect consumer group %q: %w", w.consumerGroup, err)
	}

	return pending.Count, nil
}

// processWork reads questions from the stream until the worker is stopped
func (w *Worker) processWork() {
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, ">"},
			Count:    1,
			Block:    w.config.BlockTime,
		}).Result()

		if err != nil {
			if err == redis.Nil || w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream",
				zap.Error(err),
			)
			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(message)
			}
		}
	}
}

// QuestionRequest is the payload of a question message
type QuestionRequest struct {
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
}

// AnswerEvent is published to the result stream
type AnswerEvent struct {
	RequestID   string    `json:"request_id"`
	Question    string    `json:"question"`
	FinalAnswer string    `json:"final_answer"`
	WorkerID    string    `json:"worker_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// ErrorEvent is published to the error stream
type ErrorEvent struct {
	RequestID string    `json:"request_id"`
	Error     string    `json:"error"`
	WorkerID  string    `json:"worker_id"`
	Timestamp time.Time `json:"timestamp"`
}

// handleMessage answers a single question message; the message is always acknowledged
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing question",
		zap.String("message_id", messageID),
	)

	request, err := w.parseQuestionRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse question request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.publishError(&QuestionRequest{RequestID: messageID}, err)
		w.acknowledgeMessage(messageID)
		return
	}

	if err := w.answerQuestion(request); err != nil {
		w.logger.Error("failed to answer question",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
		w.publishError(request, err)
	}

	w.acknowledgeMessage(messageID)
}

// parseQuestionRequest parses a question request from a Redis message
func (w *Worker) parseQuestionRequest(values map[string]interface{}) (*QuestionRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request QuestionRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question request: %w", err)
	}

	if strings.TrimSpace(request.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	return &request, nil
}

// answerQuestion runs the router and publishes the final answer.
// A question already read is finished even if Stop is called meanwhile.
func (w *Worker) answerQuestion(request *QuestionRequest) error {
	ctx := pipeline.WithRunID(context.WithoutCancel(w.ctx), request.RequestID)

	answer, err := w.answerer.Answer(ctx, request.Question)
	if err != nil {
		return fmt.Errorf("routing failed: %w", err)
	}

	event := AnswerEvent{
		RequestID:   request.RequestID,
		Question:    request.Question,
		FinalAnswer: answer,
		WorkerID:    w.id,
		Timestamp:   time.Now().UTC(),
	}

	if err := w.publish(w.resultStream, event); err != nil {
		return fmt.Errorf("failed to publish answer: %w", err)
	}

	w.logger.Info("published answer",
		zap.String("request_id", request.RequestID),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(request *QuestionRequest, err error) {
	event := ErrorEvent{
		RequestID: request.RequestID,
		Error:     err.Error(),
		WorkerID:  w.id,
		Timestamp: time.Now().UTC(),
	}

	if publishErr := w.publish(w.resultStream+".errors", event); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// publish appends a JSON payload to a stream under the "data" field
func (w *Worker) publish(stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Publishing must survive a cancelled worker context during shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), 5*time.Second)
	defer cancel()

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	return nil
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), 5*time.Second)
	defer cancel()

	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
