package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/dago-adapters/pkg/llm"
	"github.com/aescanero/dago-library-assistant/internal/completion"
	"github.com/aescanero/dago-library-assistant/internal/config"
	"github.com/aescanero/dago-library-assistant/internal/library"
	"github.com/aescanero/dago-library-assistant/internal/pipeline"
	"github.com/aescanero/dago-library-assistant/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting library assistant",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("mode", cfg.RunMode),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	completer, err := initCompleter(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize completion client", zap.Error(err))
	}
	logger.Info("completion client initialized",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.LLMModel),
	)

	switch cfg.RunMode {
	case config.ModeWorker:
		runWorker(cfg, completer, logger)
	default:
		router, err := library.NewRouter(completer, logger,
			pipeline.WithParallelLevels(cfg.ParallelBranches),
		)
		if err != nil {
			logger.Fatal("failed to create router", zap.Error(err))
		}
		logger.Debug("router graph", zap.String("mermaid", router.Graph().Mermaid()))

		if err := runDemo(context.Background(), router, library.ExampleQuestions, os.Stdout); err != nil {
			logger.Error("demo run failed", zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
	}
}

// runDemo answers each question in turn and prints the final answers
func runDemo(ctx context.Context, answerer worker.Answerer, questions []string, out io.Writer) error {
	for _, q := range questions {
		answer, err := answerer.Answer(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to answer %q: %w", q, err)
		}
		fmt.Fprintf(out, "\n--- Final Answer ---\n%s\n", answer)
	}
	return nil
}

// runWorker serves questions from Redis Streams until SIGINT or SIGTERM
func runWorker(cfg *config.Config, completer completion.Completer, logger *zap.Logger) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	events := worker.NewStepEventPublisher(redisClient, cfg.EventStream, logger)

	router, err := library.NewRouter(completer, logger,
		pipeline.WithParallelLevels(cfg.ParallelBranches),
		pipeline.WithObserver(events),
	)
	if err != nil {
		logger.Fatal("failed to create router", zap.Error(err))
	}
	logger.Info("router initialized", zap.Strings("order", router.Graph().Order()))

	w := worker.NewWorker(cfg, redisClient, router, logger)
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	healthServer := worker.NewHealthServer(cfg, redisClient, w, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("library worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	logger.Info("worker stopped gracefully")
}

// initLogger initializes the logger. Logs go to stderr; stdout carries answers.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// initCompleter builds the completion collaborator for the configured provider.
// OpenAI goes through openai-go; every other provider through dago-adapters.
func initCompleter(cfg *config.Config, logger *zap.Logger) (completion.Completer, error) {
	if cfg.LLMProvider == "openai" {
		c, err := completion.NewOpenAI(func(o *completion.OpenAIOptions) {
			o.APIKey = cfg.LLMAPIKey
			o.BaseURL = cfg.LLMBaseURL
			o.Model = cfg.LLMModel
			o.Temperature = cfg.LLMTemperature
			o.MaxCompletionTokens = cfg.LLMMaxTokens
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai completer: %w", err)
		}
		return completion.WithTimeout(c, cfg.LLMTimeout), nil
	}

	client, err := llm.NewClient(&llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLMProvider, err)
	}

	adapter, err := completion.NewAdapter(client, cfg.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s completer: %w", cfg.LLMProvider, err)
	}

	return completion.WithTimeout(adapter, cfg.LLMTimeout), nil
}
