package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Run modes
const (
	ModeDemo   = "demo"
	ModeWorker = "worker"
)

// Config holds all configuration for the library assistant
type Config struct {
	// Process mode: demo answers the example questions, worker consumes a stream
	RunMode string `env:"RUN_MODE" envDefault:"demo"`

	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"library-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"library.questions"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"library-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"library.answers"`
	EventStream   string        `env:"EVENT_STREAM" envDefault:"library.steps"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// LLM configuration
	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4.1-nano"`
	LLMBaseURL     string        `env:"LLM_BASE_URL"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	LLMMaxTokens   int64         `env:"LLM_MAX_TOKENS" envDefault:"150"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Run the faq and checkout branches concurrently
	ParallelBranches bool `env:"PARALLEL_BRANCHES" envDefault:"false"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from a .env file (if present) and environment variables
func Load() (*Config, error) {
	// Variables already set in the environment win over .env
	_ = godotenv.Load()

	return Parse()
}

// Parse reads configuration from the current environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RunMode != ModeDemo && c.RunMode != ModeWorker {
		return fmt.Errorf("RUN_MODE must be one of: %s, %s", ModeDemo, ModeWorker)
	}

	if c.LLMProvider == "" {
		return fmt.Errorf("LLM_PROVIDER is required")
	}

	if c.LLMAPIKey == "" && c.LLMProvider != "ollama" {
		return fmt.Errorf("LLM_API_KEY (or OPENAI_API_KEY) is required")
	}

	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}

	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if c.RunMode == ModeWorker {
		return c.validateWorker()
	}

	return nil
}

// validateWorker checks the settings only the worker mode reads
func (c *Config) validateWorker() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{RunMode=%s, WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"LLMProvider=%s, LLMModel=%s, LLMBaseURL=%s, ParallelBranches=%v, HealthPort=%d, LogLevel=%s}",
		c.RunMode,
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.LLMProvider,
		c.LLMModel,
		c.LLMBaseURL,
		c.ParallelBranches,
		c.HealthPort,
		c.LogLevel,
	)
}
