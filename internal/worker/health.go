package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aescanero/dago-library-assistant/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Readiness reports whether questions are being consumed
type Readiness interface {
	Ready(ctx context.Context) (pending int64, err error)
}

var _ Readiness = (*Worker)(nil)

// HealthServer serves liveness and readiness for the library worker
type HealthServer struct {
	port        int
	streamKey   string
	redisClient *redis.Client
	readiness   Readiness
	logger      *zap.Logger
	server      *http.Server
}

// NewHealthServer creates a health server for the question stream of cfg
func NewHealthServer(cfg *config.Config, redisClient *redis.Client, readiness Readiness, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		port:        cfg.HealthPort,
		streamKey:   cfg.StreamKey,
		redisClient: redisClient,
		readiness:   readiness,
		logger:      logger,
	}
}

// Handler returns the health check routes
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	return mux
}

// Start starts the health check server
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse is the body of /health and /ready
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth reports Redis reachability and the question backlog
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)

	length, err := hs.redisClient.XLen(ctx, hs.streamKey).Result()
	if err != nil {
		checks["redis"] = fmt.Sprintf("unhealthy: %v", err)
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["redis"] = "healthy"
	checks["questions"] = strconv.FormatInt(length, 10)

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Checks: checks,
	})
}

// handleReady is ready only while the worker consumes its group
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	pending, err := hs.readiness.Ready(ctx)
	if err != nil {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
			Checks: map[string]string{"worker": err.Error()},
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Checks: map[string]string{"pending": strconv.FormatInt(pending, 10)},
	})
}

// respondJSON writes a JSON response
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
