package handler

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"heritax/internal/observability"
	"heritax/pkg/logger"
)

// SystemHandler serves health, readiness, and the stats snapshot.
type SystemHandler struct {
	redisClient *redis.Client
	metrics     *observability.Metrics
	logger      logger.Logger
	startTime   time.Time
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(redisClient *redis.Client, metrics *observability.Metrics, log logger.Logger) *SystemHandler {
	return &SystemHandler{
		redisClient: redisClient,
		metrics:     metrics,
		logger:      log,
		startTime:   time.Now(),
	}
}

// Health reports liveness. The engine holds no connections, so a responding
// process is a healthy one.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"service":        "simulation",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Ready reports readiness. Rate limiting and idempotency depend on Redis, so
// an unreachable Redis means the service cannot take traffic.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.redisClient.Ping(r.Context()).Err(); err != nil {
		h.logger.Error("Redis ping failed", map[string]interface{}{"error": err.Error()})
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "redis unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ready",
		"service":          "simulation",
		"redis_latency_ms": time.Since(start).Milliseconds(),
	})
}

// Stats returns the aggregate counters snapshot.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}
