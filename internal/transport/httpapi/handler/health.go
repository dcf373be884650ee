package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks connectivity of a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	mirror Pinger
	redis  Pinger
}

// NewHealthHandler creates a new health handler. Either pinger may be nil
// when the corresponding store is not configured.
func NewHealthHandler(mirror, redis Pinger) *HealthHandler {
	return &HealthHandler{
		mirror: mirror,
		redis:  redis,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
	Uptime  string            `json:"uptime,omitempty"`
}

var startTime = time.Now()

// GetHealth handles GET /health
// Basic health check - returns 200 OK if service is running
func GetHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
		Uptime:  time.Since(startTime).String(),
		Checks:  map[string]string{},
	}

	respondWithJSON(w, http.StatusOK, response)
}

// GetHealthDetailed handles GET /health/detailed
// Detailed health check - includes mirror and Redis connectivity
func (h *HealthHandler) GetHealthDetailed(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "ok"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.mirror != nil {
		if err := h.mirror.Ping(ctx); err != nil {
			checks["mirror"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			checks["mirror"] = "healthy"
		}
	} else {
		checks["mirror"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	checks["api"] = "healthy"

	httpStatus := http.StatusOK
	if status == "degraded" {
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:  status,
		Version: "1.0.0",
		Uptime:  time.Since(startTime).String(),
		Checks:  checks,
	}

	respondWithJSON(w, httpStatus, response)
}

// GetReadiness handles GET /health/ready
// The service can run without either store, so only a configured store
// that fails its ping makes the probe fail.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.mirror != nil {
		if err := h.mirror.Ping(ctx); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "mirror not ready")
			return
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "redis not ready")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetLiveness handles GET /health/live
func GetLiveness(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
