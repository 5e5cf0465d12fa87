package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/database"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
	readinessTimeout        = 2 * time.Second
)

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status string `json:"status"`
	// Checks reports each dependency probed by readiness
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealthz provides a basic liveness check
// @Summary Liveness check
// @Description Returns OK if the process is serving requests
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	}
}

// HandleReadyz reports ready only when the duel store answers a ping.
// The judge is never probed: it fails open and cannot block gameplay.
// @Summary Readiness check
// @Description Returns OK if the duel store is reachable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func HandleReadyz(dbPool database.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("Readiness check failed", "check", "database", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: healthStatusUnavailable,
				Checks: map[string]string{"database": healthStatusUnavailable},
			})
			return
		}

		respondJSON(w, http.StatusOK, HealthResponse{
			Status: healthStatusOK,
			Checks: map[string]string{"database": healthStatusOK},
		})
	}
}
