package handlers

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/fieldworks/woms/internal/errors"
)

// HealthResponse represents the aggregate health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse represents individual probe response
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker defines interface for health checkable components
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckerFunc adapts a plain function into a HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthManager manages health checks and probe states
type HealthManager struct {
	checkers map[string]HealthChecker
	version  string
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		version:  version,
	}
}

// RegisterChecker registers a health checker
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.checkers[name] = checker
}

// runHealthChecks executes all registered health checks
func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	checks := make(map[string]string)

	for name, checker := range hm.checkers {
		select {
		case <-ctx.Done():
			checks[name] = "timeout"
			return checks
		default:
			if err := checker.CheckHealth(ctx); err != nil {
				checks[name] = "unhealthy"
			} else {
				checks[name] = "healthy"
			}
		}
	}

	return checks
}

// determineOverallStatus determines overall health status
func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	degraded := false
	for _, status := range checks {
		if status == "unhealthy" {
			return "unhealthy"
		}
		if status == "timeout" {
			degraded = true
		}
	}

	if degraded {
		return "degraded"
	}

	return "healthy"
}

func (hm *HealthManager) respondUnhealthy(w http.ResponseWriter, r *http.Request, probe, status string, checks map[string]string) {
	appErr := apperrors.NewServiceUnavailableError(probe + " health check failed").
		WithDetail("status", status)
	if len(checks) > 0 {
		appErr = appErr.WithDetail("checks", checks)
	}
	apperrors.RespondWithError(w, r, appErr)
}

// HealthHandler handles aggregate health check requests
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := hm.runHealthChecks(checkCtx)
	status := hm.determineOverallStatus(checks)

	if status == "unhealthy" {
		hm.respondUnhealthy(w, r, "aggregate", status, checks)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler handles liveness probe requests.
// Liveness indicates if the application is running, so no dependency
// checks run here.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProbeResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// ReadinessHandler handles readiness probe requests.
// Readiness indicates if the application is ready to serve traffic.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := hm.runHealthChecks(checkCtx)
	status := hm.determineOverallStatus(checks)

	if status == "unhealthy" {
		hm.respondUnhealthy(w, r, "readiness", status, checks)
		return
	}

	respondJSON(w, http.StatusOK, ProbeResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}
