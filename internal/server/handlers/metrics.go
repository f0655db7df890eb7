package handlers

import (
	"net/http"

	"github.com/fieldworks/woms/internal/metrics"
)

// MetricsHandler serves a snapshot of the in-process counters.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, metrics.Collect())
}
