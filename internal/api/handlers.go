// Package api contains the HTTP handlers for the versioning service
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"flowledger/pkg/models"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "flowledger",
		Version:   "1.0.0",
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		// Log error but can't change response at this point
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// statusFor maps engine error kinds to HTTP status codes. The taxonomy is
// the engine's; the mapping to status codes is this layer's concern.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrWorkflowNotFound):
		return http.StatusNotFound, "Workflow Not Found"
	case errors.Is(err, models.ErrVersionNotFound):
		return http.StatusNotFound, "Version Not Found"
	case errors.Is(err, models.ErrInvalidVersionFormat):
		return http.StatusBadRequest, "Invalid Version Format"
	case errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict, "Concurrent Modification"
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Store Unavailable"
	case errors.Is(err, models.ErrSnapshotMissing):
		return http.StatusInternalServerError, "Snapshot Missing"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
