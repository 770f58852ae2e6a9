// status_handler.go - HTTP handler for /status
package server

import (
	"net/http"

	"carereviews/core/review"
)

// HandleStatus responds to /status with service status
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetServiceMetrics(r.Context())

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        deriveStatus(metrics),
		Uptime:        metrics.UptimeSeconds,
		ReviewCount:   metrics.ReviewCount,
		Version:       ServiceVersion(),
		APIVersion:    APIVersion(),
		SchemaVersion: review.SchemaVersion,
		LastReview:    metrics.LastReviewDate,
		Metrics:       metrics,
	})
}
