// health_handler.go - HTTP handlers for /health/liveness, /health/readiness and /nodehealth
package server

import (
	"net/http"
)

// HandleLiveness responds to /health/liveness
func (s *Server) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{Alive: s.NodeLiveness()})
}

// HandleReadiness responds to /health/readiness. Not-ready answers 503 so
// load balancers stop routing submissions here.
func (s *Server) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ready := s.NodeReadiness(r.Context())
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, ReadinessResponse{Ready: ready})
}

// NodeHealthResponse is the response type for the /nodehealth endpoint
type NodeHealthResponse struct {
	Status  string         `json:"status"`
	Metrics ServiceMetrics `json:"metrics"`
}

// HandleNodeHealth responds to /nodehealth (summary health)
func (s *Server) HandleNodeHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetServiceMetrics(r.Context())
	writeJSON(w, http.StatusOK, NodeHealthResponse{
		Status:  deriveStatus(metrics),
		Metrics: metrics,
	})
}

// deriveStatus maps metrics to a coarse status string (shared with /status).
func deriveStatus(m ServiceMetrics) string {
	switch {
	case !m.StoreReachable:
		return "unavailable"
	case !m.LimiterReachable:
		return "degraded"
	case m.ReviewCount == 0:
		return "empty"
	}
	return "healthy"
}
