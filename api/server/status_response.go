// status_response.go - JSON response structs for status/health endpoints
package server

// StatusResponse represents the JSON structure for /status endpoint
type StatusResponse struct {
	Status        string         `json:"status"`
	Uptime        int64          `json:"uptime_seconds"`
	ReviewCount   int            `json:"review_count"`
	Version       string         `json:"version"`
	APIVersion    string         `json:"api_version"`
	SchemaVersion string         `json:"schema_version"`
	LastReview    string         `json:"last_review_date,omitempty"`
	Metrics       ServiceMetrics `json:"metrics"`
}

// LivenessResponse for /health/liveness
type LivenessResponse struct {
	Alive bool `json:"alive"`
}

// ReadinessResponse for /health/readiness
type ReadinessResponse struct {
	Ready bool `json:"ready"`
}
