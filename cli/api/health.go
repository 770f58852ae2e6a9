package api

import (
	"encoding/json"

	"carereviews/api/server"
)

// GetHealthMetrics fetches /nodehealth.
func (c *Client) GetHealthMetrics() (server.NodeHealthResponse, error) {
	var out server.NodeHealthResponse
	resp, err := c.http.R().Get("/nodehealth")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// GetStatus fetches /status.
func (c *Client) GetStatus() (server.StatusResponse, error) {
	var out server.StatusResponse
	resp, err := c.http.R().Get("/status")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// GetLiveness fetches /health/liveness.
func (c *Client) GetLiveness() (bool, error) {
	var out server.LivenessResponse
	resp, err := c.http.R().Get("/health/liveness")
	if err := do(resp, err, &out); err != nil {
		return out.Alive, err
	}
	return out.Alive, nil
}

// GetReadiness fetches /health/readiness. A 503 answer means "not ready",
// not a failed call.
func (c *Client) GetReadiness() (bool, error) {
	resp, err := c.http.R().Get("/health/readiness")
	if err != nil {
		return false, err
	}
	var out server.ReadinessResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return false, apiError(resp)
	}
	return out.Ready, nil
}
