// liveness.go - Liveness check for the review service
package server

// NodeLiveness reports that the process is up and serving HTTP. Store and
// limiter health belong to readiness.
func (s *Server) NodeLiveness() bool {
	return true
}
