// readiness.go - Readiness check for the review service
package server

import (
	"context"
	"time"
)

// pinger is implemented by limiters backed by an external service.
type pinger interface {
	Ping(ctx context.Context) error
}

// NodeReadiness returns true if the review store is usable and, when the rate
// limiter lives in Redis, Redis answers.
func (s *Server) NodeReadiness(ctx context.Context) bool {
	return s.storeReachable() && s.limiterReachable(ctx)
}

func (s *Server) storeReachable() bool {
	return s.store != nil && s.store.Ping() == nil
}

func (s *Server) limiterReachable(ctx context.Context) bool {
	p, ok := s.limiter.(pinger)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(ctx) == nil
}
