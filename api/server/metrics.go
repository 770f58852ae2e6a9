// metrics.go - Metrics collection for the review service
package server

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"
)

// ServiceMetrics holds health metrics for the service. No review content or
// patient data ever appears here.
type ServiceMetrics struct {
	UptimeSeconds    int64   `json:"uptime_seconds"`
	ReviewCount      int     `json:"review_count"`
	LastReviewDate   string  `json:"last_review_date,omitempty"`
	StoreReachable   bool    `json:"store_reachable"`
	LimiterReachable bool    `json:"limiter_reachable"`
	CPULoadPercent   float64 `json:"cpu_load_percent"`
	MemoryMB         float64 `json:"memory_mb"`
	DiskFreeMB       float64 `json:"disk_free_mb"`
}

// GetServiceMetrics returns current health metrics.
func (s *Server) GetServiceMetrics(ctx context.Context) ServiceMetrics {
	m := ServiceMetrics{
		UptimeSeconds:    int64(time.Since(s.startTime).Seconds()),
		StoreReachable:   s.storeReachable(),
		LimiterReachable: s.limiterReachable(ctx),
	}

	if m.StoreReachable {
		if n, err := s.store.CountReviews(); err == nil {
			m.ReviewCount = n
		} else {
			s.logger.Warn("count reviews failed", zap.Error(err))
		}
		if latest, err := s.store.LatestReviewDate(); err == nil {
			m.LastReviewDate = latest
		} else {
			s.logger.Warn("latest review date failed", zap.Error(err))
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.MemoryMB = float64(mem.Alloc) / (1024 * 1024)

	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		m.DiskFreeMB = float64(usage.Free) / (1024 * 1024)
	}

	// CPU usage since the previous call
	if cpuPercents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpuPercents) > 0 {
		m.CPULoadPercent = cpuPercents[0]
	}

	return m
}
