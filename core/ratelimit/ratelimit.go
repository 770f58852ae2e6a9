package ratelimit

import (
	"context"
	"time"
)

// Limiter throttles review submissions per client address.
type Limiter interface {
	// Allow records a request from addr and reports whether it is within the limit.
	// Going over the limit bans the address.
	Allow(ctx context.Context, addr string) (bool, error)
	// IsBanned reports whether addr is currently banned.
	IsBanned(ctx context.Context, addr string) (bool, error)
}

// Options configures a limiter.
type Options struct {
	Window       time.Duration
	MaxRequests  int
	BanDurations []time.Duration
}

// Progressive ban durations
var DefaultBanDurations = []time.Duration{
	10 * time.Minute,
	1 * time.Hour,
	24 * time.Hour,
}

const permabanDuration = 100 * 365 * 24 * time.Hour // effectively permanent

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 60 * time.Second
	}
	if o.MaxRequests <= 0 {
		o.MaxRequests = 30
	}
	if len(o.BanDurations) == 0 {
		o.BanDurations = DefaultBanDurations
	}
	return o
}

// banDuration returns the ban length for the n-th violation (1-based).
func (o Options) banDuration(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > len(o.BanDurations) {
		return permabanDuration
	}
	return o.BanDurations[n-1]
}
