package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"carereviews/core/storage"
)

// BanStore persists bans of the in-memory limiter across restarts.
type BanStore interface {
	SaveBan(addr string, rec storage.BanRecord) error
	DeleteBan(addr string) error
	LoadBans() (map[string]storage.BanRecord, error)
}

// MemoryLimiter keeps a sliding window of request times per address.
// Suitable for a single replica.
type MemoryLimiter struct {
	opts   Options
	store  BanStore
	logger *zap.Logger
	now    func() time.Time

	lock      sync.Mutex
	lastSweep time.Time
	requests  map[string][]time.Time
	banned    map[string]time.Time
	banCounts map[string]int
}

// NewMemoryLimiter creates a limiter and restores persisted bans from store.
// store may be nil.
func NewMemoryLimiter(opts Options, store BanStore, logger *zap.Logger) (*MemoryLimiter, error) {
	l := &MemoryLimiter{
		opts:      opts.withDefaults(),
		store:     store,
		logger:    logger,
		now:       time.Now,
		requests:  make(map[string][]time.Time),
		banned:    make(map[string]time.Time),
		banCounts: make(map[string]int),
	}
	if store != nil {
		bans, err := store.LoadBans()
		if err != nil {
			return nil, err
		}
		for addr, rec := range bans {
			l.banned[addr] = rec.Until
			l.banCounts[addr] = rec.Count
		}
	}
	return l, nil
}

// Allow checks and updates the rate limit for addr.
func (l *MemoryLimiter) Allow(_ context.Context, addr string) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.isBannedLocked(addr) {
		return false, nil
	}

	now := l.now()
	l.sweepLocked(now)

	var recent []time.Time
	for _, t := range l.requests[addr] {
		if now.Sub(t) < l.opts.Window {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	l.requests[addr] = recent

	if len(recent) <= l.opts.MaxRequests {
		return true, nil
	}

	l.banCounts[addr]++
	count := l.banCounts[addr]
	dur := l.opts.banDuration(count)
	l.banLocked(addr, dur, count)
	l.logger.Warn("client banned for exceeding submission rate",
		zap.String("addr", addr),
		zap.Duration("duration", dur),
		zap.Int("violation", count),
	)
	return false, nil
}

// IsBanned reports whether addr is currently banned.
func (l *MemoryLimiter) IsBanned(_ context.Context, addr string) (bool, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.isBannedLocked(addr), nil
}

// sweepLocked drops windows of addresses that have been quiet for a full
// window. It runs at most once per window.
// NOTE: caller holds l.lock
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.opts.Window {
		return
	}
	l.lastSweep = now
	for addr, times := range l.requests {
		if len(times) == 0 || now.Sub(times[len(times)-1]) >= l.opts.Window {
			delete(l.requests, addr)
		}
	}
}

// NOTE: caller holds l.lock
func (l *MemoryLimiter) banLocked(addr string, dur time.Duration, count int) {
	until := l.now().Add(dur)
	l.banned[addr] = until
	delete(l.requests, addr)
	if l.store != nil {
		if err := l.store.SaveBan(addr, storage.BanRecord{Until: until, Count: count}); err != nil {
			l.logger.Error("failed to persist ban", zap.String("addr", addr), zap.Error(err))
		}
	}
}

// NOTE: caller holds l.lock
func (l *MemoryLimiter) isBannedLocked(addr string) bool {
	until, ok := l.banned[addr]
	if !ok {
		return false
	}
	if l.now().Before(until) {
		return true
	}
	// Expired: lift the ban but keep the violation count so the next ban is longer.
	delete(l.banned, addr)
	if l.store != nil {
		if err := l.store.DeleteBan(addr); err != nil {
			l.logger.Error("failed to remove persisted ban", zap.String("addr", addr), zap.Error(err))
		}
	}
	l.logger.Info("ban expired", zap.String("addr", addr))
	return false
}
