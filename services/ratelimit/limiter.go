// Package ratelimit enforces the per-client daily query quota.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// DefaultWindow is the trailing window quotas are counted over.
const DefaultWindow = 24 * time.Hour

// Result represents the outcome of a quota check
type Result struct {
	Allowed          bool
	QueriesRemaining int
	QueriesToday     int
}

// Config holds limiter settings
type Config struct {
	Limit      int
	Window     time.Duration
	MaxClients int
}

type history struct {
	stamps []time.Time
}

// Limiter tracks admitted query timestamps per client over a sliding window.
// Clients are kept in an LRU so the number of tracked clients stays bounded.
type Limiter struct {
	mu      sync.Mutex
	clients *simplelru.LRU[string, *history]
	limit   int
	window  time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewLimiter creates a new Limiter instance
func NewLimiter(cfg Config, logger *zap.Logger) (*Limiter, error) {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	clients, err := simplelru.NewLRU[string, *history](cfg.MaxClients, nil)
	if err != nil {
		return nil, err
	}
	return &Limiter{
		clients: clients,
		limit:   cfg.Limit,
		window:  cfg.Window,
		now:     time.Now,
		logger:  logger,
	}, nil
}

// Limit returns the configured per-window quota.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check admits one query using the configured limit.
func (l *Limiter) Check(clientID string) Result {
	return l.CheckLimit(clientID, l.limit)
}

// CheckLimit prunes the client's stale timestamps and admits the query if
// the client has made fewer than limit queries in the window. A denied
// check records nothing.
func (l *Limiter) CheckLimit(clientID string, limit int) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	h, ok := l.clients.Get(clientID)
	if !ok {
		h = &history{}
		l.clients.Add(clientID, h)
	}
	h.stamps = prune(h.stamps, now.Add(-l.window))
	count := len(h.stamps)

	if count >= limit {
		return Result{Allowed: false, QueriesRemaining: 0, QueriesToday: count}
	}

	h.stamps = append(h.stamps, now)
	return Result{
		Allowed:          true,
		QueriesRemaining: limit - count - 1,
		QueriesToday:     count + 1,
	}
}

// Usage returns the number of queries the client has made in the window
// without recording a new one.
func (l *Limiter) Usage(clientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.clients.Peek(clientID)
	if !ok {
		return 0
	}
	return len(prune(h.stamps, l.now().Add(-l.window)))
}

// Sweep drops clients whose timestamps have all left the window and
// returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for _, key := range l.clients.Keys() {
		h, ok := l.clients.Peek(key)
		if !ok {
			continue
		}
		h.stamps = prune(h.stamps, cutoff)
		if len(h.stamps) == 0 {
			l.clients.Remove(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clients.Len()
}

// StartCleanupWorker periodically sweeps idle clients until ctx is done.
func (l *Limiter) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("started rate limit cleanup worker",
		zap.Duration("interval", interval),
		zap.Duration("window", l.window))

	for {
		select {
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				l.logger.Debug("swept idle rate limit clients", zap.Int("removed", removed))
			}
		case <-ctx.Done():
			l.logger.Info("stopping rate limit cleanup worker")
			return
		}
	}
}

// prune returns the stamps newer than cutoff. Stamps are appended in time
// order so the first in-window entry bounds the result.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			if i == 0 {
				return stamps
			}
			return append([]time.Time(nil), stamps[i:]...)
		}
	}
	return nil
}
