package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps windows in process. Expired windows are dropped by
// Run so the key space stays bounded by the clients seen in one window.
type MemoryLimiter struct {
	logger       *logrus.Logger
	policy       Policy
	timeProvider func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter(logger *logrus.Logger, policy Policy, opts *Options) *MemoryLimiter {
	return &MemoryLimiter{
		logger:       logger,
		policy:       policy,
		timeProvider: timeProvider(opts),
		windows:      make(map[string]*window),
	}
}

func (m *MemoryLimiter) Policy() Policy {
	return m.policy
}

func (m *MemoryLimiter) Admit(_ context.Context, client, route string) (Decision, error) {
	now := m.timeProvider()
	key := client + "|" + route

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(m.policy.Window)}
		m.windows[key] = w
		return Decision{Allowed: true, Count: w.count, ResetAt: w.resetAt}, nil
	}
	if w.count < m.policy.MaxRequests {
		w.count++
		return Decision{Allowed: true, Count: w.count, ResetAt: w.resetAt}, nil
	}
	return Decision{Allowed: false, Count: w.count, ResetAt: w.resetAt}, nil
}

// Sweep removes every window whose reset time has passed and returns how
// many were removed.
func (m *MemoryLimiter) Sweep() int {
	now := m.timeProvider()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Run sweeps on every tick until ctx is done.
func (m *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				m.logger.WithField("removed", removed).Debug("swept expired rate limit windows")
			}
		}
	}
}
