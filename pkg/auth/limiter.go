package auth

import (
	"sync"
	"time"
)

// LimiterConfig defines the sliding window used to throttle failed logins.
type LimiterConfig struct {
	Window    time.Duration // How far back failures are counted
	Threshold int           // Failures within Window that block a client
}

// DefaultLimiterConfig allows 5 failures per 5 minutes.
var DefaultLimiterConfig = LimiterConfig{
	Window:    300 * time.Second,
	Threshold: 5,
}

// Limiter tracks recent login failures per client key. Old failures are
// pruned lazily whenever a key is touched; there is no background sweeper.
type Limiter struct {
	mu       sync.Mutex
	config   LimiterConfig
	clock    Clock
	failures map[string][]time.Time
}

// NewLimiter creates a limiter. Zero fields in config fall back to
// DefaultLimiterConfig and a nil clock to the wall clock.
func NewLimiter(config LimiterConfig, clock Clock) *Limiter {
	if config.Window <= 0 {
		config.Window = DefaultLimiterConfig.Window
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultLimiterConfig.Threshold
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{
		config:   config,
		clock:    clock,
		failures: make(map[string][]time.Time),
	}
}

// RecordFailure appends the current time to the key's failure log.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.failures[key] = append(l.prune(key, now), now)
}

// IsBlocked reports whether key has reached the threshold within the window.
func (l *Limiter) IsBlocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(key, l.clock.Now())) >= l.config.Threshold
}

// Clear drops every recorded failure for key.
func (l *Limiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, key)
}

// Failures returns the number of failures for key still inside the window.
func (l *Limiter) Failures(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(key, l.clock.Now()))
}

// Len returns the number of keys with a non-empty failure log.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}

// Config returns the effective configuration.
func (l *Limiter) Config() LimiterConfig {
	return l.config
}

// prune drops failures older than now-window. Caller must hold l.mu.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	log, ok := l.failures[key]
	if !ok {
		return nil
	}

	cutoff := now.Add(-l.config.Window)
	i := 0
	for i < len(log) && log[i].Before(cutoff) {
		i++
	}
	if i == len(log) {
		delete(l.failures, key)
		return nil
	}
	if i > 0 {
		log = append(log[:0], log[i:]...)
		l.failures[key] = log
	}
	return log
}
