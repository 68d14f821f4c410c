// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Memory is a single-process limiter. State is lost on restart.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Memory limiter
type Option func(*Memory)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// WithoutSweeper disables the background cleanup goroutine
func WithoutSweeper() Option {
	return func(m *Memory) { m.stop = nil }
}

// NewMemory creates a limiter and starts a sweeper that drops expired
// entries once per window. Call Close to stop it.
func NewMemory(p Policy, opts ...Option) *Memory {
	m := &Memory{
		policy:  p,
		now:     time.Now,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.stop != nil {
		go m.sweepLoop()
	} else {
		close(m.done)
	}

	return m
}

// Allow admits the first attempt of a window unconditionally, then
// rejects once the count exceeds the policy maximum
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		m.entries[key] = &entry{count: 1, resetAt: now.Add(m.policy.Window)}
		return true, nil
	}

	e.count++
	return e.count <= m.policy.Max, nil
}

// Len returns the number of tracked keys
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.policy.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops every entry whose window has ended
func (m *Memory) sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Close stops the sweeper. Safe to call more than once.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		if m.stop != nil {
			close(m.stop)
		}
	})
	<-m.done
	return nil
}
