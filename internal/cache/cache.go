// Package cache provides a small expiring memo for computed file
// summaries, keeping repeated polls from re-parsing or re-digesting a
// document that has not changed.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value V
	stamp time.Time
}

// Memo is a keyed store whose entries expire individually after a fixed
// TTL. A zero TTL disables expiry. Safe for concurrent use.
type Memo[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[K]entry[V]
}

// New returns an empty Memo whose entries expire after ttl.
func New[K comparable, V any](ttl time.Duration) *Memo[K, V] {
	return &Memo[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the live value stored under key. An expired entry reads
// as missing; it stays in place until the next Put overwrites it.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.expired(e.stamp) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, restarting its expiry clock.
func (m *Memo[K, V]) Put(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[V]{value: value, stamp: time.Now()}
}

// Invalidate drops key immediately.
func (m *Memo[K, V]) Invalidate(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len counts stored entries, expired ones included.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memo[K, V]) expired(stamp time.Time) bool {
	return m.ttl > 0 && time.Since(stamp) >= m.ttl
}
