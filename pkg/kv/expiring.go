// Package kv provides an in-memory key-value cache with per-entry expiry.
package kv

import (
	"sync"
	"time"

	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Expiring is a concurrency-safe map whose entries vanish ttl after they
// were set. Expiry is checked lazily on read; Purge reclaims the memory.
type Expiring[K comparable, V any] struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.RWMutex
	entries map[K]entry[V]
}

// NewExpiring creates an expiring store. A nil clock uses wall time.
func NewExpiring[K comparable, V any](ttl time.Duration, c clock.Clock) *Expiring[K, V] {
	if c == nil {
		c = clock.Real{}
	}
	return &Expiring[K, V]{ttl: ttl, clock: c, entries: map[K]entry[V]{}}
}

// Get returns the value at key if it has not expired. An entry is still
// valid at exactly ttl after it was set.
func (e *Expiring[K, V]) Get(key K) (V, bool) {
	e.mu.RLock()
	en, ok := e.entries[key]
	e.mu.RUnlock()

	if !ok || e.clock.Now().After(en.expiresAt) {
		var zero V
		return zero, false
	}
	return en.value, true
}

// Set stores value at key, restarting its ttl.
func (e *Expiring[K, V]) Set(key K, value V) {
	expires := e.clock.Now().Add(e.ttl)

	e.mu.Lock()
	e.entries[key] = entry[V]{value: value, expiresAt: expires}
	e.mu.Unlock()
}

// Purge removes expired entries and returns how many were dropped.
func (e *Expiring[K, V]) Purge() int {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for k, en := range e.entries {
		if now.After(en.expiresAt) {
			delete(e.entries, k)
			n++
		}
	}
	return n
}

func (e *Expiring[K, V]) Clear() {
	e.mu.Lock()
	clear(e.entries)
	e.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet purged.
func (e *Expiring[K, V]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}
