package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryCapacity is the entry count used when no explicit capacity is given.
const DefaultMemoryCapacity = 1024

// Memory is an LRU cache with an optional per-entry TTL. It wraps
// hashicorp/golang-lru, which is already safe for concurrent access, so
// Memory adds no locking of its own.
type Memory struct {
	lru *lru.Cache[string, Entry]
}

// NewMemory builds a memory tier with the given capacity. A non-positive
// capacity falls back to DefaultMemoryCapacity.
func NewMemory(capacity int) (*Memory, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	l, err := lru.New[string, Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Memory{lru: l}, nil
}

// Get returns the raw value for key. A missing or expired entry is a miss;
// an expired entry is also evicted so it does not linger as dead weight.
func (m *Memory) Get(key string) ([]byte, bool) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	if entry.Expired(time.Now()) {
		m.lru.Remove(key)
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key with the given TTL (zero means no expiry).
// Writing over capacity evicts the least-recently-used entry.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.lru.Add(key, newEntry(value, ttl))
}

// Delete removes key, if present.
func (m *Memory) Delete(key string) {
	m.lru.Remove(key)
}

// Clear empties the cache.
func (m *Memory) Clear() {
	m.lru.Purge()
}

// Len returns the number of entries currently held.
func (m *Memory) Len() int {
	return m.lru.Len()
}
