package cache

import "time"

// Tiered fronts a Disk backend with a Memory backend. Get checks memory
// first; a disk hit is promoted into memory without a TTL of its own,
// leaving eviction to the memory tier's LRU policy. Set and Delete apply to
// both tiers so they never disagree about a key's presence.
type Tiered struct {
	memory *Memory
	disk   *Disk
}

// NewTiered combines an existing memory and disk tier into one cache.
func NewTiered(memory *Memory, disk *Disk) *Tiered {
	return &Tiered{memory: memory, disk: disk}
}

// Get returns the raw value for key, promoting disk hits into memory.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if value, ok := t.memory.Get(key); ok {
		return value, true
	}
	value, ok := t.disk.Get(key)
	if !ok {
		return nil, false
	}
	t.memory.Set(key, value, 0)
	return value, true
}

// Set writes value under key to both tiers.
func (t *Tiered) Set(key string, value []byte, ttl time.Duration) error {
	t.memory.Set(key, value, ttl)
	return t.disk.Set(key, value, ttl)
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(key string) error {
	t.memory.Delete(key)
	return t.disk.Delete(key)
}

// Clear empties both tiers.
func (t *Tiered) Clear() error {
	t.memory.Clear()
	return t.disk.Clear()
}
