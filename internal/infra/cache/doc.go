// Package cache provides a tiered key-value cache: a fast in-memory LRU with
// per-entry TTL in front of a durable on-disk store with a global TTL.
//
// Get consults memory first, falls through to disk on a miss, and promotes
// disk hits back into memory. Set and Delete apply to both tiers so the two
// backends never drift out of sync for a given key.
package cache
