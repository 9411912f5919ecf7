// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/watchly/watchly/internal/metrics"
	"github.com/watchly/watchly/internal/models"
)

// entry is a cached catalog response with its expiration time.
type entry struct {
	metas     []models.Meta
	expiresAt time.Time
}

// ResponseCache is a thread-safe in-memory cache for built catalog
// responses. Entries expire after the configured TTL and the cache is
// bounded: when maxEntries is reached the entry closest to expiry is
// evicted to make room.
type ResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	stats      Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a response cache with the given TTL and entry bound and
// starts a background goroutine that sweeps expired entries every five
// minutes. A maxEntries of zero or less disables the bound.
func New(ttl time.Duration, maxEntries int) *ResponseCache {
	c := &ResponseCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stats: Stats{
			LastCleanup: time.Now(),
		},
	}

	go c.cleanupLoop()

	return c
}

// Key builds the cache key for a catalog request. Credentials are
// hashed so raw Stremio login details never appear in cache keys or
// log output derived from them.
func Key(credentials, catalogType, catalogID string) string {
	sum := sha256.Sum256([]byte(credentials))
	return fmt.Sprintf("%x:%s:%s", sum[:8], catalogType, catalogID)
}

// Get returns the cached metas for a key, or (nil, false) when the key
// is absent or its entry has expired. Expired entries are removed on
// access.
func (c *ResponseCache) Get(key string) ([]models.Meta, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return e.metas, true
}

// Set stores metas under the given key with the default TTL.
func (c *ResponseCache) Set(key string, metas []models.Meta) {
	c.SetWithTTL(key, metas, c.ttl)
}

// SetWithTTL stores metas under the given key with a custom TTL,
// evicting the entry closest to expiry if the cache is full.
func (c *ResponseCache) SetWithTTL(key string, metas []models.Meta, ttl time.Duration) {
	c.mu.Lock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = entry{
		metas:     metas,
		expiresAt: time.Now().Add(ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = total
	c.stats.mu.Unlock()
}

// evictOldestLocked removes the entry with the earliest expiration.
// Caller must hold the write lock.
func (c *ResponseCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.recordEviction()
	}
}

// Delete removes a single entry. Safe to call for absent keys.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries. Called after a catalog refresh so clients
// see the updated recommendations immediately.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// GetStats returns a snapshot of the cache counters.
func (c *ResponseCache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the hit rate as a percentage.
func (c *ResponseCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// cleanupLoop periodically removes expired entries.
func (c *ResponseCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes all expired entries.
func (c *ResponseCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := int64(0)
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordHit() {
	metrics.CacheHits.Inc()
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordMiss() {
	metrics.CacheMisses.Inc()
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}
