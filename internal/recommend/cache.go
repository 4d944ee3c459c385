// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"sync"
	"time"
)

// responseCache is a TTL cache for recommendation responses, keyed by
// (playerID, context, count, featureVersion). Population is guarded by the
// engine's singleflight group so at most one recompute runs per key.
type responseCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration, maxEntries int) *responseCache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &responseCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// get returns a copy of the cached response, or nil on miss or expiry.
// A copy is returned so callers cannot mutate the shared entry.
func (c *responseCache) get(key string) *Response {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return copyResponse(entry.response)
}

// put stores a response. At capacity, expired entries are swept first; if
// nothing has expired yet, the entry closest to expiry is evicted so the
// cache never grows past maxEntries.
func (c *responseCache) put(key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			var oldestKey string
			var oldest time.Time
			for k, e := range c.entries {
				if oldestKey == "" || e.expiresAt.Before(oldest) {
					oldestKey, oldest = k, e.expiresAt
				}
			}
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// clear removes all cached entries.
func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// copyResponse copies a response so cached state stays immutable.
func copyResponse(resp *Response) *Response {
	items := make([]GameRecommendation, len(resp.Recommendations))
	copy(items, resp.Recommendations)

	out := *resp
	out.Recommendations = items
	return &out
}
