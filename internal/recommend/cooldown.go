// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CooldownTracker remembers which games were recently served to each
// player so the assembler can suppress them within the cooldown window.
// Bounded per player count via LRU; per-player maps are pruned lazily on
// read.
type CooldownTracker struct {
	window  time.Duration
	players *lru.Cache[int64, *cooldownEntry]

	// now is swappable for tests.
	now func() time.Time
}

type cooldownEntry struct {
	mu     sync.Mutex
	served map[int64]time.Time
}

// NewCooldownTracker creates a tracker covering up to maxPlayers players.
func NewCooldownTracker(window time.Duration, maxPlayers int) (*CooldownTracker, error) {
	players, err := lru.New[int64, *cooldownEntry](maxPlayers)
	if err != nil {
		return nil, err
	}
	return &CooldownTracker{
		window:  window,
		players: players,
		now:     time.Now,
	}, nil
}

// RecordServed marks the games as served to the player now.
func (c *CooldownTracker) RecordServed(playerID int64, gameIDs []int64) {
	if c.window <= 0 || len(gameIDs) == 0 {
		return
	}

	entry, ok := c.players.Get(playerID)
	if !ok {
		entry = &cooldownEntry{served: make(map[int64]time.Time, len(gameIDs))}
		c.players.Add(playerID, entry)
	}

	now := c.now()
	entry.mu.Lock()
	for _, id := range gameIDs {
		entry.served[id] = now
	}
	entry.mu.Unlock()
}

// Recent returns the set of games served to the player within the window.
func (c *CooldownTracker) Recent(playerID int64) map[int64]struct{} {
	if c.window <= 0 {
		return nil
	}

	entry, ok := c.players.Get(playerID)
	if !ok {
		return nil
	}

	cutoff := c.now().Add(-c.window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	out := make(map[int64]struct{}, len(entry.served))
	for id, at := range entry.served {
		if at.Before(cutoff) {
			delete(entry.served, id)
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
