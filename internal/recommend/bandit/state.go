// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package bandit maintains per-player Thompson Sampling state. Each
// (player, arm) pair carries Beta posterior counts updated by the feedback
// pipeline and sampled by the bandit strategy at scoring time.
package bandit

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/Uri-do/gaiming/internal/metrics"
)

const shardCount = 64

// Posterior is a read snapshot of one arm's Beta posterior parameters.
// Alpha = successes + 1, Beta = failures + 1 (uniform prior).
type Posterior struct {
	Alpha float64
	Beta  float64
}

// Trials returns the number of observed outcomes behind the posterior.
func (p Posterior) Trials() int64 {
	return int64(p.Alpha + p.Beta - 2)
}

// armKey identifies one posterior.
type armKey struct {
	playerID int64
	arm      string
}

// counts holds the raw outcome tallies for one arm.
type counts struct {
	successes int64
	failures  int64
}

type shard struct {
	mu   sync.RWMutex
	arms map[armKey]*counts
}

// Store holds bandit state sharded by player so concurrent updates for
// different players never contend. Updates for the same player serialize on
// one shard mutex, which keeps read-modify-write transitions atomic.
type Store struct {
	shards [shardCount]shard
}

// NewStore creates an empty bandit store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].arms = make(map[armKey]*counts)
	}
	return s
}

// ArmForGame is the canonical arm identifier for a game.
func ArmForGame(gameID int64) string {
	return fmt.Sprintf("game:%d", gameID)
}

func (s *Store) shardFor(playerID int64) *shard {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", playerID)
	return &s.shards[h.Sum64()%shardCount]
}

// Posterior returns the current posterior for a (player, arm) pair.
// An unseen arm yields the uniform prior Beta(1, 1).
func (s *Store) Posterior(playerID int64, arm string) Posterior {
	sh := s.shardFor(playerID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	c, ok := sh.arms[armKey{playerID: playerID, arm: arm}]
	if !ok {
		return Posterior{Alpha: 1, Beta: 1}
	}
	return Posterior{
		Alpha: float64(c.successes) + 1,
		Beta:  float64(c.failures) + 1,
	}
}

// RecordSuccess increments the success count for a (player, arm) pair.
func (s *Store) RecordSuccess(playerID int64, arm string) {
	s.record(playerID, arm, true)
}

// RecordFailure increments the failure count for a (player, arm) pair.
func (s *Store) RecordFailure(playerID int64, arm string) {
	s.record(playerID, arm, false)
}

func (s *Store) record(playerID int64, arm string, success bool) {
	sh := s.shardFor(playerID)
	key := armKey{playerID: playerID, arm: arm}

	sh.mu.Lock()
	c, ok := sh.arms[key]
	if !ok {
		c = &counts{}
		sh.arms[key] = c
	}
	if success {
		c.successes++
	} else {
		c.failures++
	}
	sh.mu.Unlock()

	outcome := "failure"
	if success {
		outcome = "success"
	}
	metrics.BanditUpdates.WithLabelValues(outcome).Inc()
}

// Snapshot returns all posteriors for a player. Used by diagnostics and
// tests; scoring uses Posterior per arm.
func (s *Store) Snapshot(playerID int64) map[string]Posterior {
	sh := s.shardFor(playerID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	out := make(map[string]Posterior)
	for key, c := range sh.arms {
		if key.playerID != playerID {
			continue
		}
		out[key.arm] = Posterior{
			Alpha: float64(c.successes) + 1,
			Beta:  float64(c.failures) + 1,
		}
	}
	return out
}

// Len returns the total number of tracked arms across all players.
func (s *Store) Len() int {
	total := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		total += len(s.shards[i].arms)
		s.shards[i].mu.RUnlock()
	}
	return total
}
