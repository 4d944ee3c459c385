// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package features provides feature snapshot storage for the scoring
// pipeline. The in-memory provider holds immutable player and game
// snapshots swapped atomically on refresh; the version counter ties cached
// responses to the snapshot generation that produced them.
package features

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// MemoryProvider serves feature snapshots from memory. It implements both
// the engine's FeatureProvider and the collaborative strategy's
// CohortSource. Reads see a consistent snapshot; refreshes replace whole
// tables and bump the version.
type MemoryProvider struct {
	mu      sync.RWMutex
	players map[int64]recommend.PlayerFeatures
	games   []recommend.GameFeatures
	version atomic.Int64
}

// NewMemoryProvider creates an empty provider at version zero.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		players: make(map[int64]recommend.PlayerFeatures),
	}
}

// PlayerFeatures returns the current snapshot for a player. Unknown
// players get a minimal cold-start snapshot rather than an error, so new
// sign-ups still receive popularity and content driven results.
func (p *MemoryProvider) PlayerFeatures(_ context.Context, playerID int64) (*recommend.PlayerFeatures, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if features, ok := p.players[playerID]; ok {
		return &features, nil
	}
	return &recommend.PlayerFeatures{PlayerID: playerID, RiskLevel: 1}, nil
}

// GameCandidates returns up to limit game snapshots.
func (p *MemoryProvider) GameCandidates(_ context.Context, limit int) ([]recommend.GameFeatures, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.games)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]recommend.GameFeatures, n)
	copy(out, p.games[:n])
	return out, nil
}

// Players returns up to limit player snapshots for neighbor search.
func (p *MemoryProvider) Players(_ context.Context, limit int) ([]recommend.PlayerFeatures, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]recommend.PlayerFeatures, 0, len(p.players))
	for _, features := range p.players {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, features)
	}
	return out, nil
}

// Version identifies the current snapshot generation.
func (p *MemoryProvider) Version() int64 {
	return p.version.Load()
}

// UpdatePlayers replaces the player table and bumps the version.
func (p *MemoryProvider) UpdatePlayers(players []recommend.PlayerFeatures) {
	table := make(map[int64]recommend.PlayerFeatures, len(players))
	for i := range players {
		table[players[i].PlayerID] = players[i]
	}

	p.mu.Lock()
	p.players = table
	p.mu.Unlock()
	p.version.Add(1)
}

// UpdateGames replaces the game table and bumps the version.
func (p *MemoryProvider) UpdateGames(games []recommend.GameFeatures) {
	table := make([]recommend.GameFeatures, len(games))
	copy(table, games)

	p.mu.Lock()
	p.games = table
	p.mu.Unlock()
	p.version.Add(1)
}

// UpsertPlayer replaces one player's snapshot and bumps the version.
func (p *MemoryProvider) UpsertPlayer(features recommend.PlayerFeatures) {
	p.mu.Lock()
	p.players[features.PlayerID] = features
	p.mu.Unlock()
	p.version.Add(1)
}
