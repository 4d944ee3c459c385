// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package features

import (
	"context"
	"testing"

	"github.com/Uri-do/gaiming/internal/recommend"
)

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown player gets a cold-start snapshot", func(t *testing.T) {
		p := NewMemoryProvider()

		got, err := p.PlayerFeatures(ctx, 99)
		if err != nil {
			t.Fatalf("PlayerFeatures: %v", err)
		}
		if got.PlayerID != 99 || got.RiskLevel != 1 || len(got.PlayedGames) != 0 {
			t.Errorf("cold-start snapshot = %+v", got)
		}
	})

	t.Run("known player snapshot is returned by value", func(t *testing.T) {
		p := NewMemoryProvider()
		p.UpsertPlayer(recommend.PlayerFeatures{PlayerID: 1, VIPTier: 2, PlayedGames: []int64{5}})

		got, err := p.PlayerFeatures(ctx, 1)
		if err != nil {
			t.Fatalf("PlayerFeatures: %v", err)
		}
		if got.VIPTier != 2 || len(got.PlayedGames) != 1 {
			t.Errorf("snapshot = %+v", got)
		}
	})

	t.Run("game candidates honor the limit", func(t *testing.T) {
		p := NewMemoryProvider()
		p.UpdateGames([]recommend.GameFeatures{
			{GameID: 1}, {GameID: 2}, {GameID: 3},
		})

		got, err := p.GameCandidates(ctx, 2)
		if err != nil {
			t.Fatalf("GameCandidates: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d candidates, want 2", len(got))
		}

		all, err := p.GameCandidates(ctx, 0)
		if err != nil {
			t.Fatalf("GameCandidates: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("got %d candidates with no limit, want 3", len(all))
		}
	})

	t.Run("refreshes bump the version", func(t *testing.T) {
		p := NewMemoryProvider()
		if p.Version() != 0 {
			t.Fatalf("initial version = %d, want 0", p.Version())
		}

		p.UpdateGames([]recommend.GameFeatures{{GameID: 1}})
		p.UpdatePlayers([]recommend.PlayerFeatures{{PlayerID: 1}})
		p.UpsertPlayer(recommend.PlayerFeatures{PlayerID: 2})

		if p.Version() != 3 {
			t.Errorf("version = %d after three refreshes, want 3", p.Version())
		}
	})

	t.Run("players table replacement drops absent players", func(t *testing.T) {
		p := NewMemoryProvider()
		p.UpdatePlayers([]recommend.PlayerFeatures{
			{PlayerID: 1, VIPTier: 1},
			{PlayerID: 2, VIPTier: 2},
		})
		p.UpdatePlayers([]recommend.PlayerFeatures{{PlayerID: 2, VIPTier: 3}})

		cohort, err := p.Players(ctx, 0)
		if err != nil {
			t.Fatalf("Players: %v", err)
		}
		if len(cohort) != 1 || cohort[0].PlayerID != 2 || cohort[0].VIPTier != 3 {
			t.Errorf("cohort = %+v, want only player 2 at tier 3", cohort)
		}
	})

	t.Run("cohort limit caps results", func(t *testing.T) {
		p := NewMemoryProvider()
		p.UpdatePlayers([]recommend.PlayerFeatures{
			{PlayerID: 1}, {PlayerID: 2}, {PlayerID: 3},
		})

		cohort, err := p.Players(ctx, 2)
		if err != nil {
			t.Fatalf("Players: %v", err)
		}
		if len(cohort) != 2 {
			t.Errorf("got %d players, want 2", len(cohort))
		}
	})
}
