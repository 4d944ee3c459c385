// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"
	"testing"

	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/bandit"
)

func TestBandit_Score(t *testing.T) {
	player := &recommend.PlayerFeatures{PlayerID: 1}
	games := []recommend.GameFeatures{{GameID: 1}, {GameID: 2}, {GameID: 3}}

	t.Run("deterministic per request", func(t *testing.T) {
		b := NewBandit(bandit.NewStore(), 42)
		sc := recommend.ScoringContext{RequestID: "req-determinism", MaxCandidates: 100}

		first, err := b.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		second, err := b.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}

		if len(first) != len(second) {
			t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].GameID != second[i].GameID || first[i].Score != second[i].Score {
				t.Errorf("position %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})

	t.Run("distinct requests diverge", func(t *testing.T) {
		b := NewBandit(bandit.NewStore(), 42)

		first, err := b.Score(context.Background(), player, games, recommend.ScoringContext{RequestID: "req-a"})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		other, err := b.Score(context.Background(), player, games, recommend.ScoringContext{RequestID: "req-b"})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}

		same := true
		for i := range first {
			if first[i].Score != other[i].Score {
				same = false
				break
			}
		}
		if same {
			t.Error("distinct request IDs produced identical samples")
		}
	})

	t.Run("posterior dominance wins over many requests", func(t *testing.T) {
		store := bandit.NewStore()
		// Game 2 converts nearly always, games 1 and 3 nearly never.
		for i := 0; i < 200; i++ {
			store.RecordSuccess(1, bandit.ArmForGame(2))
			store.RecordFailure(1, bandit.ArmForGame(1))
			store.RecordFailure(1, bandit.ArmForGame(3))
		}
		b := NewBandit(store, 42)

		wins := 0
		const rounds = 100
		for i := 0; i < rounds; i++ {
			sc := recommend.ScoringContext{RequestID: "req-" + string(rune('a'+i%26)) + string(rune('0'+i/26))}
			out, err := b.Score(context.Background(), player, games, sc)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if out[0].GameID == 2 {
				wins++
			}
		}
		if wins < rounds*9/10 {
			t.Errorf("dominant arm ranked first %d/%d rounds", wins, rounds)
		}
	})

	t.Run("reasons reflect trial history", func(t *testing.T) {
		store := bandit.NewStore()
		store.RecordSuccess(1, bandit.ArmForGame(1))
		b := NewBandit(store, 42)

		out, err := b.Score(context.Background(), player, games, recommend.ScoringContext{RequestID: "req-r"})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		for _, cand := range out {
			want := "exploring"
			if cand.GameID == 1 {
				want = "reward_history"
			}
			if len(cand.Reasons) != 1 || cand.Reasons[0] != want {
				t.Errorf("game %d reasons = %v, want [%s]", cand.GameID, cand.Reasons, want)
			}
		}
	})

	t.Run("nil player yields no candidates", func(t *testing.T) {
		b := NewBandit(bandit.NewStore(), 42)
		out, err := b.Score(context.Background(), nil, games, recommend.ScoringContext{})
		if err != nil || out != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", out, err)
		}
	})
}
