// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"
	"testing"

	"github.com/Uri-do/gaiming/internal/recommend"
)

func TestContent_Score(t *testing.T) {
	c := NewContent(DefaultContentWeights())

	player := &recommend.PlayerFeatures{
		PlayerID:           1,
		FavoriteCategories: map[string]float64{"slots": 1.0},
		FavoriteProviders:  map[string]float64{"netent": 0.8},
		FavoriteRTPBands:   map[string]float64{"high": 0.6},
	}
	games := []recommend.GameFeatures{
		{GameID: 1, Category: "slots", Provider: "netent", RTP: 97.0},
		{GameID: 2, Category: "slots", Provider: "playngo", RTP: 95.0},
		{GameID: 3, Category: "table", Provider: "evolution", RTP: 99.0},
		{GameID: 4, Category: "crash", Provider: "spribe", RTP: 90.0},
	}
	sc := recommend.ScoringContext{RequestID: "req-1", MaxCandidates: 100}

	t.Run("full match outranks partial matches", func(t *testing.T) {
		out, err := c.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if len(out) == 0 || out[0].GameID != 1 {
			t.Errorf("top candidate = %+v, want game 1", out)
		}
	})

	t.Run("games without any preference signal are omitted", func(t *testing.T) {
		out, err := c.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		for _, cand := range out {
			if cand.GameID == 4 {
				t.Error("no-signal game 4 was scored")
			}
		}
	})

	t.Run("scores are in unit range with reasons", func(t *testing.T) {
		out, err := c.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		for _, cand := range out {
			if cand.Score < 0 || cand.Score > 1 {
				t.Errorf("game %d: score %f out of range", cand.GameID, cand.Score)
			}
			if len(cand.Reasons) == 0 {
				t.Errorf("game %d: no reasons", cand.GameID)
			}
		}
	})

	t.Run("nil player yields no candidates", func(t *testing.T) {
		out, err := c.Score(context.Background(), nil, games, sc)
		if err != nil || out != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", out, err)
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Score(ctx, player, games, sc); err == nil {
			t.Error("expected context error")
		}
	})
}

func TestPopularity_Score(t *testing.T) {
	p := NewPopularity()
	games := []recommend.GameFeatures{
		{GameID: 1, PopularityScore: 5},
		{GameID: 2, PopularityScore: 50},
		{GameID: 3, PopularityScore: 20},
	}
	sc := recommend.ScoringContext{RequestID: "req-1", MaxCandidates: 100}

	out, err := p.Score(context.Background(), nil, games, sc)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d candidates, want 3", len(out))
	}
	if out[0].GameID != 2 || out[0].Score != 1.0 {
		t.Errorf("top = %+v, want game 2 at 1.0", out[0])
	}
	if out[2].GameID != 1 || out[2].Score != 0.0 {
		t.Errorf("bottom = %+v, want game 1 at 0.0", out[2])
	}
}
