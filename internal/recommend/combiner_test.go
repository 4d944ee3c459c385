// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"math"
	"testing"
)

func TestCombiner_Combine(t *testing.T) {
	c := NewCombiner()

	t.Run("renormalizes weights over contributing strategies", func(t *testing.T) {
		byStrategy := map[string][]ScoredCandidate{
			"content_based": {
				{GameID: 101, Score: 0.9, Strategy: "content_based"},
				{GameID: 102, Score: 0.5, Strategy: "content_based"},
			},
			"popularity_based": {
				{GameID: 101, Score: 0.4, Strategy: "popularity_based"},
				{GameID: 103, Score: 0.8, Strategy: "popularity_based"},
			},
		}
		weights := map[string]float64{
			"content_based":    0.6,
			"popularity_based": 0.4,
		}

		out := c.Combine(byStrategy, weights)
		if len(out) != 3 {
			t.Fatalf("got %d candidates, want 3", len(out))
		}

		// Game scored by both: (0.6*0.9 + 0.4*0.4) / 1.0 = 0.70
		// Games scored by one keep that strategy's raw score.
		want := []struct {
			gameID int64
			score  float64
		}{
			{103, 0.80},
			{101, 0.70},
			{102, 0.50},
		}
		for i, w := range want {
			if out[i].GameID != w.gameID {
				t.Errorf("rank %d: gameID = %d, want %d", i, out[i].GameID, w.gameID)
			}
			if math.Abs(out[i].Score-w.score) > 1e-9 {
				t.Errorf("game %d: score = %f, want %f", w.gameID, out[i].Score, w.score)
			}
		}
	})

	t.Run("result is independent of strategy order", func(t *testing.T) {
		a := map[string][]ScoredCandidate{
			"content_based":    {{GameID: 1, Score: 0.3}, {GameID: 2, Score: 0.9}},
			"bandit":           {{GameID: 2, Score: 0.1}},
			"popularity_based": {{GameID: 1, Score: 0.8}, {GameID: 3, Score: 0.2}},
		}
		b := map[string][]ScoredCandidate{
			"popularity_based": {{GameID: 3, Score: 0.2}, {GameID: 1, Score: 0.8}},
			"content_based":    {{GameID: 2, Score: 0.9}, {GameID: 1, Score: 0.3}},
			"bandit":           {{GameID: 2, Score: 0.1}},
		}
		weights := map[string]float64{
			"content_based":    0.5,
			"popularity_based": 0.3,
			"bandit":           0.2,
		}

		outA := c.Combine(a, weights)
		outB := c.Combine(b, weights)

		if len(outA) != len(outB) {
			t.Fatalf("lengths differ: %d vs %d", len(outA), len(outB))
		}
		for i := range outA {
			if outA[i].GameID != outB[i].GameID || math.Abs(outA[i].Score-outB[i].Score) > 1e-12 {
				t.Errorf("position %d differs: %+v vs %+v", i, outA[i], outB[i])
			}
		}
	})

	t.Run("scores stay in unit range", func(t *testing.T) {
		byStrategy := map[string][]ScoredCandidate{
			"content_based":    {{GameID: 1, Score: 1.0}, {GameID: 2, Score: 0.0}},
			"popularity_based": {{GameID: 1, Score: 1.0}, {GameID: 2, Score: 1.0}},
		}
		weights := map[string]float64{"content_based": 0.7, "popularity_based": 0.3}

		for _, cand := range c.Combine(byStrategy, weights) {
			if cand.Score < 0 || cand.Score > 1 {
				t.Errorf("game %d: score %f out of [0, 1]", cand.GameID, cand.Score)
			}
		}
	})

	t.Run("attribution goes to largest contribution", func(t *testing.T) {
		byStrategy := map[string][]ScoredCandidate{
			"content_based":    {{GameID: 1, Score: 0.9}},
			"popularity_based": {{GameID: 1, Score: 0.2}},
		}
		weights := map[string]float64{"content_based": 0.5, "popularity_based": 0.5}

		out := c.Combine(byStrategy, weights)
		if out[0].Strategy != "content_based" {
			t.Errorf("attribution = %q, want content_based", out[0].Strategy)
		}
	})

	t.Run("zero weight strategies are ignored", func(t *testing.T) {
		byStrategy := map[string][]ScoredCandidate{
			"content_based": {{GameID: 1, Score: 0.9}},
			"bandit":        {{GameID: 2, Score: 1.0}},
		}
		weights := map[string]float64{"content_based": 1.0, "bandit": 0}

		out := c.Combine(byStrategy, weights)
		if len(out) != 1 || out[0].GameID != 1 {
			t.Errorf("got %+v, want only game 1", out)
		}
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		if out := c.Combine(nil, nil); out != nil {
			t.Errorf("got %+v, want nil", out)
		}
	})

	t.Run("ties break by ascending game ID", func(t *testing.T) {
		byStrategy := map[string][]ScoredCandidate{
			"popularity_based": {
				{GameID: 9, Score: 0.5},
				{GameID: 3, Score: 0.5},
				{GameID: 7, Score: 0.5},
			},
		}
		weights := map[string]float64{"popularity_based": 1.0}

		out := c.Combine(byStrategy, weights)
		for i, want := range []int64{3, 7, 9} {
			if out[i].GameID != want {
				t.Errorf("rank %d: gameID = %d, want %d", i, out[i].GameID, want)
			}
		}
	})
}

func TestDedupReasons(t *testing.T) {
	got := dedupReasons([]string{"b", "a", "b", "c", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
