// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// staticCohort serves a fixed player population.
type staticCohort struct {
	players []recommend.PlayerFeatures
	err     error
}

func (s *staticCohort) Players(context.Context, int) ([]recommend.PlayerFeatures, error) {
	return s.players, s.err
}

func TestCollaborative_Score(t *testing.T) {
	cohort := &staticCohort{players: []recommend.PlayerFeatures{
		{PlayerID: 2, PlayedGames: []int64{1, 2, 3, 10}},
		{PlayerID: 3, PlayedGames: []int64{1, 2, 10}},
		{PlayerID: 4, PlayedGames: []int64{99}},
	}}

	cfg := CollaborativeConfig{Neighbors: 10, MinOverlap: 2, CohortLimit: 100}
	c := NewCollaborative(cfg, cohort)

	player := &recommend.PlayerFeatures{PlayerID: 1, PlayedGames: []int64{1, 2, 3}}
	games := []recommend.GameFeatures{
		{GameID: 1}, {GameID: 10}, {GameID: 99},
	}
	sc := recommend.ScoringContext{RequestID: "req-1", MaxCandidates: 100}

	t.Run("recommends what neighbors played", func(t *testing.T) {
		out, err := c.Score(context.Background(), player, games, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}

		found := false
		for _, cand := range out {
			if cand.GameID == 10 {
				found = true
			}
			if cand.GameID == 1 {
				t.Error("already-played game 1 recommended")
			}
			if cand.GameID == 99 {
				t.Error("game from below-overlap neighbor recommended")
			}
		}
		if !found {
			t.Error("neighbor-played game 10 missing")
		}
	})

	t.Run("score ties go to the more popular game", func(t *testing.T) {
		// One neighbor, two unplayed games it played: identical scores, so
		// popularity decides the order.
		tieCohort := &staticCohort{players: []recommend.PlayerFeatures{
			{PlayerID: 2, PlayedGames: []int64{1, 2, 10, 20}},
		}}
		tied := NewCollaborative(cfg, tieCohort)

		tieGames := []recommend.GameFeatures{
			{GameID: 10, PopularityScore: 5},
			{GameID: 20, PopularityScore: 80},
		}
		out, err := tied.Score(context.Background(), &recommend.PlayerFeatures{
			PlayerID: 1, PlayedGames: []int64{1, 2},
		}, tieGames, sc)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if len(out) != 2 || out[0].Score != out[1].Score {
			t.Fatalf("fixture did not produce a tie: %+v", out)
		}
		if out[0].GameID != 20 {
			t.Errorf("top game = %d, want the more popular 20", out[0].GameID)
		}
	})

	t.Run("cold start yields no candidates", func(t *testing.T) {
		cold := &recommend.PlayerFeatures{PlayerID: 5}
		out, err := c.Score(context.Background(), cold, games, sc)
		if err != nil || out != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", out, err)
		}
	})

	t.Run("no qualifying neighbors yields no candidates", func(t *testing.T) {
		loner := &recommend.PlayerFeatures{PlayerID: 6, PlayedGames: []int64{500, 501}}
		out, err := c.Score(context.Background(), loner, games, sc)
		if err != nil || out != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", out, err)
		}
	})

	t.Run("cohort source error propagates", func(t *testing.T) {
		failing := NewCollaborative(cfg, &staticCohort{err: errors.New("store down")})
		if _, err := failing.Score(context.Background(), player, games, sc); err == nil {
			t.Error("expected cohort error")
		}
	})
}
