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

// scriptedPredictor returns canned predictions or a fixed error.
type scriptedPredictor struct {
	predictions []Prediction
	err         error
	calls       int
	lastReq     PredictionRequest
}

func (p *scriptedPredictor) Predict(_ context.Context, req PredictionRequest) ([]Prediction, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.predictions, nil
}

func TestExternal_Score(t *testing.T) {
	player := &recommend.PlayerFeatures{PlayerID: 1, AvgBetSize: 2.5, VIPTier: 3}
	games := []recommend.GameFeatures{
		{GameID: 1, Category: "slots", RTP: 96.5},
		{GameID: 2, Category: "table", RTP: 98.9},
	}

	t.Run("maps predictions onto candidates", func(t *testing.T) {
		predictor := &scriptedPredictor{predictions: []Prediction{
			{GameID: 1, Score: 0.4},
			{GameID: 2, Score: 0.9},
		}}
		ext := NewExternal(DefaultExternalConfig(), predictor)

		out, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("got %d candidates, want 2", len(out))
		}
		if out[0].GameID != 2 || out[0].Score != 0.9 {
			t.Errorf("top candidate = %+v, want game 2 at 0.9", out[0])
		}
		if out[0].Strategy != "external_model" || out[0].Reasons[0] != "model_prediction" {
			t.Errorf("attribution = %s %v", out[0].Strategy, out[0].Reasons)
		}
		if predictor.lastReq.Player.VIPTier != 3 || len(predictor.lastReq.Games) != 2 {
			t.Errorf("request vectors not populated: %+v", predictor.lastReq)
		}
	})

	t.Run("clamps out-of-range scores", func(t *testing.T) {
		predictor := &scriptedPredictor{predictions: []Prediction{
			{GameID: 1, Score: 1.7},
			{GameID: 2, Score: -0.3},
		}}
		ext := NewExternal(DefaultExternalConfig(), predictor)

		out, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if out[0].Score != 1.0 || out[1].Score != 0.0 {
			t.Errorf("scores = %v, %v, want 1.0, 0.0", out[0].Score, out[1].Score)
		}
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		predictor := &scriptedPredictor{err: errors.New("model down")}
		cfg := DefaultExternalConfig()
		cfg.FailureThreshold = 3
		ext := NewExternal(cfg, predictor)

		for i := 0; i < 3; i++ {
			if _, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{}); err == nil {
				t.Fatal("expected predict error")
			}
		}

		_, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{})
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("got %v, want ErrModelUnavailable", err)
		}
		if predictor.calls != 3 {
			t.Errorf("predictor called %d times after breaker opened, want 3", predictor.calls)
		}
	})

	t.Run("rate limiter fails fast when exhausted", func(t *testing.T) {
		predictor := &scriptedPredictor{predictions: []Prediction{{GameID: 1, Score: 0.5}}}
		cfg := ExternalConfig{QPS: 0.001, Burst: 1, FailureThreshold: 5, OpenTimeout: DefaultExternalConfig().OpenTimeout}
		ext := NewExternal(cfg, predictor)

		if _, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{}); err != nil {
			t.Fatalf("first call: %v", err)
		}
		_, err := ext.Score(context.Background(), player, games, recommend.ScoringContext{})
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("got %v, want ErrModelUnavailable", err)
		}
	})

	t.Run("nil player yields no candidates", func(t *testing.T) {
		ext := NewExternal(DefaultExternalConfig(), &scriptedPredictor{})
		out, err := ext.Score(context.Background(), nil, games, recommend.ScoringContext{})
		if err != nil || out != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", out, err)
		}
	})
}
