// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Uri-do/gaiming/internal/metrics"
	"github.com/Uri-do/gaiming/internal/recommend"
)

// PlayerVector is the fixed player feature vector the external model
// consumes. The field set is a versioned contract with the model service.
type PlayerVector struct {
	PlayerID          int64   `json:"player_id"`
	AvgBetSize        float64 `json:"avg_bet_size"`
	SessionCount      int     `json:"session_count"`
	DaysSinceLastPlay int     `json:"days_since_last_play"`
	VIPTier           int     `json:"vip_tier"`
}

// GameVector is the fixed game feature vector sent per candidate.
type GameVector struct {
	GameID          int64   `json:"game_id"`
	Category        string  `json:"category"`
	Provider        string  `json:"provider"`
	Volatility      int     `json:"volatility"`
	RTP             float64 `json:"rtp"`
	PopularityScore float64 `json:"popularity_score"`
}

// PredictionRequest is one scoring call to the external model.
type PredictionRequest struct {
	Player PlayerVector `json:"player"`
	Games  []GameVector `json:"games"`
}

// Prediction is one scored game from the external model.
type Prediction struct {
	GameID int64   `json:"game_id"`
	Score  float64 `json:"score"`
}

// Predictor is the transport to the external ML model service.
type Predictor interface {
	Predict(ctx context.Context, req PredictionRequest) ([]Prediction, error)
}

// ExternalConfig tunes the external model adapter's resilience envelope.
type ExternalConfig struct {
	// QPS caps calls to the model service; bursts up to Burst.
	QPS   float64
	Burst int

	// FailureThreshold is consecutive failures before the breaker opens.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// DefaultExternalConfig returns standard adapter limits.
func DefaultExternalConfig() ExternalConfig {
	return ExternalConfig{
		QPS:              50,
		Burst:            10,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// ErrModelUnavailable indicates the external model is rate-limited or the
// breaker is open. The engine treats it like any strategy failure.
var ErrModelUnavailable = errors.New("external model unavailable")

// External adapts an out-of-process ML model into the strategy set. Calls
// are rate limited and wrapped in a circuit breaker; an open breaker or
// exhausted limiter fails the strategy fast instead of stalling the
// scoring fan-out.
type External struct {
	predictor Predictor
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]Prediction]
}

var _ recommend.Strategy = (*External)(nil)

// NewExternal creates the external model adapter.
func NewExternal(cfg ExternalConfig, predictor Predictor) *External {
	if cfg.QPS <= 0 {
		cfg = DefaultExternalConfig()
	}

	settings := gobreaker.Settings{
		Name:    "external_model",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.ExternalModelState.Set(1)
			} else {
				metrics.ExternalModelState.Set(0)
			}
		},
	}

	return &External{
		predictor: predictor,
		limiter:   rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		breaker:   gobreaker.NewCircuitBreaker[[]Prediction](settings),
	}
}

// Kind returns the strategy kind.
func (e *External) Kind() recommend.StrategyKind {
	return recommend.KindExternal
}

// Name returns the canonical strategy name.
func (e *External) Name() string {
	return recommend.KindExternal.String()
}

// Score delegates to the external model through the limiter and breaker.
func (e *External) Score(
	ctx context.Context,
	player *recommend.PlayerFeatures,
	games []recommend.GameFeatures,
	sc recommend.ScoringContext,
) ([]recommend.ScoredCandidate, error) {
	if player == nil {
		return nil, nil
	}
	if !e.limiter.Allow() {
		return nil, fmt.Errorf("%w: rate limited", ErrModelUnavailable)
	}

	predictions, err := e.breaker.Execute(func() ([]Prediction, error) {
		return e.predictor.Predict(ctx, buildPredictionRequest(player, games))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.StrategyFailures.WithLabelValues(e.Name(), "breaker_open").Inc()
			return nil, fmt.Errorf("%w: circuit open", ErrModelUnavailable)
		}
		return nil, fmt.Errorf("external model predict: %w", err)
	}

	out := make([]recommend.ScoredCandidate, 0, len(predictions))
	for i := range predictions {
		out = append(out, recommend.ScoredCandidate{
			GameID:   predictions[i].GameID,
			Score:    clamp01(predictions[i].Score),
			Strategy: e.Name(),
			Reasons:  []string{"model_prediction"},
		})
	}
	sortCandidates(out)

	if sc.MaxCandidates > 0 && len(out) > sc.MaxCandidates {
		out = out[:sc.MaxCandidates]
	}
	return out, nil
}

// buildPredictionRequest maps feature snapshots onto the model's fixed
// vector contract.
func buildPredictionRequest(player *recommend.PlayerFeatures, games []recommend.GameFeatures) PredictionRequest {
	req := PredictionRequest{
		Player: PlayerVector{
			PlayerID:          player.PlayerID,
			AvgBetSize:        player.AvgBetSize,
			SessionCount:      player.SessionCount,
			DaysSinceLastPlay: player.DaysSinceLastPlay,
			VIPTier:           player.VIPTier,
		},
		Games: make([]GameVector, 0, len(games)),
	}
	for i := range games {
		req.Games = append(req.Games, GameVector{
			GameID:          games[i].GameID,
			Category:        games[i].Category,
			Provider:        games[i].Provider,
			Volatility:      games[i].Volatility,
			RTP:             games[i].RTP,
			PopularityScore: games[i].PopularityScore,
		})
	}
	return req
}
