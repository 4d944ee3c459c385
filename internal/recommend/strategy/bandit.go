// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"

	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/bandit"
)

// Bandit scores games by Thompson Sampling over per-player Beta posteriors.
// One sample per arm per request; the random source is derived from the
// request ID, so retried requests see identical draws while posterior
// updates still shift future scores.
type Bandit struct {
	store *bandit.Store
	seed  int64
}

var _ recommend.Strategy = (*Bandit)(nil)

// NewBandit creates a Thompson Sampling strategy over the store.
func NewBandit(store *bandit.Store, seed int64) *Bandit {
	if seed == 0 {
		seed = 42
	}
	return &Bandit{store: store, seed: seed}
}

// Kind returns the strategy kind.
func (b *Bandit) Kind() recommend.StrategyKind {
	return recommend.KindBandit
}

// Name returns the canonical strategy name.
func (b *Bandit) Name() string {
	return recommend.KindBandit.String()
}

// Score draws one posterior sample per candidate arm.
func (b *Bandit) Score(
	ctx context.Context,
	player *recommend.PlayerFeatures,
	games []recommend.GameFeatures,
	sc recommend.ScoringContext,
) ([]recommend.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if player == nil {
		return nil, nil
	}

	rng := requestRNG(b.seed, sc.RequestID)

	out := make([]recommend.ScoredCandidate, 0, len(games))
	variance := make(map[int64]float64, len(games))
	for i := range games {
		posterior := b.store.Posterior(player.PlayerID, bandit.ArmForGame(games[i].GameID))
		sample := bandit.SampleBeta(rng, posterior.Alpha, posterior.Beta)
		variance[games[i].GameID] = bandit.Variance(posterior.Alpha, posterior.Beta)

		reason := "exploring"
		if posterior.Trials() > 0 {
			reason = "reward_history"
		}

		out = append(out, recommend.ScoredCandidate{
			GameID:   games[i].GameID,
			Score:    clamp01(sample),
			Strategy: b.Name(),
			Reasons:  []string{reason},
		})
	}
	// Ties go to the arm with the larger posterior variance, favoring
	// exploration of the less-certain arm.
	sortCandidatesBy(out, variance)

	if sc.MaxCandidates > 0 && len(out) > sc.MaxCandidates {
		out = out[:sc.MaxCandidates]
	}
	return out, nil
}
