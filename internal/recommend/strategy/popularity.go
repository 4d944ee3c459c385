// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// Popularity scores games by their pre-computed rolling popularity,
// min-max normalized over the candidate pool. Stateless and player
// independent, it doubles as the degraded-mode fallback when every other
// strategy fails.
type Popularity struct{}

var _ recommend.Strategy = (*Popularity)(nil)

// NewPopularity creates a popularity strategy.
func NewPopularity() *Popularity {
	return &Popularity{}
}

// Kind returns the strategy kind.
func (p *Popularity) Kind() recommend.StrategyKind {
	return recommend.KindPopularity
}

// Name returns the canonical strategy name.
func (p *Popularity) Name() string {
	return recommend.KindPopularity.String()
}

// Score normalizes the candidates' popularity over the pool.
func (p *Popularity) Score(
	ctx context.Context,
	_ *recommend.PlayerFeatures,
	games []recommend.GameFeatures,
	sc recommend.ScoringContext,
) ([]recommend.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(games))
	for i := range games {
		scores[games[i].GameID] = games[i].PopularityScore
	}
	normalizeScores(scores)

	out := make([]recommend.ScoredCandidate, 0, len(scores))
	for gameID, score := range scores {
		out = append(out, recommend.ScoredCandidate{
			GameID:   gameID,
			Score:    score,
			Strategy: p.Name(),
			Reasons:  []string{"trending"},
		})
	}
	sortCandidates(out)

	if sc.MaxCandidates > 0 && len(out) > sc.MaxCandidates {
		out = out[:sc.MaxCandidates]
	}
	return out, nil
}
