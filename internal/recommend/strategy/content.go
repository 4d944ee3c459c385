// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// ContentWeights balances the attribute dimensions of the content match.
// Weights are sum-normalized at construction.
type ContentWeights struct {
	Category float64
	Provider float64
	RTP      float64
}

// DefaultContentWeights weights category similarity heaviest.
func DefaultContentWeights() ContentWeights {
	return ContentWeights{Category: 0.5, Provider: 0.3, RTP: 0.2}
}

// Content scores games by how well their attributes match the player's
// categorical preference weights. A game matching none of the player's
// preferences is omitted rather than scored zero.
type Content struct {
	weights ContentWeights
}

var _ recommend.Strategy = (*Content)(nil)

// NewContent creates a content-based strategy with the given attribute
// weights. Zero weights fall back to the defaults.
func NewContent(weights ContentWeights) *Content {
	sum := weights.Category + weights.Provider + weights.RTP
	if sum == 0 {
		weights = DefaultContentWeights()
		sum = weights.Category + weights.Provider + weights.RTP
	}
	weights.Category /= sum
	weights.Provider /= sum
	weights.RTP /= sum

	return &Content{weights: weights}
}

// Kind returns the strategy kind.
func (c *Content) Kind() recommend.StrategyKind {
	return recommend.KindContent
}

// Name returns the canonical strategy name.
func (c *Content) Name() string {
	return recommend.KindContent.String()
}

// Score computes the weighted attribute match for each candidate.
func (c *Content) Score(
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

	out := make([]recommend.ScoredCandidate, 0, len(games))
	for i := range games {
		game := &games[i]

		score, reasons := c.scoreGame(player, game)
		if len(reasons) == 0 {
			// No preference signal for this game at all.
			continue
		}

		out = append(out, recommend.ScoredCandidate{
			GameID:   game.GameID,
			Score:    clamp01(score),
			Strategy: c.Name(),
			Reasons:  reasons,
		})
	}
	sortCandidates(out)

	if sc.MaxCandidates > 0 && len(out) > sc.MaxCandidates {
		out = out[:sc.MaxCandidates]
	}
	return out, nil
}

// scoreGame blends the player's category, provider and RTP-band affinities
// for one game. Reasons name the dimensions that matched.
func (c *Content) scoreGame(player *recommend.PlayerFeatures, game *recommend.GameFeatures) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0, 3)

	if affinity, ok := player.FavoriteCategories[game.Category]; ok && affinity > 0 {
		score += c.weights.Category * clamp01(affinity)
		reasons = append(reasons, "category_match")
	}
	if affinity, ok := player.FavoriteProviders[game.Provider]; ok && affinity > 0 {
		score += c.weights.Provider * clamp01(affinity)
		reasons = append(reasons, "provider_match")
	}
	if affinity, ok := player.FavoriteRTPBands[recommend.RTPBand(game.RTP)]; ok && affinity > 0 {
		score += c.weights.RTP * clamp01(affinity)
		reasons = append(reasons, "rtp_match")
	}

	return score, reasons
}
