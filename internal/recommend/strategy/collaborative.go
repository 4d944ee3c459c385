// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package strategy

import (
	"context"
	"sort"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// CohortSource supplies the player population used to find neighbors.
// Implemented by the feature provider.
type CohortSource interface {
	// Players returns up to limit player snapshots.
	Players(ctx context.Context, limit int) ([]recommend.PlayerFeatures, error)
}

// CollaborativeConfig tunes the neighbor search.
type CollaborativeConfig struct {
	// Neighbors is the number of nearest players consulted (K).
	Neighbors int

	// MinOverlap is the minimum shared-game count for a neighbor to
	// qualify; below it similarity is noise.
	MinOverlap int

	// CohortLimit bounds the candidate neighbor population scanned.
	CohortLimit int
}

// DefaultCollaborativeConfig returns the standard neighbor parameters.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		Neighbors:   20,
		MinOverlap:  2,
		CohortLimit: 5000,
	}
}

// Collaborative scores games by what the player's nearest neighbors play.
// Similarity is Jaccard over played-game sets; a candidate's score is the
// similarity-weighted fraction of neighbors that played it.
type Collaborative struct {
	cfg    CollaborativeConfig
	cohort CohortSource
}

var _ recommend.Strategy = (*Collaborative)(nil)

// NewCollaborative creates a collaborative filtering strategy.
func NewCollaborative(cfg CollaborativeConfig, cohort CohortSource) *Collaborative {
	if cfg.Neighbors < 1 {
		cfg.Neighbors = DefaultCollaborativeConfig().Neighbors
	}
	if cfg.CohortLimit < 1 {
		cfg.CohortLimit = DefaultCollaborativeConfig().CohortLimit
	}
	return &Collaborative{cfg: cfg, cohort: cohort}
}

// Kind returns the strategy kind.
func (c *Collaborative) Kind() recommend.StrategyKind {
	return recommend.KindCollaborative
}

// Name returns the canonical strategy name.
func (c *Collaborative) Name() string {
	return recommend.KindCollaborative.String()
}

// neighbor pairs a cohort member with its similarity to the player.
type neighbor struct {
	playerID   int64
	similarity float64
	played     map[int64]struct{}
}

// Score finds the K nearest neighbors by played-game overlap and scores
// candidates by similarity-weighted neighbor play counts. Cold-start
// players (no history) yield no candidates; the blend covers them via the
// other strategies.
func (c *Collaborative) Score(
	ctx context.Context,
	player *recommend.PlayerFeatures,
	games []recommend.GameFeatures,
	sc recommend.ScoringContext,
) ([]recommend.ScoredCandidate, error) {
	if player == nil || len(player.PlayedGames) == 0 {
		return nil, nil
	}

	cohort, err := c.cohort.Players(ctx, c.cfg.CohortLimit)
	if err != nil {
		return nil, err
	}

	neighbors := c.nearestNeighbors(player, cohort)
	if len(neighbors) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playerSet := toSet(player.PlayedGames)
	scores := make(map[int64]float64)
	popularity := make(map[int64]float64, len(games))
	var totalSimilarity float64
	for i := range neighbors {
		totalSimilarity += neighbors[i].similarity
	}

	for i := range games {
		gameID := games[i].GameID
		popularity[gameID] = games[i].PopularityScore
		if _, ok := playerSet[gameID]; ok {
			continue
		}

		var weighted float64
		for j := range neighbors {
			if _, ok := neighbors[j].played[gameID]; ok {
				weighted += neighbors[j].similarity
			}
		}
		if weighted > 0 {
			scores[gameID] = weighted / totalSimilarity
		}
	}

	if len(scores) == 0 {
		return nil, nil
	}
	normalizeScores(scores)

	out := make([]recommend.ScoredCandidate, 0, len(scores))
	for gameID, score := range scores {
		out = append(out, recommend.ScoredCandidate{
			GameID:   gameID,
			Score:    score,
			Strategy: c.Name(),
			Reasons:  []string{"similar_players"},
		})
	}
	// Ties go to the overall more popular game.
	sortCandidatesBy(out, popularity)

	if sc.MaxCandidates > 0 && len(out) > sc.MaxCandidates {
		out = out[:sc.MaxCandidates]
	}
	return out, nil
}

// nearestNeighbors ranks the cohort by Jaccard similarity and keeps the top
// K that clear the overlap floor.
func (c *Collaborative) nearestNeighbors(player *recommend.PlayerFeatures, cohort []recommend.PlayerFeatures) []neighbor {
	playerSet := toSet(player.PlayedGames)

	neighbors := make([]neighbor, 0, len(cohort))
	for i := range cohort {
		other := &cohort[i]
		if other.PlayerID == player.PlayerID || len(other.PlayedGames) == 0 {
			continue
		}

		otherSet := toSet(other.PlayedGames)
		if overlapCount(playerSet, otherSet) < c.cfg.MinOverlap {
			continue
		}

		similarity := jaccardInt64(playerSet, otherSet)
		if similarity <= 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{
			playerID:   other.PlayerID,
			similarity: similarity,
			played:     otherSet,
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].playerID < neighbors[j].playerID
	})

	if len(neighbors) > c.cfg.Neighbors {
		neighbors = neighbors[:c.cfg.Neighbors]
	}
	return neighbors
}

// overlapCount counts shared members of two sets.
func overlapCount(a, b map[int64]struct{}) int {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	count := 0
	for id := range small {
		if _, ok := large[id]; ok {
			count++
		}
	}
	return count
}
