// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import "sort"

// Combiner merges multiple strategies' scored candidates into one ranked
// list. For each game the final score is the weighted sum over the
// strategies that scored it, with weights renormalized over only those
// contributing strategies, so a game scored by a single strategy is not
// penalized for the others' silence. Combination is order-independent.
type Combiner struct{}

// NewCombiner creates a combiner.
func NewCombiner() *Combiner {
	return &Combiner{}
}

// combined accumulates per-game contributions during combination.
type combined struct {
	weightedSum float64
	weightSum   float64

	// top tracks the largest single weighted contribution for algorithm
	// attribution.
	top         float64
	topStrategy string

	reasons []string
}

// Combine merges per-strategy candidate lists using the given weights.
// The result is sorted by final score descending, gameID ascending on ties
// for determinism.
func (c *Combiner) Combine(byStrategy map[string][]ScoredCandidate, weights map[string]float64) []ScoredCandidate {
	if len(byStrategy) == 0 {
		return nil
	}

	acc := make(map[int64]*combined)
	for strategy, candidates := range byStrategy {
		weight := weights[strategy]
		if weight <= 0 {
			continue
		}

		for i := range candidates {
			cand := &candidates[i]
			entry := acc[cand.GameID]
			if entry == nil {
				entry = &combined{}
				acc[cand.GameID] = entry
			}

			contribution := weight * cand.Score
			entry.weightedSum += contribution
			entry.weightSum += weight
			entry.reasons = append(entry.reasons, cand.Reasons...)

			if entry.topStrategy == "" || contribution > entry.top ||
				(contribution == entry.top && strategy < entry.topStrategy) {
				entry.top = contribution
				entry.topStrategy = strategy
			}
		}
	}

	out := make([]ScoredCandidate, 0, len(acc))
	for gameID, entry := range acc {
		if entry.weightSum == 0 {
			continue
		}
		out = append(out, ScoredCandidate{
			GameID:   gameID,
			Score:    entry.weightedSum / entry.weightSum,
			Strategy: entry.topStrategy,
			Reasons:  dedupReasons(entry.reasons),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].GameID < out[j].GameID
	})

	return out
}

// dedupReasons removes duplicate reason tags. Sorted so the output does not
// depend on strategy iteration order.
func dedupReasons(reasons []string) []string {
	if len(reasons) < 2 {
		return reasons
	}

	seen := make(map[string]struct{}, len(reasons))
	out := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
