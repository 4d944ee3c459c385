// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package strategy implements the concrete scoring strategies:
// collaborative filtering, content-based matching, popularity ranking,
// Thompson Sampling, and the external model adapter. Each implements
// recommend.Strategy and is registered on the engine registry at startup.
package strategy

import (
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// normalizeScores min-max normalizes scores in place to [0, 1].
// All-equal inputs map to 0.5 so a flat signal stays neutral in the blend.
func normalizeScores(scores map[int64]float64) {
	if len(scores) == 0 {
		return
	}

	first := true
	var min, max float64
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	if max == min {
		for id := range scores {
			scores[id] = 0.5
		}
		return
	}

	span := max - min
	for id, s := range scores {
		scores[id] = (s - min) / span
	}
}

// jaccardInt64 computes the Jaccard similarity of two ID sets.
func jaccardInt64(a, b map[int64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	intersection := 0
	for id := range small {
		if _, ok := large[id]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// toSet materializes an ID slice as a set.
func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// clamp01 clamps a score into [0, 1].
func clamp01(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// requestRNG derives a deterministic random source from the base seed and
// the request ID. Identical requests draw identical samples; distinct
// requests diverge.
func requestRNG(seed int64, requestID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(requestID))
	//nolint:gosec // math/rand is intentional: sampling must be reproducible
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

// sortCandidates orders by score descending, gameID ascending on ties.
func sortCandidates(out []recommend.ScoredCandidate) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].GameID < out[j].GameID
	})
}

// sortCandidatesBy orders by score descending, then a per-game tiebreak
// value descending, then gameID ascending. The bandit passes posterior
// variance so ties go to the less-explored arm; collaborative passes
// popularity.
func sortCandidatesBy(out []recommend.ScoredCandidate, tiebreak map[int64]float64) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if ti, tj := tiebreak[out[i].GameID], tiebreak[out[j].GameID]; ti != tj {
			return ti > tj
		}
		return out[i].GameID < out[j].GameID
	})
}
