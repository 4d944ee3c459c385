// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

// Assembler applies business rules to the combined ranking and produces the
// final result list. It is pure and deterministic given identical inputs.
//
// Rules apply in order:
//  1. drop games in the exclusion set or shown within the cooldown window
//  2. responsible-gaming filter for at-risk players
//  3. per-category diversification cap (two passes: over-cap candidates are
//     skipped, then refilled in rank order if slots remain)
//  4. truncate to the requested count
//  5. stamp rank positions and algorithm attribution
type Assembler struct {
	rules RulesConfig
}

// NewAssembler creates an assembler with the given business rules.
func NewAssembler(rules RulesConfig) *Assembler {
	return &Assembler{rules: rules}
}

// Assemble filters, diversifies and truncates the combined candidates.
// cooldown is the set of games shown to the player within the cooldown
// window; games lists the feature snapshots for category and volatility
// lookups.
func (a *Assembler) Assemble(
	candidates []ScoredCandidate,
	count int,
	player *PlayerFeatures,
	games map[int64]GameFeatures,
	exclude map[int64]struct{},
	cooldown map[int64]struct{},
) []GameRecommendation {
	if count <= 0 {
		return []GameRecommendation{}
	}

	eligible := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		cand := candidates[i]
		if _, ok := exclude[cand.GameID]; ok {
			continue
		}
		if _, ok := cooldown[cand.GameID]; ok {
			continue
		}
		if a.blockedForRisk(player, games[cand.GameID]) {
			continue
		}
		eligible = append(eligible, cand)
	}

	picked := a.diversify(eligible, count, games)

	out := make([]GameRecommendation, len(picked))
	for i := range picked {
		out[i] = GameRecommendation{
			GameID:    picked[i].GameID,
			Score:     picked[i].Score,
			Algorithm: picked[i].Strategy,
			Rank:      i + 1,
			Reasons:   picked[i].Reasons,
		}
	}
	return out
}

// blockedForRisk applies the responsible-gaming filter: players at or above
// the risk threshold never see high-volatility or high-stake games.
func (a *Assembler) blockedForRisk(player *PlayerFeatures, game GameFeatures) bool {
	if player == nil || player.RiskLevel < a.rules.RiskLevelThreshold {
		return false
	}
	if game.Volatility > a.rules.MaxVolatility {
		return true
	}
	if a.rules.MaxBetCap > 0 && game.MaxBet > a.rules.MaxBetCap {
		return true
	}
	return false
}

// diversify walks the ranked list capping picks per category. Candidates
// skipped for exceeding the cap remain eligible: a second pass fills any
// remaining slots from them in rank order.
func (a *Assembler) diversify(ranked []ScoredCandidate, count int, games map[int64]GameFeatures) []ScoredCandidate {
	limit := a.rules.DiversityCap
	if limit < 1 {
		limit = 1
	}

	picked := make([]ScoredCandidate, 0, count)
	skipped := make([]ScoredCandidate, 0)
	perCategory := make(map[string]int)

	for i := range ranked {
		if len(picked) >= count {
			break
		}
		category := games[ranked[i].GameID].Category
		if perCategory[category] >= limit {
			skipped = append(skipped, ranked[i])
			continue
		}
		perCategory[category]++
		picked = append(picked, ranked[i])
	}

	for i := range skipped {
		if len(picked) >= count {
			break
		}
		picked = append(picked, skipped[i])
	}

	return picked
}
