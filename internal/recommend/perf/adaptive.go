// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package perf

import (
	"github.com/rs/zerolog"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// AdaptiveWeights recomputes strategy blend weights from recent CTR and
// publishes them to the selector. Runs as a periodic batch job, never on
// the request path.
type AdaptiveWeights struct {
	cfg      recommend.AdaptiveConfig
	static   map[string]float64
	tracker  *Tracker
	selector *recommend.Selector
	logger   zerolog.Logger
}

// NewAdaptiveWeights creates the recompute job. static is the configured
// weight table used for strategies without enough window data.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAdaptiveWeights(
	cfg recommend.AdaptiveConfig,
	static map[string]float64,
	tracker *Tracker,
	selector *recommend.Selector,
	logger zerolog.Logger,
) *AdaptiveWeights {
	return &AdaptiveWeights{
		cfg:      cfg,
		static:   static,
		tracker:  tracker,
		selector: selector,
		logger:   logger.With().Str("component", "adaptive_weights").Logger(),
	}
}

// Recompute derives one weight table and publishes it. Strategies whose
// window impressions are below the trust floor keep their static weight;
// the rest scale with observed CTR. The result is normalized to sum to 1.
func (a *AdaptiveWeights) Recompute() map[string]float64 {
	weights := make(map[string]float64, len(a.static))
	adapted := 0

	for name, static := range a.static {
		m := a.tracker.Snapshot(name, "", a.cfg.Window)
		if m.Impressions < a.cfg.MinImpressions {
			weights[name] = static
			continue
		}
		// Blend against static so a hot streak cannot zero out a strategy.
		weights[name] = 0.5*static + 0.5*m.CTR()
		adapted++
	}

	normalizeWeights(weights)
	a.selector.SetAdaptiveWeights(weights)

	a.logger.Debug().
		Int("adapted", adapted).
		Int("total", len(weights)).
		Msg("recomputed adaptive weights")

	return weights
}

// normalizeWeights scales the table to sum to 1 in place. An all-zero
// table is left untouched; the selector treats zero weights as disabled.
func normalizeWeights(weights map[string]float64) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return
	}
	for name, w := range weights {
		weights[name] = w / sum
	}
}
