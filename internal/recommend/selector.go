// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"fmt"
	"hash/fnv"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// WeightedStrategy pairs a resolved strategy with its blend weight.
type WeightedStrategy struct {
	Strategy Strategy
	Weight   float64
}

// Selection is the outcome of strategy selection for one request.
type Selection struct {
	// Strategies are the strategies to run, with blend weights.
	Strategies []WeightedStrategy

	// ABVariant names the experiment arm applied, empty for control.
	ABVariant string
}

// Selector chooses which strategies apply for a player and context,
// including deterministic A/B-test arm assignment. Safe for concurrent use;
// adaptive weights are swapped atomically by an off-path batch job.
type Selector struct {
	cfg      *Config
	registry *Registry
	logger   zerolog.Logger

	// adaptive holds the last published adaptive weight table, keyed by
	// canonical strategy name. Nil until the batch job publishes one.
	adaptive atomic.Pointer[map[string]float64]
}

// NewSelector creates a selector over the registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSelector(cfg *Config, registry *Registry, logger zerolog.Logger) *Selector {
	return &Selector{
		cfg:      cfg,
		registry: registry,
		logger:   logger.With().Str("component", "selector").Logger(),
	}
}

// Select chooses the strategies and weights for a request. If an active
// experiment targets the context, the player is deterministically bucketed
// into a variant; otherwise the control strategy set applies.
func (s *Selector) Select(playerID int64, context string) Selection {
	if exp := s.activeExperiment(context); exp != nil {
		assignment := Assign(playerID, exp)
		if variant := findVariant(exp, assignment.Variant); variant != nil {
			return Selection{
				Strategies: s.resolveWeights(variant.Strategies),
				ABVariant:  variant.Name,
			}
		}
		// Remainder buckets fall through to control.
	}

	return Selection{Strategies: s.controlStrategies()}
}

// activeExperiment returns the first enabled experiment for the context.
func (s *Selector) activeExperiment(context string) *ExperimentConfig {
	for i := range s.cfg.Experiments {
		exp := &s.cfg.Experiments[i]
		if exp.Enabled && exp.Context == context {
			return exp
		}
	}
	return nil
}

// Assign computes the stable variant assignment for a player. The bucket is
// hash(playerID, experimentID) mod totalTrafficUnits; the same player always
// lands in the same variant for the experiment's lifetime.
func Assign(playerID int64, exp *ExperimentConfig) ABTestAssignment {
	bucket := assignmentBucket(playerID, exp.ID, exp.TotalTrafficUnits)

	variant := ""
	cumulative := 0
	for i := range exp.Variants {
		cumulative += exp.Variants[i].Units
		if bucket < cumulative {
			variant = exp.Variants[i].Name
			break
		}
	}

	return ABTestAssignment{
		PlayerID:     playerID,
		ExperimentID: exp.ID,
		Variant:      variant,
	}
}

// assignmentBucket maps (playerID, experimentID) into [0, totalUnits).
func assignmentBucket(playerID int64, experimentID string, totalUnits int) int {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", playerID, experimentID)
	return int(h.Sum64() % uint64(totalUnits)) //nolint:gosec // bucket space is small
}

// findVariant returns the named variant, nil for the empty (control) name.
func findVariant(exp *ExperimentConfig, name string) *VariantConfig {
	if name == "" {
		return nil
	}
	for i := range exp.Variants {
		if exp.Variants[i].Name == name {
			return &exp.Variants[i]
		}
	}
	return nil
}

// controlStrategies builds the control set from the enabled list and the
// configured (or adaptive) weights.
func (s *Selector) controlStrategies() []WeightedStrategy {
	weights := s.cfg.Weights.Normalize().ToMap()
	if s.cfg.Adaptive.Enabled {
		if adaptive := s.adaptive.Load(); adaptive != nil {
			weights = *adaptive
		}
	}

	enabled := make(map[string]float64, len(s.cfg.Enabled))
	for _, name := range s.cfg.Enabled {
		enabled[name] = weights[name]
	}

	return s.resolveWeights(enabled)
}

// resolveWeights resolves named weights against the registry, dropping
// unregistered or zero-weight entries.
func (s *Selector) resolveWeights(weights map[string]float64) []WeightedStrategy {
	out := make([]WeightedStrategy, 0, len(weights))
	for name, weight := range weights {
		if weight <= 0 {
			continue
		}
		strategy, err := s.registry.Resolve(name)
		if err != nil {
			s.logger.Warn().Str("strategy", name).Err(err).Msg("configured strategy not registered")
			continue
		}
		out = append(out, WeightedStrategy{Strategy: strategy, Weight: weight})
	}
	return out
}

// SetAdaptiveWeights publishes a new adaptive weight table. Called by the
// periodic batch job, never by the request path.
func (s *Selector) SetAdaptiveWeights(weights map[string]float64) {
	if weights == nil {
		s.adaptive.Store(nil)
		return
	}
	copied := make(map[string]float64, len(weights))
	for name, w := range weights {
		copied[name] = w
	}
	s.adaptive.Store(&copied)

	s.logger.Debug().Int("strategies", len(copied)).Msg("adaptive weights published")
}
