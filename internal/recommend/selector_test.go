// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// stubStrategy is a no-op strategy for registry wiring in tests.
type stubStrategy struct {
	kind StrategyKind
}

func (s *stubStrategy) Kind() StrategyKind { return s.kind }
func (s *stubStrategy) Name() string       { return s.kind.String() }
func (s *stubStrategy) Score(context.Context, *PlayerFeatures, []GameFeatures, ScoringContext) ([]ScoredCandidate, error) {
	return nil, nil
}

func fullRegistry() *Registry {
	r := NewRegistry()
	for _, kind := range Kinds() {
		r.Register(&stubStrategy{kind: kind})
	}
	return r
}

func TestAssign(t *testing.T) {
	exp := &ExperimentConfig{
		ID:                "exp-lobby-2026",
		Context:           "lobby",
		Enabled:           true,
		TotalTrafficUnits: 100,
		Variants: []VariantConfig{
			{Name: "control", Units: 50, Strategies: map[string]float64{"content_based": 1}},
			{Name: "bandit_heavy", Units: 30, Strategies: map[string]float64{"bandit": 1}},
		},
	}

	t.Run("assignment is stable", func(t *testing.T) {
		for playerID := int64(1); playerID <= 200; playerID++ {
			first := Assign(playerID, exp)
			for i := 0; i < 5; i++ {
				if again := Assign(playerID, exp); again.Variant != first.Variant {
					t.Fatalf("player %d: variant changed %q -> %q", playerID, first.Variant, again.Variant)
				}
			}
		}
	})

	t.Run("remainder maps to empty variant", func(t *testing.T) {
		seen := map[string]int{}
		for playerID := int64(1); playerID <= 2000; playerID++ {
			seen[Assign(playerID, exp).Variant]++
		}
		// 20 of 100 units are unassigned; some players must land there.
		if seen[""] == 0 {
			t.Error("no players in remainder bucket")
		}
		if seen["control"] == 0 || seen["bandit_heavy"] == 0 {
			t.Errorf("variant distribution missing arms: %v", seen)
		}
		// Rough proportion check, wide tolerance for hash variance.
		if seen["control"] < 800 || seen["control"] > 1200 {
			t.Errorf("control share = %d of 2000, want roughly half", seen["control"])
		}
	})

	t.Run("different experiments bucket independently", func(t *testing.T) {
		other := &ExperimentConfig{
			ID:                "exp-other",
			TotalTrafficUnits: 100,
			Variants:          exp.Variants,
		}
		differs := false
		for playerID := int64(1); playerID <= 100; playerID++ {
			if Assign(playerID, exp).Variant != Assign(playerID, other).Variant {
				differs = true
				break
			}
		}
		if !differs {
			t.Error("identical assignment across distinct experiment IDs")
		}
	})
}

func TestSelector_Select(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("control uses normalized configured weights", func(t *testing.T) {
		cfg := DefaultConfig()
		s := NewSelector(cfg, fullRegistry(), logger)

		selection := s.Select(1, "lobby")
		if selection.ABVariant != "" {
			t.Errorf("ABVariant = %q, want empty for control", selection.ABVariant)
		}
		if len(selection.Strategies) != len(cfg.Enabled) {
			t.Errorf("got %d strategies, want %d", len(selection.Strategies), len(cfg.Enabled))
		}

		var sum float64
		for _, ws := range selection.Strategies {
			sum += ws.Weight
		}
		// External has zero weight and is not in Enabled, so the enabled
		// strategies carry the full normalized mass.
		if sum < 0.99 || sum > 1.01 {
			t.Errorf("weight sum = %f, want ~1.0", sum)
		}
	})

	t.Run("experiment variant applies its strategy set", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Experiments = []ExperimentConfig{{
			ID:                "exp-all-bandit",
			Context:           "lobby",
			Enabled:           true,
			TotalTrafficUnits: 100,
			Variants: []VariantConfig{
				{Name: "all_bandit", Units: 100, Strategies: map[string]float64{"bandit": 1.0}},
			},
		}}
		s := NewSelector(cfg, fullRegistry(), logger)

		selection := s.Select(7, "lobby")
		if selection.ABVariant != "all_bandit" {
			t.Fatalf("ABVariant = %q, want all_bandit", selection.ABVariant)
		}
		if len(selection.Strategies) != 1 || selection.Strategies[0].Strategy.Name() != "bandit" {
			t.Errorf("got %+v, want single bandit strategy", selection.Strategies)
		}
	})

	t.Run("experiment scoped to other context is ignored", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Experiments = []ExperimentConfig{{
			ID:                "exp-post-game",
			Context:           "post_game",
			Enabled:           true,
			TotalTrafficUnits: 100,
			Variants: []VariantConfig{
				{Name: "v1", Units: 100, Strategies: map[string]float64{"bandit": 1.0}},
			},
		}}
		s := NewSelector(cfg, fullRegistry(), logger)

		if selection := s.Select(7, "lobby"); selection.ABVariant != "" {
			t.Errorf("ABVariant = %q, want empty outside experiment context", selection.ABVariant)
		}
	})

	t.Run("adaptive weights override statics when published", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Adaptive.Enabled = true
		cfg.Enabled = []string{"content_based", "popularity_based"}
		s := NewSelector(cfg, fullRegistry(), logger)

		s.SetAdaptiveWeights(map[string]float64{
			"content_based":    0.9,
			"popularity_based": 0.1,
		})

		selection := s.Select(1, "lobby")
		weights := map[string]float64{}
		for _, ws := range selection.Strategies {
			weights[ws.Strategy.Name()] = ws.Weight
		}
		if weights["content_based"] != 0.9 || weights["popularity_based"] != 0.1 {
			t.Errorf("got %v, want adaptive table applied", weights)
		}
	})

	t.Run("unregistered strategies are dropped", func(t *testing.T) {
		cfg := DefaultConfig()
		registry := NewRegistry()
		registry.Register(&stubStrategy{kind: KindPopularity})
		s := NewSelector(cfg, registry, logger)

		selection := s.Select(1, "lobby")
		if len(selection.Strategies) != 1 || selection.Strategies[0].Strategy.Name() != "popularity_based" {
			t.Errorf("got %+v, want only registered popularity strategy", selection.Strategies)
		}
	})
}
