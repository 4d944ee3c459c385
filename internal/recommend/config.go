// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Enabled lists the strategies active for scoring, by canonical name.
	Enabled []string `json:"enabled" koanf:"enabled"`

	// Weights defines the relative contribution of each strategy.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights StrategyWeights `json:"weights" koanf:"weights"`

	// Adaptive contains adaptive weighting parameters.
	Adaptive AdaptiveConfig `json:"adaptive" koanf:"adaptive"`

	// Rules contains business-rule parameters for the assembler.
	Rules RulesConfig `json:"rules" koanf:"rules"`

	// Experiments defines active A/B experiments.
	Experiments []ExperimentConfig `json:"experiments" koanf:"experiments"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Feedback contains feedback-loop parameters.
	Feedback FeedbackConfig `json:"feedback" koanf:"feedback"`

	// Seed is the base seed for deterministic per-request sampling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// StrategyWeights defines the relative contribution of each strategy.
// The field set mirrors the closed StrategyKind set.
type StrategyWeights struct {
	// Collaborative is the weight for collaborative filtering.
	Collaborative float64 `json:"collaborative_filtering" koanf:"collaborative_filtering"`

	// Content is the weight for content-based scoring.
	Content float64 `json:"content_based" koanf:"content_based"`

	// Popularity is the weight for popularity-based scoring.
	Popularity float64 `json:"popularity_based" koanf:"popularity_based"`

	// Bandit is the weight for Thompson Sampling.
	Bandit float64 `json:"bandit" koanf:"bandit"`

	// External is the weight for the external model adapter.
	External float64 `json:"external_model" koanf:"external_model"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w StrategyWeights) Normalize() StrategyWeights {
	sum := w.Collaborative + w.Content + w.Popularity + w.Bandit + w.External
	if sum == 0 {
		const equalWeight = 1.0 / 5.0
		return StrategyWeights{
			Collaborative: equalWeight,
			Content:       equalWeight,
			Popularity:    equalWeight,
			Bandit:        equalWeight,
			External:      equalWeight,
		}
	}

	return StrategyWeights{
		Collaborative: w.Collaborative / sum,
		Content:       w.Content / sum,
		Popularity:    w.Popularity / sum,
		Bandit:        w.Bandit / sum,
		External:      w.External / sum,
	}
}

// ToMap returns the weights keyed by canonical strategy name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w StrategyWeights) ToMap() map[string]float64 {
	return map[string]float64{
		KindCollaborative.String(): w.Collaborative,
		KindContent.String():       w.Content,
		KindPopularity.String():    w.Popularity,
		KindBandit.String():        w.Bandit,
		KindExternal.String():      w.External,
	}
}

// AdaptiveConfig contains parameters for adaptive weighting. The weight
// recomputation runs as a periodic batch job off the request path.
type AdaptiveConfig struct {
	// Enabled switches the selector from static to adaptive weights once
	// the batch job has published a table.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// Interval is the recompute cadence.
	// Default: 5m.
	Interval time.Duration `json:"interval" koanf:"interval"`

	// Window is the performance window consulted for CTR.
	// Default: 1h.
	Window time.Duration `json:"window" koanf:"window"`

	// MinImpressions is the minimum impressions a strategy needs in the
	// window before its CTR is trusted; below this the static weight is
	// kept.
	// Default: 100.
	MinImpressions int64 `json:"min_impressions" koanf:"min_impressions"`
}

// RulesConfig contains business-rule parameters applied by the assembler.
type RulesConfig struct {
	// DiversityCap is the maximum picks per category in one result set.
	// Default: 3.
	DiversityCap int `json:"diversity_cap" koanf:"diversity_cap"`

	// CooldownWindow suppresses games served to the player recently.
	// Default: 30m.
	CooldownWindow time.Duration `json:"cooldown_window" koanf:"cooldown_window"`

	// RiskLevelThreshold triggers the responsible-gaming filter for
	// players at or above this risk level.
	// Default: 4.
	RiskLevelThreshold int `json:"risk_level_threshold" koanf:"risk_level_threshold"`

	// MaxVolatility is the highest volatility allowed for at-risk players.
	// Default: 3.
	MaxVolatility int `json:"max_volatility" koanf:"max_volatility"`

	// MaxBetCap is the highest max-bet allowed for at-risk players.
	// Default: 100.
	MaxBetCap float64 `json:"max_bet_cap" koanf:"max_bet_cap"`
}

// ExperimentConfig defines one A/B experiment with deterministic,
// hash-based variant bucketing.
type ExperimentConfig struct {
	// ID is the stable experiment identifier used in assignment hashing.
	ID string `json:"id" koanf:"id"`

	// Context restricts the experiment to one placement tag.
	Context string `json:"context" koanf:"context"`

	// Enabled activates the experiment.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TotalTrafficUnits is the bucket space size (e.g. 100 for percent).
	TotalTrafficUnits int `json:"total_traffic_units" koanf:"total_traffic_units"`

	// Variants defines the traffic split. Unit sums below
	// TotalTrafficUnits leave the remainder on the control strategy set.
	Variants []VariantConfig `json:"variants" koanf:"variants"`
}

// VariantConfig defines one experiment arm.
type VariantConfig struct {
	// Name identifies the variant in response metadata.
	Name string `json:"name" koanf:"name"`

	// Units is the share of TotalTrafficUnits routed to this variant.
	Units int `json:"units" koanf:"units"`

	// Strategies maps canonical strategy names to weights for this arm.
	Strategies map[string]float64 `json:"strategies" koanf:"strategies"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates bounds the candidate pool size per request.
	// Default: 500.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// DefaultCount is the result size when the request omits one.
	// Default: 10.
	DefaultCount int `json:"default_count" koanf:"default_count"`

	// MaxCount is the maximum allowed requested count; requests above it
	// are rejected as invalid.
	// Default: 50.
	MaxCount int `json:"max_count" koanf:"max_count"`

	// StrategyTimeout is the per-strategy scoring deadline. A slow
	// strategy is cancelled and excluded; total request latency is the
	// max of the individual timeouts, not their sum.
	// Default: 250ms.
	StrategyTimeout time.Duration `json:"strategy_timeout" koanf:"strategy_timeout"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 60s.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// FeedbackConfig contains feedback-loop parameters.
type FeedbackConfig struct {
	// ImpressionGrace is how long an impression may wait for a click
	// before counting as a bandit failure.
	// Default: 5m.
	ImpressionGrace time.Duration `json:"impression_grace" koanf:"impression_grace"`

	// SweepInterval is the pending-impression sweep cadence.
	// Default: 30s.
	SweepInterval time.Duration `json:"sweep_interval" koanf:"sweep_interval"`

	// DedupWindow is the number of processed event IDs retained for
	// at-least-once deduplication.
	// Default: 100000.
	DedupWindow int `json:"dedup_window" koanf:"dedup_window"`

	// LedgerSize is the number of served responses retained for feedback
	// attribution.
	// Default: 50000.
	LedgerSize int `json:"ledger_size" koanf:"ledger_size"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled: []string{
			KindCollaborative.String(),
			KindContent.String(),
			KindPopularity.String(),
			KindBandit.String(),
		},
		Weights: StrategyWeights{
			Collaborative: 0.30,
			Content:       0.30,
			Popularity:    0.15,
			Bandit:        0.25,
			External:      0.0,
		},
		Adaptive: AdaptiveConfig{
			Enabled:        false,
			Interval:       5 * time.Minute,
			Window:         time.Hour,
			MinImpressions: 100,
		},
		Rules: RulesConfig{
			DiversityCap:       3,
			CooldownWindow:     30 * time.Minute,
			RiskLevelThreshold: 4,
			MaxVolatility:      3,
			MaxBetCap:          100,
		},
		Limits: LimitsConfig{
			MaxCandidates:   500,
			DefaultCount:    10,
			MaxCount:        50,
			StrategyTimeout: 250 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        60 * time.Second,
			MaxEntries: 10000,
		},
		Feedback: FeedbackConfig{
			ImpressionGrace: 5 * time.Minute,
			SweepInterval:   30 * time.Second,
			DedupWindow:     100000,
			LedgerSize:      50000,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	for _, name := range c.Enabled {
		if _, ok := KindFromName(name); !ok {
			return fmt.Errorf("enabled contains unknown strategy %q", name)
		}
	}

	if c.Rules.DiversityCap < 1 {
		return fmt.Errorf("rules.diversity_cap must be positive, got %d", c.Rules.DiversityCap)
	}
	if c.Rules.RiskLevelThreshold < 1 {
		return fmt.Errorf("rules.risk_level_threshold must be positive, got %d", c.Rules.RiskLevelThreshold)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultCount < 1 {
		return fmt.Errorf("limits.default_count must be positive, got %d", c.Limits.DefaultCount)
	}
	if c.Limits.MaxCount < c.Limits.DefaultCount {
		return fmt.Errorf("limits.max_count must be >= limits.default_count, got %d < %d",
			c.Limits.MaxCount, c.Limits.DefaultCount)
	}
	if c.Limits.StrategyTimeout <= 0 {
		return fmt.Errorf("limits.strategy_timeout must be positive, got %v", c.Limits.StrategyTimeout)
	}

	for i := range c.Experiments {
		if err := c.Experiments[i].Validate(); err != nil {
			return fmt.Errorf("experiments[%d]: %w", i, err)
		}
	}

	if c.Adaptive.MinImpressions < 0 {
		return fmt.Errorf("adaptive.min_impressions must be non-negative, got %d", c.Adaptive.MinImpressions)
	}

	if c.Feedback.ImpressionGrace <= 0 {
		return fmt.Errorf("feedback.impression_grace must be positive, got %v", c.Feedback.ImpressionGrace)
	}
	if c.Feedback.DedupWindow < 1 {
		return fmt.Errorf("feedback.dedup_window must be positive, got %d", c.Feedback.DedupWindow)
	}

	return nil
}

// Validate checks a single experiment definition.
func (e *ExperimentConfig) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("experiment id must not be empty")
	}
	if e.TotalTrafficUnits < 1 {
		return fmt.Errorf("total_traffic_units must be positive, got %d", e.TotalTrafficUnits)
	}

	units := 0
	for i := range e.Variants {
		v := &e.Variants[i]
		if v.Name == "" {
			return fmt.Errorf("variant[%d] name must not be empty", i)
		}
		if v.Units < 0 {
			return fmt.Errorf("variant %q units must be non-negative, got %d", v.Name, v.Units)
		}
		for name := range v.Strategies {
			if _, ok := KindFromName(name); !ok {
				return fmt.Errorf("variant %q references unknown strategy %q", v.Name, name)
			}
		}
		units += v.Units
	}
	if units > e.TotalTrafficUnits {
		return fmt.Errorf("variant units sum %d exceeds total_traffic_units %d", units, e.TotalTrafficUnits)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c

	clone.Enabled = append([]string(nil), c.Enabled...)

	clone.Experiments = make([]ExperimentConfig, len(c.Experiments))
	for i := range c.Experiments {
		exp := c.Experiments[i]
		exp.Variants = make([]VariantConfig, len(c.Experiments[i].Variants))
		for j := range c.Experiments[i].Variants {
			v := c.Experiments[i].Variants[j]
			strategies := make(map[string]float64, len(v.Strategies))
			for name, w := range v.Strategies {
				strategies[name] = w
			}
			v.Strategies = strategies
			exp.Variants[j] = v
		}
		clone.Experiments[i] = exp
	}

	return &clone
}
