// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package metrics provides Prometheus instrumentation for the
// recommendation engine:
//   - Scoring request latency and outcome
//   - Per-strategy failures and timeouts
//   - Response cache efficiency
//   - Feedback pipeline throughput and dedup
//   - Bandit state updates
//   - External model circuit breaker state
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scoring path metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"context", "outcome"}, // outcome: "ok", "fallback", "invalid", "error"
	)

	StrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_strategy_duration_seconds",
			Help:    "Duration of individual strategy scoring calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_strategy_failures_total",
			Help: "Total number of strategy scoring failures",
		},
		[]string{"strategy", "reason"}, // reason: "error", "timeout", "breaker_open"
	)

	// Response cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Feedback pipeline metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Total number of interaction events processed",
		},
		[]string{"event_type", "result"}, // result: "processed", "duplicate", "unattributed", "error"
	)

	FeedbackLag = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedback_event_lag_seconds",
			Help:    "Delay between event timestamp and processing time",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300, 900},
		},
	)

	// Bandit metrics
	BanditUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_arm_updates_total",
			Help: "Total number of bandit arm posterior updates",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	// External model metrics
	ExternalModelState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "external_model_breaker_open",
			Help: "Whether the external model circuit breaker is open (1) or closed (0)",
		},
	)
)

// ObserveRecommendation records a completed recommendation request.
func ObserveRecommendation(context, outcome string, d time.Duration) {
	RecommendationDuration.WithLabelValues(context, outcome).Observe(d.Seconds())
}

// ObserveStrategy records a completed strategy scoring call.
func ObserveStrategy(strategy string, d time.Duration) {
	StrategyDuration.WithLabelValues(strategy).Observe(d.Seconds())
}
