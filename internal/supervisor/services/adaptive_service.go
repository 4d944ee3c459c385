// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package services

import (
	"context"
	"time"

	"github.com/Uri-do/gaiming/internal/logging"
	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/perf"
)

// AdaptiveService periodically recomputes strategy weights from recent
// performance and publishes them to the selector.
type AdaptiveService struct {
	cfg AdaptiveServiceConfig
	job *perf.AdaptiveWeights
}

// AdaptiveServiceConfig tunes the recompute cadence.
type AdaptiveServiceConfig struct {
	Interval time.Duration
}

// NewAdaptiveService wraps the adaptive weighting job.
func NewAdaptiveService(cfg recommend.AdaptiveConfig, job *perf.AdaptiveWeights) *AdaptiveService {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AdaptiveService{
		cfg: AdaptiveServiceConfig{Interval: interval},
		job: job,
	}
}

// Serve implements suture.Service.
func (s *AdaptiveService) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.cfg.Interval).Msg("starting adaptive weighting")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.job.Recompute()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *AdaptiveService) String() string {
	return "adaptive-weights"
}
