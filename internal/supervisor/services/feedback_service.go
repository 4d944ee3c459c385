// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package services wraps the application's long-running components as
// suture.Service implementations for the supervision tree.
package services

import (
	"context"
	"fmt"

	"github.com/Uri-do/gaiming/internal/logging"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
)

// FeedbackService runs the feedback bus consumer as a supervised service.
// A crash restarts the router; the bus redelivers unacked messages and the
// ingestor's dedup makes redelivery harmless.
type FeedbackService struct {
	router *feedback.Router
}

// NewFeedbackService wraps the feedback router.
func NewFeedbackService(router *feedback.Router) *FeedbackService {
	return &FeedbackService{router: router}
}

// Serve implements suture.Service.
func (s *FeedbackService) Serve(ctx context.Context) error {
	logging.Info().Msg("starting feedback consumer")

	if err := s.router.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("feedback router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *FeedbackService) String() string {
	return "feedback-consumer"
}

// SweeperService runs the pending-impression sweep loop.
type SweeperService struct {
	ingestor *feedback.Ingestor
}

// NewSweeperService wraps the ingestor's sweep loop.
func NewSweeperService(ingestor *feedback.Ingestor) *SweeperService {
	return &SweeperService{ingestor: ingestor}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	logging.Info().Msg("starting impression sweeper")
	return s.ingestor.Run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (s *SweeperService) String() string {
	return "impression-sweeper"
}
