// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package feedback consumes player interaction events and folds them into
// the learning state: the performance tracker for adaptive weighting and
// the bandit store for Thompson Sampling. Delivery is at-least-once;
// processing is idempotent per (recommendationID, eventType).
package feedback

import (
	"fmt"
	"time"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// Topics on the feedback message bus.
const (
	// TopicInteraction carries player interaction events.
	TopicInteraction = "feedback.interaction"

	// TopicPoison receives events that failed all retries.
	TopicPoison = "feedback.poison"
)

// ValidateEvent checks an interaction event's structural validity before
// processing. Invalid events are rejected without retry.
func ValidateEvent(event *recommend.InteractionEvent) error {
	if event.RecommendationID == "" {
		return fmt.Errorf("recommendation_id must not be empty")
	}
	if event.PlayerID <= 0 {
		return fmt.Errorf("player_id must be positive, got %d", event.PlayerID)
	}
	if event.GameID <= 0 {
		return fmt.Errorf("game_id must be positive, got %d", event.GameID)
	}
	if !event.Type.Valid() {
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("timestamp must be set")
	}
	if event.Revenue < 0 {
		return fmt.Errorf("revenue must be non-negative, got %f", event.Revenue)
	}
	return nil
}

// dedupKey is the idempotency key for event processing. Replaying the same
// event type for the same served recommendation and game is a no-op.
func dedupKey(event *recommend.InteractionEvent) string {
	return fmt.Sprintf("%s:%d:%s", event.RecommendationID, event.GameID, event.Type)
}

// pendingKey identifies an impression awaiting a click.
type pendingKey struct {
	recommendationID string
	gameID           int64
}

// pendingImpression is an impression whose grace period is running.
type pendingImpression struct {
	playerID int64
	arm      string
	deadline time.Time
}
