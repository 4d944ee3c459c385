// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RouterConfig tunes the feedback bus consumer.
type RouterConfig struct {
	// CloseTimeout is how long to wait for in-flight handlers on close.
	CloseTimeout time.Duration

	// Retry parameters for transient handler failures.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonTopic receives events that exhaust retries. Empty disables
	// the poison queue.
	PoisonTopic string
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
		PoisonTopic:          TopicPoison,
	}
}

// Router consumes interaction events off the bus and hands them to the
// ingestor. Handlers get panic recovery, exponential-backoff retry, and
// poison-queue routing for events that keep failing.
type Router struct {
	router     *message.Router
	serializer *Serializer
	ingestor   *Ingestor
}

// NewRouter builds the consumer pipeline over the given pubsub.
func NewRouter(
	cfg RouterConfig,
	subscriber message.Subscriber,
	poisonPublisher message.Publisher,
	ingestor *Ingestor,
	logger watermill.LoggerAdapter,
) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if poisonPublisher != nil && cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue: %w", err)
		}
		wmRouter.AddMiddleware(poison)
	}

	r := &Router{
		router:     wmRouter,
		serializer: NewSerializer(),
		ingestor:   ingestor,
	}

	wmRouter.AddNoPublisherHandler(
		"interaction_ingest",
		TopicInteraction,
		subscriber,
		r.handleInteraction,
	)

	return r, nil
}

// handleInteraction decodes and processes one bus message. Decode failures
// return an error so retries and then the poison queue take over.
func (r *Router) handleInteraction(msg *message.Message) error {
	event, err := r.serializer.Unmarshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("decode interaction event: %w", err)
	}
	return r.ingestor.Process(event)
}

// Run blocks consuming messages until the context ends.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel closed once the router is consuming.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close shuts the router down, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
