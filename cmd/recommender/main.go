// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package main is the entry point for the GAIming recommendation server.
//
// GAIming serves personalized game recommendations for casino platforms.
// A closed set of scoring strategies (collaborative filtering, content
// matching, popularity, Thompson Sampling, optional external ML model) is
// blended per request, filtered through responsible-gaming and diversity
// rules, and continuously tuned by the feedback loop.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 loading (defaults, YAML, env)
//  2. Feature provider: in-memory snapshot store
//  3. Learning state: bandit store, performance tracker
//  4. Engine: strategy registry, selector, combiner, assembler
//  5. Feedback bus: in-process or NATS JetStream (nats.enabled)
//  6. Supervision tree: feedback consumer, sweeper, adaptive weights,
//     HTTP API, restarted on failure with backoff
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the feedback consumer acks or releases in-flight
// events, and the supervision tree stops bottom-up.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Uri-do/gaiming/internal/api"
	"github.com/Uri-do/gaiming/internal/config"
	"github.com/Uri-do/gaiming/internal/features"
	"github.com/Uri-do/gaiming/internal/logging"
	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/bandit"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
	"github.com/Uri-do/gaiming/internal/recommend/perf"
	"github.com/Uri-do/gaiming/internal/recommend/strategy"
	"github.com/Uri-do/gaiming/internal/supervisor"
	"github.com/Uri-do/gaiming/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()
	logger.Info().Msg("starting GAIming recommendation server")

	// Learning state shared between scoring and feedback.
	provider := features.NewMemoryProvider()
	bandits := bandit.NewStore()
	tracker := perf.NewTracker()

	// Strategy set. External model stays unregistered until a predictor
	// endpoint is configured; the selector skips unregistered strategies.
	registry := recommend.NewRegistry()
	registry.Register(strategy.NewCollaborative(strategy.DefaultCollaborativeConfig(), provider))
	registry.Register(strategy.NewContent(strategy.DefaultContentWeights()))
	registry.Register(strategy.NewPopularity())
	registry.Register(strategy.NewBandit(bandits, cfg.Recommend.Seed))

	engine, err := recommend.NewEngine(&cfg.Recommend, registry, provider, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create engine")
	}

	// Feedback bus: durable NATS when enabled, in-process otherwise.
	busLogger := feedback.NewWatermillLogger(logger)
	var bus *feedback.PubSub
	if cfg.NATS.Enabled {
		bus, err = feedback.NewNATSPubSub(cfg.NATS.NATSConfig, busLogger)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect feedback bus")
		}
	} else {
		bus = feedback.NewInProcessPubSub(busLogger)
		logger.Info().Msg("nats disabled, using in-process feedback bus")
	}

	ingestor, err := feedback.NewIngestor(cfg.Recommend.Feedback, engine.Ledger(), tracker, bandits, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create feedback ingestor")
	}

	router, err := feedback.NewRouter(feedback.DefaultRouterConfig(), bus.Subscriber, bus.Publisher, ingestor, busLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create feedback router")
	}

	adaptiveJob := perf.NewAdaptiveWeights(
		cfg.Recommend.Adaptive,
		cfg.Recommend.Weights.Normalize().ToMap(),
		tracker,
		engine.Selector(),
		logger,
	)

	server := api.NewServer(api.ServerOptions{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, engine, bus, logger)

	// Supervision tree: learning layer failures never affect serving.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddLearningService(services.NewFeedbackService(router))
	tree.AddLearningService(services.NewSweeperService(ingestor))
	if cfg.Recommend.Adaptive.Enabled {
		tree.AddLearningService(services.NewAdaptiveService(cfg.Recommend.Adaptive, adaptiveJob))
	}
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor tree exited")
		_ = bus.Close()
		os.Exit(1)
	}

	if err := bus.Close(); err != nil {
		logger.Warn().Err(err).Msg("feedback bus close failed")
	}
	logger.Info().Msg("shutdown complete")
}
