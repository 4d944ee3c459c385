// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package api exposes the recommendation engine over HTTP using the Chi
// router: scoring requests, feedback event intake, health and metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
)

// Server is the HTTP front of the engine.
type Server struct {
	engine *recommend.Engine
	bus    *feedback.PubSub
	logger zerolog.Logger

	httpServer *http.Server
}

// ServerOptions configures the listener.
type ServerOptions struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates the HTTP server over the engine and feedback bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(opts ServerOptions, engine *recommend.Engine, bus *feedback.PubSub, logger zerolog.Logger) *Server {
	s := &Server{
		engine: engine,
		bus:    bus,
		logger: logger.With().Str("component", "api").Logger(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      s.routes(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// routes builds the Chi routing table.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", s.handleRecommend)
		r.Post("/feedback/events", s.handleFeedback)
	})

	return r
}

// Serve runs the listener until the context ends, then shuts down
// gracefully. Implements suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Server) String() string {
	return "http-api"
}
