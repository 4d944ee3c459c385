// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Uri-do/gaiming/internal/features"
	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
	"github.com/Uri-do/gaiming/internal/recommend/strategy"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	provider := features.NewMemoryProvider()
	provider.UpdateGames([]recommend.GameFeatures{
		{GameID: 1, Name: "Book of Gems", Category: "slots", PopularityScore: 90},
		{GameID: 2, Name: "Royal Blackjack", Category: "table", PopularityScore: 70},
		{GameID: 3, Name: "Neon Spins", Category: "slots", PopularityScore: 50},
	})

	registry := recommend.NewRegistry()
	registry.Register(strategy.NewPopularity())

	cfg := recommend.DefaultConfig()
	cfg.Enabled = []string{"popularity_based"}
	cfg.Weights = recommend.StrategyWeights{Popularity: 1}

	engine, err := recommend.NewEngine(cfg, registry, provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	bus := feedback.NewInProcessPubSub(watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	srv := NewServer(ServerOptions{Host: "127.0.0.1", Port: 0}, engine, bus, zerolog.Nop())
	return srv, srv.routes()
}

func TestHandleRecommend(t *testing.T) {
	_, handler := newTestServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid request returns ranked games", func(t *testing.T) {
		rec := post(`{"player_id": 7, "context": "lobby", "count": 2}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		var resp recommend.Response
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Recommendations) != 2 {
			t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
		}
		if resp.Recommendations[0].GameID != 1 {
			t.Errorf("top game = %d, want most popular (1)", resp.Recommendations[0].GameID)
		}
		if resp.RequestID == "" {
			t.Error("response missing request ID")
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		if rec := post(`{"player_id": `); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing player rejected", func(t *testing.T) {
		if rec := post(`{"context": "lobby"}`); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("count above limit rejected", func(t *testing.T) {
		if rec := post(`{"player_id": 7, "context": "lobby", "count": 9999}`); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleFeedback(t *testing.T) {
	_, handler := newTestServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback/events", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid event accepted", func(t *testing.T) {
		rec := post(`{"recommendation_id": "rec-1", "player_id": 7, "game_id": 1, "type": "click"}`)
		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown event type rejected", func(t *testing.T) {
		rec := post(`{"recommendation_id": "rec-1", "player_id": 7, "game_id": 1, "type": "teleport"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		if rec := post(`{`); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
}
