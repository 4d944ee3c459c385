// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommend serves POST /api/v1/recommendations.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	resp, err := s.engine.Recommend(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, recommend.ErrAllStrategiesFailed),
			errors.Is(err, recommend.ErrNoStrategies):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "recommendations unavailable"})
		default:
			s.logger.Error().Err(err).Msg("recommendation request failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleFeedback serves POST /api/v1/feedback/events. Events are accepted
// and queued; processing is asynchronous, so acceptance only means the
// event reached the bus.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var event recommend.InteractionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed event body"})
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := feedback.ValidateEvent(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.bus.Submit(&event); err != nil {
		s.logger.Error().Err(err).Msg("feedback submit failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "event intake unavailable"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// writeJSON encodes a response body with the standard headers.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
