// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package feedback

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// Serializer handles interaction event encoding for bus messages.
type Serializer struct{}

// NewSerializer creates a serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal converts an event to JSON bytes, validating first.
func (s *Serializer) Marshal(event *recommend.InteractionEvent) ([]byte, error) {
	if err := ValidateEvent(event); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to an event and validates it.
func (s *Serializer) Unmarshal(data []byte) (*recommend.InteractionEvent, error) {
	var event recommend.InteractionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := ValidateEvent(&event); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &event, nil
}
