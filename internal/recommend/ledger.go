// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ServedItem records per-game attribution for a served recommendation.
type ServedItem struct {
	// Strategy is the attributed strategy name.
	Strategy string

	// Category is the game category at serve time.
	Category string
}

// ServeRecord captures what one response served, for feedback attribution.
type ServeRecord struct {
	PlayerID int64
	Items    map[int64]ServedItem
	ServedAt time.Time
}

// Ledger is a bounded record of recently served responses, keyed by
// recommendation ID. The engine writes at serve time; the feedback ingestor
// reads to attribute interaction events to strategies and bandit arms.
// Old entries fall out of the LRU window; events referencing them are
// counted as unattributed.
type Ledger struct {
	records *lru.Cache[string, *ServeRecord]
}

// NewLedger creates a ledger retaining up to size served responses.
func NewLedger(size int) (*Ledger, error) {
	records, err := lru.New[string, *ServeRecord](size)
	if err != nil {
		return nil, err
	}
	return &Ledger{records: records}, nil
}

// Record stores the serve record for a recommendation ID.
func (l *Ledger) Record(recommendationID string, record *ServeRecord) {
	l.records.Add(recommendationID, record)
}

// Lookup returns the serve record for a recommendation ID.
func (l *Ledger) Lookup(recommendationID string) (*ServeRecord, bool) {
	return l.records.Get(recommendationID)
}

// Len returns the number of retained serve records.
func (l *Ledger) Len() int {
	return l.records.Len()
}
