// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"testing"
	"time"
)

func TestCooldownTracker(t *testing.T) {
	t.Run("served games are recent within window", func(t *testing.T) {
		tracker, err := NewCooldownTracker(30*time.Minute, 100)
		if err != nil {
			t.Fatalf("NewCooldownTracker: %v", err)
		}

		tracker.RecordServed(1, []int64{10, 20})

		recent := tracker.Recent(1)
		if _, ok := recent[10]; !ok {
			t.Error("game 10 missing from recent set")
		}
		if _, ok := recent[20]; !ok {
			t.Error("game 20 missing from recent set")
		}
		if len(tracker.Recent(2)) != 0 {
			t.Error("other player sees cooldown entries")
		}
	})

	t.Run("entries expire past the window", func(t *testing.T) {
		tracker, err := NewCooldownTracker(30*time.Minute, 100)
		if err != nil {
			t.Fatalf("NewCooldownTracker: %v", err)
		}

		now := time.Now()
		tracker.now = func() time.Time { return now }
		tracker.RecordServed(1, []int64{10})

		tracker.now = func() time.Time { return now.Add(31 * time.Minute) }
		if len(tracker.Recent(1)) != 0 {
			t.Error("expired entry still reported recent")
		}
	})

	t.Run("zero window disables tracking", func(t *testing.T) {
		tracker, err := NewCooldownTracker(0, 100)
		if err != nil {
			t.Fatalf("NewCooldownTracker: %v", err)
		}

		tracker.RecordServed(1, []int64{10})
		if len(tracker.Recent(1)) != 0 {
			t.Error("zero-window tracker returned entries")
		}
	})
}

func TestLedger(t *testing.T) {
	ledger, err := NewLedger(2)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	record := &ServeRecord{
		PlayerID: 1,
		Items:    map[int64]ServedItem{10: {Strategy: "bandit", Category: "slots"}},
		ServedAt: time.Now(),
	}
	ledger.Record("req-1", record)

	got, ok := ledger.Lookup("req-1")
	if !ok {
		t.Fatal("record not found")
	}
	if got.Items[10].Strategy != "bandit" {
		t.Errorf("strategy = %q, want bandit", got.Items[10].Strategy)
	}

	// Capacity 2: a third record evicts the oldest.
	ledger.Record("req-2", record)
	ledger.Record("req-3", record)
	if _, ok := ledger.Lookup("req-1"); ok {
		t.Error("oldest record survived past capacity")
	}
	if ledger.Len() != 2 {
		t.Errorf("Len = %d, want 2", ledger.Len())
	}
}
