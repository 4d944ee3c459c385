// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package perf aggregates recommendation performance (impressions, clicks,
// conversions, revenue) per strategy and category over sliding time
// windows. The feedback ingestor writes; the adaptive weighting job and
// diagnostics read.
package perf

import (
	"sync"
	"time"
)

// bucketSize is the time-bucket granularity of the sliding window.
const bucketSize = time.Minute

// defaultBuckets covers a one-hour window at minute granularity.
const defaultBuckets = 60

// Outcome is one observed funnel step attributed to a strategy.
type Outcome struct {
	Strategy string
	Category string
	Time     time.Time

	Impression bool
	Click      bool
	Conversion bool
	Revenue    float64
}

// Metrics is an aggregated window snapshot.
type Metrics struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Revenue     float64
}

// CTR returns clicks over impressions, 0 when there are no impressions.
func (m Metrics) CTR() float64 {
	if m.Impressions == 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

// seriesKey identifies one (strategy, category) counter series.
type seriesKey struct {
	strategy string
	category string
}

// bucket holds counts for one time slice.
type bucket struct {
	start time.Time
	Metrics
}

// series is a fixed ring of time buckets. Stale buckets are reset lazily
// when their slot is revisited.
type series struct {
	buckets []bucket
}

// Tracker accumulates outcome counters per strategy and category.
// Safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	series map[seriesKey]*series

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		series: make(map[seriesKey]*series),
		now:    time.Now,
	}
}

// Record adds one outcome to the matching series. The category dimension is
// recorded twice: once under the outcome's category and once under the
// empty category as the all-categories rollup.
func (t *Tracker) Record(outcome Outcome) {
	at := outcome.Time
	if at.IsZero() {
		at = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.add(seriesKey{strategy: outcome.Strategy, category: ""}, at, outcome)
	if outcome.Category != "" {
		t.add(seriesKey{strategy: outcome.Strategy, category: outcome.Category}, at, outcome)
	}
}

func (t *Tracker) add(key seriesKey, at time.Time, outcome Outcome) {
	s, ok := t.series[key]
	if !ok {
		s = &series{buckets: make([]bucket, defaultBuckets)}
		t.series[key] = s
	}

	start := at.Truncate(bucketSize)
	idx := int(start.UnixNano()/int64(bucketSize)) % len(s.buckets)

	b := &s.buckets[idx]
	if !b.start.Equal(start) {
		*b = bucket{start: start}
	}

	if outcome.Impression {
		b.Impressions++
	}
	if outcome.Click {
		b.Clicks++
	}
	if outcome.Conversion {
		b.Conversions++
	}
	b.Revenue += outcome.Revenue
}

// Snapshot aggregates a strategy's counters over the window. An empty
// category selects the all-categories rollup. Windows beyond the ring
// capacity are clamped to it.
func (t *Tracker) Snapshot(strategy, category string, window time.Duration) Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.series[seriesKey{strategy: strategy, category: category}]
	if !ok {
		return Metrics{}
	}

	cutoff := t.now().Add(-window)
	var out Metrics
	for i := range s.buckets {
		b := &s.buckets[i]
		if b.start.IsZero() || b.start.Before(cutoff.Truncate(bucketSize)) {
			continue
		}
		out.Impressions += b.Impressions
		out.Clicks += b.Clicks
		out.Conversions += b.Conversions
		out.Revenue += b.Revenue
	}
	return out
}

// Strategies lists the strategies with recorded outcomes.
func (t *Tracker) Strategies() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for key := range t.series {
		if _, ok := seen[key.strategy]; ok {
			continue
		}
		seen[key.strategy] = struct{}{}
		out = append(out, key.strategy)
	}
	return out
}
