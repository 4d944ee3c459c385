// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package feedback

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/Uri-do/gaiming/internal/metrics"
	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/bandit"
	"github.com/Uri-do/gaiming/internal/recommend/perf"
)

// Ingestor applies interaction events to the learning state. Events are
// attributed against the serve ledger; events for unknown or expired
// recommendation IDs count as unattributed and are dropped.
//
// Impressions do not count as bandit failures immediately: each opens a
// grace window, and only impressions still unclicked when the window
// expires are swept into failures. Clicks and plays are successes.
type Ingestor struct {
	cfg     recommend.FeedbackConfig
	ledger  *recommend.Ledger
	tracker *perf.Tracker
	bandits *bandit.Store
	logger  zerolog.Logger

	// seen holds processed idempotency keys for at-least-once dedup.
	seen *lru.Cache[string, struct{}]

	// pending holds impressions whose grace period is running.
	pendingMu sync.Mutex
	pending   map[pendingKey]pendingImpression

	// now is swappable for tests.
	now func() time.Time
}

// NewIngestor creates an ingestor over the serve ledger and learning state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIngestor(
	cfg recommend.FeedbackConfig,
	ledger *recommend.Ledger,
	tracker *perf.Tracker,
	bandits *bandit.Store,
	logger zerolog.Logger,
) (*Ingestor, error) {
	seen, err := lru.New[string, struct{}](cfg.DedupWindow)
	if err != nil {
		return nil, err
	}

	return &Ingestor{
		cfg:     cfg,
		ledger:  ledger,
		tracker: tracker,
		bandits: bandits,
		logger:  logger.With().Str("component", "feedback_ingestor").Logger(),
		seen:    seen,
		pending: make(map[pendingKey]pendingImpression),
		now:     time.Now,
	}, nil
}

// Process applies one event. Returns nil for duplicates and unattributed
// events; malformed events return an error so the bus can poison them.
func (i *Ingestor) Process(event *recommend.InteractionEvent) error {
	if err := ValidateEvent(event); err != nil {
		metrics.FeedbackEvents.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	eventType := string(event.Type)
	metrics.FeedbackLag.Observe(i.now().Sub(event.Timestamp).Seconds())

	key := dedupKey(event)
	if dup, _ := i.seen.ContainsOrAdd(key, struct{}{}); dup {
		metrics.FeedbackEvents.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}

	record, ok := i.ledger.Lookup(event.RecommendationID)
	if !ok {
		metrics.FeedbackEvents.WithLabelValues(eventType, "unattributed").Inc()
		i.logger.Debug().
			Str("recommendation_id", event.RecommendationID).
			Str("event_type", eventType).
			Msg("event references unknown recommendation")
		return nil
	}

	item, served := record.Items[event.GameID]
	if !served {
		metrics.FeedbackEvents.WithLabelValues(eventType, "unattributed").Inc()
		return nil
	}

	i.apply(event, &item)
	metrics.FeedbackEvents.WithLabelValues(eventType, "processed").Inc()
	return nil
}

// apply folds one attributed event into tracker and bandit state. Tracker
// counters apply to every attributed item; bandit posteriors and grace
// windows only move for items the bandit itself served, so other
// strategies' results never add reward mass to arms the bandit did not
// choose.
func (i *Ingestor) apply(event *recommend.InteractionEvent, item *recommend.ServedItem) {
	banditServed := item.Strategy == recommend.KindBandit.String()
	arm := bandit.ArmForGame(event.GameID)
	key := pendingKey{recommendationID: event.RecommendationID, gameID: event.GameID}

	switch event.Type {
	case recommend.EventImpression:
		i.tracker.Record(perf.Outcome{
			Strategy:   item.Strategy,
			Category:   item.Category,
			Time:       event.Timestamp,
			Impression: true,
		})
		if banditServed {
			i.pendingMu.Lock()
			i.pending[key] = pendingImpression{
				playerID: event.PlayerID,
				arm:      arm,
				deadline: i.now().Add(i.cfg.ImpressionGrace),
			}
			i.pendingMu.Unlock()
		}

	case recommend.EventClick:
		i.tracker.Record(perf.Outcome{
			Strategy: item.Strategy,
			Category: item.Category,
			Time:     event.Timestamp,
			Click:    true,
		})
		if banditServed {
			i.resolvePending(key)
			i.bandits.RecordSuccess(event.PlayerID, arm)
		}

	case recommend.EventPlay:
		i.tracker.Record(perf.Outcome{
			Strategy:   item.Strategy,
			Category:   item.Category,
			Time:       event.Timestamp,
			Conversion: event.Revenue > 0,
			Revenue:    event.Revenue,
		})
		if banditServed {
			i.resolvePending(key)
			i.bandits.RecordSuccess(event.PlayerID, arm)
		}

	case recommend.EventDismiss:
		if banditServed {
			i.resolvePending(key)
			i.bandits.RecordFailure(event.PlayerID, arm)
		}
	}
}

// resolvePending removes an impression from the grace window so the sweep
// cannot also count it as a failure.
func (i *Ingestor) resolvePending(key pendingKey) {
	i.pendingMu.Lock()
	delete(i.pending, key)
	i.pendingMu.Unlock()
}

// Sweep expires pending impressions whose grace window has passed,
// recording each as a bandit failure. Returns the number swept.
func (i *Ingestor) Sweep() int {
	now := i.now()

	i.pendingMu.Lock()
	expired := make([]pendingImpression, 0)
	for key, p := range i.pending {
		if now.After(p.deadline) {
			expired = append(expired, p)
			delete(i.pending, key)
		}
	}
	i.pendingMu.Unlock()

	for _, p := range expired {
		i.bandits.RecordFailure(p.playerID, p.arm)
	}

	if len(expired) > 0 {
		i.logger.Debug().Int("swept", len(expired)).Msg("expired unclicked impressions")
	}
	return len(expired)
}

// Run sweeps on the configured cadence until the context ends.
func (i *Ingestor) Run(ctx context.Context) error {
	interval := i.cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			i.Sweep()
		}
	}
}

// PendingCount returns the number of impressions in their grace window.
func (i *Ingestor) PendingCount() int {
	i.pendingMu.Lock()
	defer i.pendingMu.Unlock()
	return len(i.pending)
}
