// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Uri-do/gaiming/internal/metrics"
)

// Engine coordinates strategy selection, parallel scoring, score
// combination and business-rule assembly into one recommendation pipeline.
// It is safe for concurrent use.
//
// Strategies never block each other: each runs in its own goroutine under
// its own deadline, and a failed or slow strategy is excluded from the
// blend rather than failing the request. Only the popularity fallback
// failing on top of everything else surfaces an error to the caller.
type Engine struct {
	cfg    *Config
	logger zerolog.Logger

	registry  *Registry
	selector  *Selector
	provider  FeatureProvider
	combiner  *Combiner
	assembler *Assembler

	ledger   *Ledger
	cooldown *CooldownTracker

	cache  *responseCache
	flight singleflight.Group

	validate *validator.Validate
}

// NewEngine creates a recommendation engine. The caller registers strategy
// instances on the registry before serving traffic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, registry *Registry, provider FeatureProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ledger, err := NewLedger(cfg.Feedback.LedgerSize)
	if err != nil {
		return nil, fmt.Errorf("create serve ledger: %w", err)
	}

	cooldown, err := NewCooldownTracker(cfg.Rules.CooldownWindow, cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create cooldown tracker: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		registry:  registry,
		selector:  NewSelector(cfg, registry, logger),
		provider:  provider,
		combiner:  NewCombiner(),
		assembler: NewAssembler(cfg.Rules),
		ledger:    ledger,
		cooldown:  cooldown,
		cache:     newResponseCache(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		validate:  validator.New(),
	}, nil
}

// Selector exposes the engine's selector for the adaptive weighting job.
func (e *Engine) Selector() *Selector {
	return e.selector
}

// Ledger exposes the serve ledger for the feedback ingestor.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Recommend produces recommendations for a player.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := e.validateRequest(&req); err != nil {
		metrics.ObserveRecommendation(req.Context, "invalid", time.Since(start))
		return nil, err
	}
	if req.Count == 0 {
		req.Count = e.cfg.Limits.DefaultCount
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if e.cfg.Cache.Enabled && len(req.ExcludeGameIDs) == 0 {
		key := e.cacheKey(&req)
		if cached := e.cache.get(key); cached != nil {
			metrics.CacheHits.Inc()
			out := *cached
			out.RequestID = req.RequestID
			out.Metadata.CacheHit = true
			e.aliasServe(cached.RequestID, &req, out.Recommendations)
			metrics.ObserveRecommendation(req.Context, "ok", time.Since(start))
			return &out, nil
		}
		metrics.CacheMisses.Inc()

		// singleflight so a cache-miss stampede computes once per key.
		result, err, _ := e.flight.Do(key, func() (any, error) {
			resp, err := e.recommend(ctx, req, start)
			if err == nil {
				e.cache.put(key, resp)
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		return result.(*Response), nil
	}

	return e.recommend(ctx, req, start)
}

// validateRequest checks structural validity and operational limits.
func (e *Engine) validateRequest(req *Request) error {
	if err := e.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if req.Count > e.cfg.Limits.MaxCount {
		return fmt.Errorf("%w: count %d exceeds maximum %d", ErrInvalidRequest, req.Count, e.cfg.Limits.MaxCount)
	}
	return nil
}

// cacheKey builds the response cache key. Keys include the feature version
// so a feature refresh invalidates cached responses without a flush.
func (e *Engine) cacheKey(req *Request) string {
	return fmt.Sprintf("rec:%d:%s:%d:%d", req.PlayerID, req.Context, req.Count, e.provider.Version())
}

// recommend runs the full uncached pipeline.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, start time.Time) (*Response, error) {
	selection := e.selector.Select(req.PlayerID, req.Context)
	if len(selection.Strategies) == 0 {
		metrics.ObserveRecommendation(req.Context, "error", time.Since(start))
		return nil, ErrNoStrategies
	}

	player, err := e.provider.PlayerFeatures(ctx, req.PlayerID)
	if err != nil {
		metrics.ObserveRecommendation(req.Context, "error", time.Since(start))
		return nil, fmt.Errorf("fetch player features: %w", err)
	}

	games, err := e.candidates(ctx, &req)
	if err != nil {
		metrics.ObserveRecommendation(req.Context, "error", time.Since(start))
		return nil, fmt.Errorf("fetch game candidates: %w", err)
	}

	sc := ScoringContext{
		RequestID:     req.RequestID,
		Context:       req.Context,
		Factors:       req.Factors,
		MaxCandidates: e.cfg.Limits.MaxCandidates,
	}

	results := e.runStrategies(ctx, selection.Strategies, player, games, sc)

	byStrategy := make(map[string][]ScoredCandidate, len(results))
	weights := make(map[string]float64, len(results))
	used := make([]string, 0, len(results))
	for i := range results {
		if results[i].err != nil || len(results[i].candidates) == 0 {
			continue
		}
		byStrategy[results[i].name] = results[i].candidates
		weights[results[i].name] = selection.Strategies[i].Weight
		used = append(used, results[i].name)
	}

	outcome := "ok"
	if len(byStrategy) == 0 {
		fallback, err := e.popularityFallback(ctx, player, games, sc)
		if err != nil {
			metrics.ObserveRecommendation(req.Context, "error", time.Since(start))
			return nil, err
		}
		byStrategy = map[string][]ScoredCandidate{KindPopularity.String(): fallback}
		weights = map[string]float64{KindPopularity.String(): 1.0}
		used = []string{KindPopularity.String() + "_fallback"}
		outcome = "fallback"

		e.logger.Warn().
			Str("request_id", req.RequestID).
			Int64("player_id", req.PlayerID).
			Msg("all strategies failed, serving popularity fallback")
	}

	combined := e.combiner.Combine(byStrategy, weights)

	gameIndex := make(map[int64]GameFeatures, len(games))
	for i := range games {
		gameIndex[games[i].GameID] = games[i]
	}

	items := e.assembler.Assemble(
		combined,
		req.Count,
		player,
		gameIndex,
		req.ExcludeSet(),
		e.cooldown.Recent(req.PlayerID),
	)

	e.recordServe(&req, items, gameIndex)

	resp := &Response{
		PlayerID:        req.PlayerID,
		RequestID:       req.RequestID,
		Recommendations: items,
		Metadata: ResponseMetadata{
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			AlgorithmsUsed:   used,
			ABVariant:        selection.ABVariant,
			FeatureVersion:   e.provider.Version(),
			Timestamp:        time.Now().UTC(),
		},
	}

	metrics.ObserveRecommendation(req.Context, outcome, time.Since(start))
	return resp, nil
}

// candidates fetches the candidate pool with request exclusions applied
// before any scoring work.
func (e *Engine) candidates(ctx context.Context, req *Request) ([]GameFeatures, error) {
	games, err := e.provider.GameCandidates(ctx, e.cfg.Limits.MaxCandidates)
	if err != nil {
		return nil, err
	}

	exclude := req.ExcludeSet()
	if len(exclude) == 0 {
		return games, nil
	}

	// Filter into a fresh slice; the provider may hand out its own backing
	// array.
	filtered := make([]GameFeatures, 0, len(games))
	for i := range games {
		if _, ok := exclude[games[i].GameID]; ok {
			continue
		}
		filtered = append(filtered, games[i])
	}
	return filtered, nil
}

// strategyResult holds the outcome of one strategy's scoring call.
type strategyResult struct {
	name       string
	candidates []ScoredCandidate
	err        error
}

// runStrategies scores all selected strategies in parallel. Each strategy
// gets its own deadline, so total fan-out latency is bounded by the slowest
// timeout, not the sum.
func (e *Engine) runStrategies(
	ctx context.Context,
	strategies []WeightedStrategy,
	player *PlayerFeatures,
	games []GameFeatures,
	sc ScoringContext,
) []strategyResult {
	results := make([]strategyResult, len(strategies))
	done := make(chan int, len(strategies))

	for i := range strategies {
		go func(idx int) {
			results[idx] = e.runSingleStrategy(ctx, strategies[idx].Strategy, player, games, sc)
			done <- idx
		}(i)
	}
	for range strategies {
		<-done
	}

	return results
}

// runSingleStrategy scores one strategy under its own deadline.
func (e *Engine) runSingleStrategy(
	ctx context.Context,
	strategy Strategy,
	player *PlayerFeatures,
	games []GameFeatures,
	sc ScoringContext,
) strategyResult {
	result := strategyResult{name: strategy.Name()}
	start := time.Now()

	strategyCtx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StrategyTimeout)
	defer cancel()

	result.candidates, result.err = strategy.Score(strategyCtx, player, games, sc)
	metrics.ObserveStrategy(result.name, time.Since(start))

	if result.err != nil {
		reason := "error"
		if errors.Is(result.err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.StrategyFailures.WithLabelValues(result.name, reason).Inc()

		e.logger.Warn().
			Str("strategy", result.name).
			Str("request_id", sc.RequestID).
			Err(result.err).
			Msg("strategy scoring failed")
	}

	return result
}

// popularityFallback scores via the popularity strategy when every selected
// strategy failed. Popularity needs no per-player state, so it is the
// safest degraded answer.
func (e *Engine) popularityFallback(
	ctx context.Context,
	player *PlayerFeatures,
	games []GameFeatures,
	sc ScoringContext,
) ([]ScoredCandidate, error) {
	popularity, err := e.registry.ResolveKind(KindPopularity)
	if err != nil {
		return nil, fmt.Errorf("%w: popularity fallback unavailable", ErrAllStrategiesFailed)
	}

	fallbackCtx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StrategyTimeout)
	defer cancel()

	candidates, err := popularity.Score(fallbackCtx, player, games, sc)
	if err != nil || len(candidates) == 0 {
		return nil, fmt.Errorf("%w: popularity fallback failed", ErrAllStrategiesFailed)
	}
	return candidates, nil
}

// recordServe writes the serve ledger entry and cooldown marks so feedback
// events and repeat requests can be attributed against this response.
func (e *Engine) recordServe(req *Request, items []GameRecommendation, games map[int64]GameFeatures) {
	if len(items) == 0 {
		return
	}

	served := make(map[int64]ServedItem, len(items))
	gameIDs := make([]int64, 0, len(items))
	for i := range items {
		served[items[i].GameID] = ServedItem{
			Strategy: items[i].Algorithm,
			Category: games[items[i].GameID].Category,
		}
		gameIDs = append(gameIDs, items[i].GameID)
	}

	e.ledger.Record(req.RequestID, &ServeRecord{
		PlayerID: req.PlayerID,
		Items:    served,
		ServedAt: time.Now().UTC(),
	})
	e.cooldown.RecordServed(req.PlayerID, gameIDs)
}

// aliasServe links a cache-served response's fresh request ID to the
// original serve record, so feedback events against either ID attribute.
// Cooldown marks are refreshed: the games were shown to the player again.
func (e *Engine) aliasServe(originalID string, req *Request, items []GameRecommendation) {
	if len(items) == 0 {
		return
	}

	record, ok := e.ledger.Lookup(originalID)
	if !ok {
		// The original entry aged out of the ledger while the response was
		// still cached. Rebuild attribution from the response itself; the
		// serve-time category is gone, so the tracker rollup still counts.
		rebuilt := make(map[int64]ServedItem, len(items))
		for i := range items {
			rebuilt[items[i].GameID] = ServedItem{Strategy: items[i].Algorithm}
		}
		record = &ServeRecord{
			PlayerID: req.PlayerID,
			Items:    rebuilt,
			ServedAt: time.Now().UTC(),
		}
	}
	e.ledger.Record(req.RequestID, record)

	gameIDs := make([]int64, 0, len(items))
	for i := range items {
		gameIDs = append(gameIDs, items[i].GameID)
	}
	e.cooldown.RecordServed(req.PlayerID, gameIDs)
}

// InvalidateCache drops all cached responses. Used by feature refreshes
// that change scoring inputs without bumping the provider version.
func (e *Engine) InvalidateCache() {
	e.cache.clear()
}
