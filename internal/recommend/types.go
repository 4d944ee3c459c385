// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import (
	"context"
	"time"
)

// PlayerFeatures is an immutable per-request snapshot of a player's
// behavioral aggregates and categorical preferences. Snapshots are produced
// by the external feature store and refreshed periodically; strategies must
// never mutate them.
type PlayerFeatures struct {
	// PlayerID is the internal player identifier.
	PlayerID int64 `json:"player_id"`

	// AvgBetSize is the player's average bet size.
	AvgBetSize float64 `json:"avg_bet_size"`

	// SessionCount is the number of sessions in the aggregation window.
	SessionCount int `json:"session_count"`

	// DaysSinceLastPlay measures recency of activity.
	DaysSinceLastPlay int `json:"days_since_last_play"`

	// RiskLevel is the responsible-gaming risk classification (1-5).
	RiskLevel int `json:"risk_level"`

	// VIPTier is the player's loyalty tier (0 = none).
	VIPTier int `json:"vip_tier"`

	// PlayedGames is the set of game IDs the player has played.
	PlayedGames []int64 `json:"played_games"`

	// FavoriteCategories is a weighted preference set, weights in [0, 1].
	FavoriteCategories map[string]float64 `json:"favorite_categories"`

	// FavoriteProviders is a weighted preference set, weights in [0, 1].
	FavoriteProviders map[string]float64 `json:"favorite_providers"`

	// FavoriteRTPBands is a weighted preference over RTP bands
	// ("low", "mid", "high"), weights in [0, 1].
	FavoriteRTPBands map[string]float64 `json:"favorite_rtp_bands"`
}

// HasPlayed reports whether the player's history contains the game.
func (p *PlayerFeatures) HasPlayed(gameID int64) bool {
	for _, id := range p.PlayedGames {
		if id == gameID {
			return true
		}
	}
	return false
}

// GameFeatures is an immutable snapshot of a game's attributes, refreshed
// on a slower cadence than player features.
type GameFeatures struct {
	// GameID is the unique game identifier.
	GameID int64 `json:"game_id"`

	// Name is the display title.
	Name string `json:"name"`

	// Category is the game category (slots, table, live, ...).
	Category string `json:"category"`

	// Provider is the game studio.
	Provider string `json:"provider"`

	// Volatility is the payout variance classification (1-5).
	Volatility int `json:"volatility"`

	// RTP is the return-to-player percentage (e.g. 96.5).
	RTP float64 `json:"rtp"`

	// MaxBet is the maximum stake the game accepts.
	MaxBet float64 `json:"max_bet"`

	// PopularityScore is a pre-computed rolling popularity metric.
	PopularityScore float64 `json:"popularity_score"`

	// ReleasedAt is the release date, used for recency signals.
	ReleasedAt time.Time `json:"released_at"`

	// MobileEnabled indicates the game runs on mobile clients.
	MobileEnabled bool `json:"mobile_enabled"`

	// DesktopEnabled indicates the game runs on desktop clients.
	DesktopEnabled bool `json:"desktop_enabled"`
}

// RTPBand buckets an RTP percentage into the preference bands used by
// player feature snapshots.
func RTPBand(rtp float64) string {
	switch {
	case rtp < 94.0:
		return "low"
	case rtp < 96.5:
		return "mid"
	default:
		return "high"
	}
}

// ContextualFactors carries optional per-request context signals.
type ContextualFactors struct {
	// TimeOfDay is the hour (0-23).
	TimeOfDay int `json:"time_of_day,omitempty"`

	// DayOfWeek is the day (0=Sunday, 6=Saturday).
	DayOfWeek int `json:"day_of_week,omitempty"`

	// Device is the client device type (mobile, desktop).
	Device string `json:"device,omitempty"`
}

// Request is a recommendation request as consumed from the API layer.
type Request struct {
	// PlayerID is the player to generate recommendations for.
	PlayerID int64 `json:"player_id" validate:"required,gt=0"`

	// Context is the placement tag (lobby, post_game, deposit, ...).
	Context string `json:"context" validate:"required,max=64"`

	// Count is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultCount if zero; values above
	// Config.Limits.MaxCount are rejected.
	Count int `json:"count" validate:"gte=0"`

	// ExcludeGameIDs lists games that must not appear in the result.
	ExcludeGameIDs []int64 `json:"exclude_game_ids,omitempty"`

	// Factors carries optional contextual signals.
	Factors *ContextualFactors `json:"contextual_factors,omitempty"`

	// RequestID is a unique identifier for tracing and feedback
	// attribution. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// ExcludeSet materializes ExcludeGameIDs as a set.
func (r *Request) ExcludeSet() map[int64]struct{} {
	if len(r.ExcludeGameIDs) == 0 {
		return nil
	}
	set := make(map[int64]struct{}, len(r.ExcludeGameIDs))
	for _, id := range r.ExcludeGameIDs {
		set[id] = struct{}{}
	}
	return set
}

// ScoringContext is the per-request context handed to strategies.
type ScoringContext struct {
	// RequestID seeds deterministic per-request randomness.
	RequestID string

	// Context is the placement tag from the request.
	Context string

	// Factors carries optional contextual signals (may be nil).
	Factors *ContextualFactors

	// MaxCandidates bounds the number of candidates a strategy may return.
	MaxCandidates int
}

// ScoredCandidate is a single strategy's opinion about a game. Scores are
// normalized to [0, 1]; a strategy with no opinion omits the candidate
// rather than returning 0 (0 means actively unfavorable).
type ScoredCandidate struct {
	// GameID identifies the candidate game.
	GameID int64 `json:"game_id"`

	// Score is the normalized score in [0, 1].
	Score float64 `json:"score"`

	// Strategy is the contributing strategy name.
	Strategy string `json:"strategy"`

	// Reasons are interpretable explanation tags.
	Reasons []string `json:"reasons,omitempty"`
}

// GameRecommendation is the only externally visible result item. It is
// immutable once returned.
type GameRecommendation struct {
	// GameID identifies the recommended game.
	GameID int64 `json:"game_id"`

	// Score is the final combined score in [0, 1].
	Score float64 `json:"score"`

	// Algorithm is the attributed strategy name.
	Algorithm string `json:"algorithm"`

	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`

	// Reasons are interpretable reason codes.
	Reasons []string `json:"reasons,omitempty"`
}

// Response is a recommendation response.
type Response struct {
	// PlayerID is the player the recommendations are for.
	PlayerID int64 `json:"player_id"`

	// RequestID doubles as the recommendation ID referenced by
	// interaction events.
	RequestID string `json:"request_id"`

	// Recommendations is the ordered result list.
	Recommendations []GameRecommendation `json:"recommendations"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// ProcessingTimeMS is the total scoring latency in milliseconds.
	ProcessingTimeMS int64 `json:"processing_time_ms"`

	// AlgorithmsUsed lists the strategies that contributed scores.
	AlgorithmsUsed []string `json:"algorithms_used"`

	// ABVariant is the experiment variant applied, if any.
	ABVariant string `json:"ab_variant,omitempty"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// FeatureVersion is the feature snapshot version used for scoring.
	FeatureVersion int64 `json:"feature_version"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// EventType classifies interaction events.
type EventType string

// Interaction event types. Append-only input to the feedback path.
const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventPlay       EventType = "play"
	EventDismiss    EventType = "dismiss"
)

// Valid reports whether the event type is a known type.
func (t EventType) Valid() bool {
	switch t {
	case EventImpression, EventClick, EventPlay, EventDismiss:
		return true
	default:
		return false
	}
}

// InteractionEvent is an observed player interaction with a served
// recommendation. Immutable once written; the sole input to the feedback
// ingestor.
type InteractionEvent struct {
	// RecommendationID is the RequestID of the serving response.
	RecommendationID string `json:"recommendation_id"`

	// PlayerID is the interacting player.
	PlayerID int64 `json:"player_id"`

	// GameID is the game interacted with.
	GameID int64 `json:"game_id"`

	// Type is the interaction type.
	Type EventType `json:"type"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`

	// SessionID groups interactions within a session.
	SessionID string `json:"session_id,omitempty"`

	// Revenue is the revenue observed for play events, if any.
	Revenue float64 `json:"revenue,omitempty"`
}

// ABTestAssignment maps (playerID, experimentID) to a variant. Assignments
// are hash-based and stable for the experiment's lifetime; no per-player
// rows are stored.
type ABTestAssignment struct {
	PlayerID     int64  `json:"player_id"`
	ExperimentID string `json:"experiment_id"`
	Variant      string `json:"variant"`
}

// StrategyKind is the closed set of scoring strategies. New strategies are
// a compile-time addition here, not a runtime registration surprise.
type StrategyKind int

const (
	// KindCollaborative scores by similarity to nearest players.
	KindCollaborative StrategyKind = iota
	// KindContent scores by preference/attribute match.
	KindContent
	// KindPopularity scores by rolling popularity rank.
	KindPopularity
	// KindBandit scores by Thompson Sampling over arm posteriors.
	KindBandit
	// KindExternal delegates to an out-of-process predictor.
	KindExternal
)

// String returns the canonical strategy name for the kind.
func (k StrategyKind) String() string {
	switch k {
	case KindCollaborative:
		return "collaborative_filtering"
	case KindContent:
		return "content_based"
	case KindPopularity:
		return "popularity_based"
	case KindBandit:
		return "bandit"
	case KindExternal:
		return "external_model"
	default:
		return "unknown"
	}
}

// Kinds lists every member of the closed strategy set.
func Kinds() []StrategyKind {
	return []StrategyKind{KindCollaborative, KindContent, KindPopularity, KindBandit, KindExternal}
}

// KindFromName resolves a canonical strategy name to its kind.
func KindFromName(name string) (StrategyKind, bool) {
	for _, k := range Kinds() {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Strategy is one scoring algorithm. Implementations must be safe for
// concurrent use, must not mutate the feature snapshots, and must return
// scores normalized to [0, 1].
type Strategy interface {
	// Kind returns the strategy's member of the closed kind set.
	Kind() StrategyKind

	// Name returns the canonical strategy identifier.
	Name() string

	// Score scores the candidate games for the player. Candidates the
	// strategy has no opinion about are omitted from the result.
	Score(ctx context.Context, player *PlayerFeatures, games []GameFeatures, sc ScoringContext) ([]ScoredCandidate, error)
}

// FeatureProvider supplies immutable feature snapshots. Implemented by the
// external feature store integration.
type FeatureProvider interface {
	// PlayerFeatures returns the current snapshot for a player.
	PlayerFeatures(ctx context.Context, playerID int64) (*PlayerFeatures, error)

	// GameCandidates returns up to limit candidate game snapshots.
	GameCandidates(ctx context.Context, limit int) ([]GameFeatures, error)

	// Version identifies the current snapshot generation. Responses are
	// cached per (player, context, version).
	Version() int64
}
