// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package recommend

import "errors"

// Error taxonomy for the scoring path. Strategy failures are recovered
// locally by exclusion and never surface here; these sentinels cover the
// request-fatal cases.
var (
	// ErrInvalidRequest indicates malformed or out-of-range request
	// fields. The request is rejected before any scoring work.
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrAllStrategiesFailed indicates every selected strategy failed and
	// the popularity fallback also produced nothing.
	ErrAllStrategiesFailed = errors.New("all strategies failed")

	// ErrNoStrategies indicates the selector produced an empty strategy
	// set, typically a configuration problem.
	ErrNoStrategies = errors.New("no strategies selected")
)
