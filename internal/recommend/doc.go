// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package recommend implements the hybrid game recommendation pipeline:
// strategy selection with deterministic A/B bucketing, parallel scoring
// across a closed set of strategies, weighted score combination, and
// business-rule assembly (responsible gaming, diversity, cooldown).
//
// The package defines the Strategy and FeatureProvider interfaces but no
// implementations; concrete strategies live in the strategy subpackage and
// are wired onto the Registry by the caller. This keeps the scoring core
// free of storage and transport dependencies.
package recommend
