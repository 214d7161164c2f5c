// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring implements the deterministic severity scorer and the
// weighted aggregation policy for the risk pipeline.
package scoring

import (
	"math"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

const (
	// BaselineScore is the score assigned when a category has no signals.
	// Absence of evidence is baseline uncertainty, not proof of safety.
	BaselineScore = 20.0

	// severityMultiplier converts summed severities into score points.
	severityMultiplier = 40.0
)

// Score computes the deterministic category score from signal entries:
// baseline + Σseverity × multiplier, clamped to [0,100]. Pure and
// reproducible for identical input. An empty entry list yields exactly the
// baseline, never zero.
func Score(entries []datatypes.SignalEntry) float64 {
	score := BaselineScore
	for _, e := range entries {
		score += e.Severity * severityMultiplier
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return round1(score)
}

// ScoreAll computes deterministic scores for every canonical category.
// Categories missing from the input score at baseline.
func ScoreAll(signals map[datatypes.CategoryKey]datatypes.CategorySignals) map[datatypes.CategoryKey]float64 {
	scores := make(map[datatypes.CategoryKey]float64, len(signals))
	for _, c := range datatypes.CanonicalCategories() {
		scores[c] = Score(signals[c].Entries)
	}
	return scores
}

// round1 rounds to one decimal place, matching the persisted precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
