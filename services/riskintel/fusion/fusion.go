// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fusion reconciles deterministic scores, fresh model output, and
// previously persisted explanations into one complete category mapping.
//
// The engine guarantees two invariants. Completeness: the output covers
// exactly the canonical category set no matter how sparse the inputs were.
// Explanation durability: once a category holds a real explanation in the
// persisted assessment, a leaner or failing model response can never
// regress it to the fallback text.
package fusion

import (
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/explain"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/scoring"
)

// FallbackNote marks a category for which no reasoning is available from
// any source.
const FallbackNote = "No explanation available."

// Inputs carries everything one reconciliation needs.
type Inputs struct {
	// Deterministic holds freshly computed scores, complete over the
	// canonical set on a full evaluation, nil on resubmission.
	Deterministic map[datatypes.CategoryKey]float64

	// FreshSignals is true when Deterministic came from a fresh
	// collection; only then does it outrank the model's scores.
	FreshSignals bool

	// Signals are the collected (or replayed) category signals; their
	// collection-time notes are the third note source.
	Signals map[datatypes.CategoryKey]datatypes.CategorySignals

	// Model is the latest explanation-service response, possibly empty
	// or partial.
	Model explain.Response

	// Prior is the previously persisted assessment, nil on first run.
	Prior *datatypes.RiskAssessment
}

// Result is the reconciled outcome.
type Result struct {
	Categories map[datatypes.CategoryKey]datatypes.CategoryResult

	// OriginalExplanations is the updated authoritative note store:
	// resolved notes for the full canonical set, to be persisted and
	// reconciled against on every future run.
	OriginalExplanations map[datatypes.CategoryKey]string

	// Confidence is the model's self-reported confidence, carried
	// forward from the prior assessment when the model contributed
	// nothing this run.
	Confidence float64
}

// Fuse resolves each canonical category's score and note.
//
// Note precedence: persisted original explanation (authoritative once set
// to a non-fallback value), else the new model explanation, else the
// collection-time signal note, else FallbackNote.
//
// Score precedence: fresh deterministic score, else the model's score,
// else the prior run's score carried forward, else the low-confidence
// baseline.
func Fuse(in Inputs) Result {
	out := Result{
		Categories:           make(map[datatypes.CategoryKey]datatypes.CategoryResult),
		OriginalExplanations: make(map[datatypes.CategoryKey]string),
	}

	for _, cat := range datatypes.CanonicalCategories() {
		note := resolveNote(in, cat)
		score := resolveScore(in, cat)
		out.Categories[cat] = datatypes.CategoryResult{Score: score, Note: note}
		out.OriginalExplanations[cat] = note
	}

	out.Confidence = resolveConfidence(in)
	return out
}

func resolveNote(in Inputs, cat datatypes.CategoryKey) string {
	// Persisted explanations win; the fallback string is a gap, not an
	// explanation, so it never blocks a real note from landing.
	if in.Prior != nil {
		if prev, ok := in.Prior.OriginalExplanations[cat]; ok && prev != "" && prev != FallbackNote {
			return prev
		}
	}
	if text, ok := in.Model.CategoryExplanations[cat]; ok && text != "" {
		return text
	}
	if cs, ok := in.Signals[cat]; ok && cs.Note != "" {
		return cs.Note
	}
	return FallbackNote
}

func resolveScore(in Inputs, cat datatypes.CategoryKey) float64 {
	if in.FreshSignals {
		if score, ok := in.Deterministic[cat]; ok {
			return score
		}
	}
	if score, ok := in.Model.CategoryScores[cat]; ok {
		return score
	}
	if in.Prior != nil {
		if prev, ok := in.Prior.Categories[cat]; ok {
			return prev.Score
		}
	}
	return scoring.BaselineScore
}

func resolveConfidence(in Inputs) float64 {
	if !in.Model.Empty() {
		return in.Model.Confidence
	}
	if in.Prior != nil {
		return in.Prior.Confidence
	}
	return 0
}
