// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/explain"
)

// TestFuse_Completeness verifies the output covers exactly the canonical
// set even with entirely empty inputs.
func TestFuse_Completeness(t *testing.T) {
	out := Fuse(Inputs{})

	require.Len(t, out.Categories, len(datatypes.CanonicalCategories()))
	require.Len(t, out.OriginalExplanations, len(datatypes.CanonicalCategories()))
	for _, cat := range datatypes.CanonicalCategories() {
		res, ok := out.Categories[cat]
		require.True(t, ok, "missing category %s", cat)
		assert.Equal(t, 20.0, res.Score)
		assert.Equal(t, FallbackNote, res.Note)
		assert.Equal(t, FallbackNote, out.OriginalExplanations[cat])
	}
	assert.Equal(t, 0.0, out.Confidence)
}

// TestFuse_ScorePrecedence walks the score fallback chain: fresh
// deterministic, then model, then prior, then baseline.
func TestFuse_ScorePrecedence(t *testing.T) {
	cat := datatypes.CategoryCybersecurity

	t.Run("fresh deterministic outranks model", func(t *testing.T) {
		out := Fuse(Inputs{
			Deterministic: map[datatypes.CategoryKey]float64{cat: 64.0},
			FreshSignals:  true,
			Model: explain.Response{
				CategoryScores: map[datatypes.CategoryKey]float64{cat: 90.0},
			},
		})
		assert.Equal(t, 64.0, out.Categories[cat].Score)
	})

	t.Run("stale deterministic defers to model", func(t *testing.T) {
		out := Fuse(Inputs{
			Deterministic: map[datatypes.CategoryKey]float64{cat: 64.0},
			FreshSignals:  false,
			Model: explain.Response{
				CategoryScores: map[datatypes.CategoryKey]float64{cat: 90.0},
			},
		})
		assert.Equal(t, 90.0, out.Categories[cat].Score)
	})

	t.Run("prior carries forward when model is silent", func(t *testing.T) {
		out := Fuse(Inputs{
			Prior: &datatypes.RiskAssessment{
				Categories: map[datatypes.CategoryKey]datatypes.CategoryResult{
					cat: {Score: 48.0},
				},
			},
		})
		assert.Equal(t, 48.0, out.Categories[cat].Score)
	})

	t.Run("baseline when nothing else exists", func(t *testing.T) {
		out := Fuse(Inputs{})
		assert.Equal(t, 20.0, out.Categories[cat].Score)
	})
}

// TestFuse_ExplanationDurability verifies a persisted real explanation
// survives a leaner or failed model response, while a persisted fallback
// never blocks a new real note.
func TestFuse_ExplanationDurability(t *testing.T) {
	cat := datatypes.CategoryReputation

	t.Run("prior real note survives empty model response", func(t *testing.T) {
		out := Fuse(Inputs{
			Prior: &datatypes.RiskAssessment{
				OriginalExplanations: map[datatypes.CategoryKey]string{
					cat: "Executive misconduct reported in trade press.",
				},
			},
		})
		assert.Equal(t, "Executive misconduct reported in trade press.", out.Categories[cat].Note)
		assert.Equal(t, "Executive misconduct reported in trade press.", out.OriginalExplanations[cat])
	})

	t.Run("prior real note outranks a fresh model note", func(t *testing.T) {
		out := Fuse(Inputs{
			Prior: &datatypes.RiskAssessment{
				OriginalExplanations: map[datatypes.CategoryKey]string{cat: "Original detailed reasoning."},
			},
			Model: explain.Response{
				CategoryExplanations: map[datatypes.CategoryKey]string{cat: "Shorter rerun note."},
			},
		})
		assert.Equal(t, "Original detailed reasoning.", out.Categories[cat].Note)
	})

	t.Run("prior fallback is a gap, not an explanation", func(t *testing.T) {
		out := Fuse(Inputs{
			Prior: &datatypes.RiskAssessment{
				OriginalExplanations: map[datatypes.CategoryKey]string{cat: FallbackNote},
			},
			Model: explain.Response{
				CategoryExplanations: map[datatypes.CategoryKey]string{cat: "New real reasoning."},
			},
		})
		assert.Equal(t, "New real reasoning.", out.Categories[cat].Note)
	})

	t.Run("signal note fills when model and prior are silent", func(t *testing.T) {
		out := Fuse(Inputs{
			Signals: map[datatypes.CategoryKey]datatypes.CategorySignals{
				cat: {Category: cat, Note: "watchlist sweep clean"},
			},
		})
		assert.Equal(t, "watchlist sweep clean", out.Categories[cat].Note)
	})
}

// TestFuse_PartialModelResponse verifies a model that covers some
// categories leaves the rest on deterministic scores and fallback notes.
func TestFuse_PartialModelResponse(t *testing.T) {
	det := make(map[datatypes.CategoryKey]float64)
	for _, cat := range datatypes.CanonicalCategories() {
		det[cat] = 20.0
	}
	det[datatypes.CategoryFinancial] = 56.0

	out := Fuse(Inputs{
		Deterministic: det,
		FreshSignals:  true,
		Model: explain.Response{
			CategoryExplanations: map[datatypes.CategoryKey]string{
				datatypes.CategoryFinancial: "Two liens filed this quarter.",
			},
			Confidence: 0.75,
		},
	})

	assert.Equal(t, 56.0, out.Categories[datatypes.CategoryFinancial].Score)
	assert.Equal(t, "Two liens filed this quarter.", out.Categories[datatypes.CategoryFinancial].Note)
	assert.Equal(t, 20.0, out.Categories[datatypes.CategoryOperational].Score)
	assert.Equal(t, FallbackNote, out.Categories[datatypes.CategoryOperational].Note)
	assert.Equal(t, 0.75, out.Confidence)
}

// TestFuse_ConfidenceCarryForward verifies prior confidence survives a
// run where the model contributed nothing.
func TestFuse_ConfidenceCarryForward(t *testing.T) {
	out := Fuse(Inputs{
		Prior: &datatypes.RiskAssessment{Confidence: 0.65},
	})
	assert.Equal(t, 0.65, out.Confidence)

	out = Fuse(Inputs{
		Prior: &datatypes.RiskAssessment{Confidence: 0.65},
		Model: explain.Response{Confidence: 0.9},
	})
	assert.Equal(t, 0.9, out.Confidence)
}
