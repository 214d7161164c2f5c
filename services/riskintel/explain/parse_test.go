// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// TestParseModelOutput_WellFormed decodes the canonical reply shape.
func TestParseModelOutput_WellFormed(t *testing.T) {
	raw := `{
		"category_scores": {
			"cybersecurity": 72,
			"financial": 35.5
		},
		"category_explanations": {
			"cybersecurity": "Two recent credential dumps.",
			"financial": "Late filings in the last quarter."
		},
		"confidence": 0.85
	}`

	resp := ParseModelOutput(raw)
	assert.False(t, resp.Empty())
	assert.Equal(t, 72.0, resp.CategoryScores[datatypes.CategoryCybersecurity])
	assert.Equal(t, 35.5, resp.CategoryScores[datatypes.CategoryFinancial])
	assert.Equal(t, "Two recent credential dumps.", resp.CategoryExplanations[datatypes.CategoryCybersecurity])
	assert.Equal(t, 0.85, resp.Confidence)
}

// TestParseModelOutput_MarkdownFences tolerates fenced replies with
// surrounding prose.
func TestParseModelOutput_MarkdownFences(t *testing.T) {
	raw := "Here is the assessment you asked for:\n```json\n" +
		`{"category_scores": {"reputation": 80}, "confidence": 0.6}` +
		"\n```\nLet me know if you need more detail."

	resp := ParseModelOutput(raw)
	assert.Equal(t, 80.0, resp.CategoryScores[datatypes.CategoryReputation])
	assert.Equal(t, 0.6, resp.Confidence)
}

// TestParseModelOutput_ObjectScores accepts {score, note} values and
// promotes notes into explanations when the explanations map omits the
// category.
func TestParseModelOutput_ObjectScores(t *testing.T) {
	raw := `{
		"category_scores": {
			"regulatory": {"score": 55, "note": "Pending license review."},
			"operational": {"score": 30, "note": "Staffing churn."}
		},
		"category_explanations": {
			"regulatory": "License review opened in March."
		},
		"confidence": 0.7
	}`

	resp := ParseModelOutput(raw)
	assert.Equal(t, 55.0, resp.CategoryScores[datatypes.CategoryRegulatory])
	assert.Equal(t, 30.0, resp.CategoryScores[datatypes.CategoryOperational])
	// Explicit explanation wins over the score object's note.
	assert.Equal(t, "License review opened in March.", resp.CategoryExplanations[datatypes.CategoryRegulatory])
	// Missing explanation is backfilled from the note.
	assert.Equal(t, "Staffing churn.", resp.CategoryExplanations[datatypes.CategoryOperational])
}

func TestParseModelOutput_DropsNonCanonicalKeys(t *testing.T) {
	raw := `{
		"category_scores": {"geopolitical": 90, "financial": 40},
		"category_explanations": {"geopolitical": "n/a", "financial": "ok"},
		"confidence": 0.5
	}`

	resp := ParseModelOutput(raw)
	require.Len(t, resp.CategoryScores, 1)
	require.Len(t, resp.CategoryExplanations, 1)
	assert.Contains(t, resp.CategoryScores, datatypes.CategoryFinancial)
}

func TestParseModelOutput_ClampsOutOfRange(t *testing.T) {
	raw := `{
		"category_scores": {"cybersecurity": 250, "financial": -10},
		"confidence": 3.0
	}`

	resp := ParseModelOutput(raw)
	assert.Equal(t, 100.0, resp.CategoryScores[datatypes.CategoryCybersecurity])
	assert.Equal(t, 0.0, resp.CategoryScores[datatypes.CategoryFinancial])
	assert.Equal(t, 1.0, resp.Confidence)
}

// TestParseModelOutput_Garbage verifies prose and broken JSON degrade to
// an empty Response instead of an error.
func TestParseModelOutput_Garbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot produce JSON for this request.",
		"{broken json",
		"```json\nnot even close\n```",
	} {
		resp := ParseModelOutput(raw)
		assert.True(t, resp.Empty(), "input %q should yield empty response", raw)
	}
}

func TestResponse_Empty(t *testing.T) {
	assert.True(t, Response{}.Empty())
	assert.False(t, Response{Confidence: 0.5}.Empty())
	assert.False(t, Response{
		CategoryScores: map[datatypes.CategoryKey]float64{datatypes.CategoryFinancial: 40},
	}.Empty())
}
