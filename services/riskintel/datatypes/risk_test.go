// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalCategories(t *testing.T) {
	cats := CanonicalCategories()
	require.Len(t, cats, 7)
	assert.Equal(t, CategoryCybersecurity, cats[0])
	assert.Equal(t, CategorySupplyChain, cats[6])

	// Mutating the returned slice must not leak into shared state.
	cats[0] = "tampered"
	assert.Equal(t, CategoryCybersecurity, CanonicalCategories()[0])
}

func TestIsCanonical(t *testing.T) {
	for _, cat := range CanonicalCategories() {
		assert.True(t, IsCanonical(cat))
	}
	assert.False(t, IsCanonical("geopolitical"))
	assert.False(t, IsCanonical(""))
	assert.False(t, IsCanonical("Cybersecurity"))
}

// TestProviderRecord_Clone verifies mutations of a clone never reach the
// original record.
func TestProviderRecord_Clone(t *testing.T) {
	score := 42.0
	rec := ProviderRecord{
		ID:   "prov-1",
		Name: "Acme Diagnostics",
		Risk: &RiskAssessment{
			ProviderID: "prov-1",
			Categories: map[CategoryKey]CategoryResult{
				CategoryFinancial: {Score: 40.0, Note: "stable"},
			},
			OriginalExplanations: map[CategoryKey]string{
				CategoryFinancial: "stable",
			},
			AggregatedScore: 42.0,
			Level:           LevelModerate,
		},
		RiskStatus: StatusCompleted,
		RiskHistory: []HistoryEvent{
			{Event: "Risk Evaluation Completed", Score: &score},
		},
		PreSnapshot: &PreEvaluationSnapshot{
			Score:      20.0,
			Categories: map[CategoryKey]float64{CategoryFinancial: 20.0},
		},
	}

	clone := rec.Clone()
	clone.Risk.Categories[CategoryFinancial] = CategoryResult{Score: 99.0}
	clone.Risk.OriginalExplanations[CategoryFinancial] = "overwritten"
	clone.Risk.AggregatedScore = 99.0
	clone.PreSnapshot.Categories[CategoryFinancial] = 99.0
	clone.RiskHistory[0].Event = "tampered"
	clone.RiskHistory = append(clone.RiskHistory, HistoryEvent{Event: "extra"})

	assert.Equal(t, 40.0, rec.Risk.Categories[CategoryFinancial].Score)
	assert.Equal(t, "stable", rec.Risk.OriginalExplanations[CategoryFinancial])
	assert.Equal(t, 42.0, rec.Risk.AggregatedScore)
	assert.Equal(t, 20.0, rec.PreSnapshot.Categories[CategoryFinancial])
	assert.Equal(t, "Risk Evaluation Completed", rec.RiskHistory[0].Event)
	assert.Len(t, rec.RiskHistory, 1)
}

func TestProviderRecord_CloneNilFields(t *testing.T) {
	rec := ProviderRecord{ID: "bare"}
	clone := rec.Clone()
	assert.Nil(t, clone.Risk)
	assert.Nil(t, clone.PreSnapshot)
	assert.Nil(t, clone.RiskHistory)
}

func TestProviderRecord_AppendHistory(t *testing.T) {
	rec := ProviderRecord{ID: "prov-1"}
	before := time.Now().UTC()
	score := 55.5
	rec.AppendHistory("Risk Evaluation Triggered", nil, "")
	rec.AppendHistory("Risk Evaluation Completed", &score, "done")

	require.Len(t, rec.RiskHistory, 2)
	assert.Equal(t, "Risk Evaluation Triggered", rec.RiskHistory[0].Event)
	assert.Nil(t, rec.RiskHistory[0].Score)
	assert.Equal(t, "Risk Evaluation Completed", rec.RiskHistory[1].Event)
	require.NotNil(t, rec.RiskHistory[1].Score)
	assert.Equal(t, 55.5, *rec.RiskHistory[1].Score)
	assert.Equal(t, "done", rec.RiskHistory[1].Note)
	assert.False(t, rec.RiskHistory[0].Timestamp.Before(before))
}

// TestCategoryResult_UnmarshalJSON verifies both the canonical object
// shape and the legacy bare-number shape decode correctly.
func TestCategoryResult_UnmarshalJSON(t *testing.T) {
	t.Run("object shape", func(t *testing.T) {
		var c CategoryResult
		require.NoError(t, json.Unmarshal([]byte(`{"score": 72.5, "note": "elevated"}`), &c))
		assert.Equal(t, 72.5, c.Score)
		assert.Equal(t, "elevated", c.Note)
	})

	t.Run("legacy bare number", func(t *testing.T) {
		var c CategoryResult
		require.NoError(t, json.Unmarshal([]byte(`64`), &c))
		assert.Equal(t, 64.0, c.Score)
		assert.Empty(t, c.Note)
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var c CategoryResult
		assert.Error(t, json.Unmarshal([]byte(`"high"`), &c))
	})

	t.Run("inside a categories map", func(t *testing.T) {
		raw := `{"cybersecurity": 30, "financial": {"score": 55, "note": "late filings"}}`
		var m map[CategoryKey]CategoryResult
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		assert.Equal(t, 30.0, m[CategoryCybersecurity].Score)
		assert.Equal(t, 55.0, m[CategoryFinancial].Score)
		assert.Equal(t, "late filings", m[CategoryFinancial].Note)
	})
}
