// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the shared data model for the risk
// intelligence pipeline: the canonical category set, collected signals,
// fused per-category results, and the persisted provider record.
package datatypes

import (
	"time"
)

// CategoryKey identifies one of the canonical risk categories.
type CategoryKey string

const (
	CategoryCybersecurity CategoryKey = "cybersecurity"
	CategoryDataPrivacy   CategoryKey = "data_privacy"
	CategoryFinancial     CategoryKey = "financial"
	CategoryOperational   CategoryKey = "operational"
	CategoryRegulatory    CategoryKey = "regulatory"
	CategoryReputation    CategoryKey = "reputation"
	CategorySupplyChain   CategoryKey = "supplychain"
)

// canonicalCategories is the closed category set. Every assessment must
// cover exactly these keys, never more, never fewer.
var canonicalCategories = []CategoryKey{
	CategoryCybersecurity,
	CategoryDataPrivacy,
	CategoryFinancial,
	CategoryOperational,
	CategoryRegulatory,
	CategoryReputation,
	CategorySupplyChain,
}

// CanonicalCategories returns the canonical category set in stable order.
// The returned slice is a copy; callers may not mutate shared state.
func CanonicalCategories() []CategoryKey {
	out := make([]CategoryKey, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// IsCanonical reports whether k belongs to the canonical category set.
func IsCanonical(k CategoryKey) bool {
	for _, c := range canonicalCategories {
		if c == k {
			return true
		}
	}
	return false
}

// SignalEntry is a single timestamped watchlist hit. Entries are immutable
// once generated by a signal source and consumed read-only downstream.
type SignalEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail"`
	Severity   float64   `json:"severity"` // bounded in [0,1]
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// CategorySignals is the collection result for one category in one run.
type CategorySignals struct {
	Category CategoryKey   `json:"category"`
	Hits     int           `json:"hits"`
	Entries  []SignalEntry `json:"entries"`
	Note     string        `json:"note"`
}

// RiskLevel is the qualitative banding of an aggregated score.
type RiskLevel string

const (
	LevelLow      RiskLevel = "Low"
	LevelModerate RiskLevel = "Moderate"
	LevelHigh     RiskLevel = "High"
)

// EvaluationStatus tracks the lifecycle of a provider's risk computation.
type EvaluationStatus string

const (
	StatusPending    EvaluationStatus = "Pending"
	StatusInProgress EvaluationStatus = "InProgress"
	StatusCompleted  EvaluationStatus = "Completed"
)

// RiskAssessment is the fused, aggregated result of one pipeline run.
//
// Categories always covers the full canonical set. OriginalExplanations is
// the authoritative note store: once a category holds a real explanation
// there, a leaner follow-up model response must never regress it to the
// fallback text. The map is carried forward across runs and only ever
// extended or explicitly overwritten.
type RiskAssessment struct {
	ProviderID           string                         `json:"provider_id"`
	Categories           map[CategoryKey]CategoryResult `json:"categories"`
	AggregatedScore      float64                        `json:"aggregated_score"`
	Level                RiskLevel                      `json:"level"`
	Confidence           float64                        `json:"confidence"`
	OriginalExplanations map[CategoryKey]string         `json:"original_explanations,omitempty"`
	EvaluatedAt          time.Time                      `json:"evaluated_at"`
}

// PreEvaluationSnapshot records the risk posture before the first full
// evaluation. Captured once, immutable afterward, used only for drift
// display.
type PreEvaluationSnapshot struct {
	Score      float64                 `json:"score"`
	Categories map[CategoryKey]float64 `json:"categories"`
	TakenAt    time.Time               `json:"taken_at"`
}

// HistoryEvent is an append-only audit log entry for one state transition.
type HistoryEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Score     *float64  `json:"score,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// ProviderRecord is the persisted unit keyed by provider identifier.
type ProviderRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`

	// Free-text context rendered into the explanation prompt.
	WebResearch string `json:"web_research,omitempty"`
	DocSummary  string `json:"doc_summary,omitempty"`

	Risk            *RiskAssessment        `json:"risk,omitempty"`
	RiskStatus      EvaluationStatus       `json:"risk_status,omitempty"`
	RiskTriggeredAt time.Time              `json:"risk_triggered_at,omitempty"`
	RiskHistory     []HistoryEvent         `json:"risk_history,omitempty"`
	PreSnapshot     *PreEvaluationSnapshot `json:"pre_evaluation_snapshot,omitempty"`
}

// Clone returns a deep copy so store readers cannot alias writer state.
func (r ProviderRecord) Clone() ProviderRecord {
	out := r
	if r.Risk != nil {
		risk := *r.Risk
		risk.Categories = cloneResults(r.Risk.Categories)
		if r.Risk.OriginalExplanations != nil {
			expl := make(map[CategoryKey]string, len(r.Risk.OriginalExplanations))
			for k, v := range r.Risk.OriginalExplanations {
				expl[k] = v
			}
			risk.OriginalExplanations = expl
		}
		out.Risk = &risk
	}
	if r.PreSnapshot != nil {
		snap := *r.PreSnapshot
		if r.PreSnapshot.Categories != nil {
			cats := make(map[CategoryKey]float64, len(r.PreSnapshot.Categories))
			for k, v := range r.PreSnapshot.Categories {
				cats[k] = v
			}
			snap.Categories = cats
		}
		out.PreSnapshot = &snap
	}
	if r.RiskHistory != nil {
		hist := make([]HistoryEvent, len(r.RiskHistory))
		copy(hist, r.RiskHistory)
		out.RiskHistory = hist
	}
	return out
}

// AppendHistory appends one audit event with the current timestamp.
func (r *ProviderRecord) AppendHistory(event string, score *float64, note string) {
	r.RiskHistory = append(r.RiskHistory, HistoryEvent{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Score:     score,
		Note:      note,
	})
}

func cloneResults(in map[CategoryKey]CategoryResult) map[CategoryKey]CategoryResult {
	if in == nil {
		return nil
	}
	out := make(map[CategoryKey]CategoryResult, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
