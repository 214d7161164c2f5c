// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package indexer pushes textual risk summaries into the vector database
// after each successful evaluation. The push is one-way: a failure is
// logged, never raised, and never blocks the pipeline.
package indexer

import (
	"fmt"
	"strings"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// BuildSummary renders a risk assessment as retrieval-friendly text:
// provider header, per-category breakdown with reasoning, the previous
// snapshot for drift context, and a hint block that anchors the kinds of
// questions this summary can answer.
func BuildSummary(rec datatypes.ProviderRecord, a datatypes.RiskAssessment) string {
	var b strings.Builder

	b.WriteString("Provider Risk Assessment and Intelligence Summary\n")
	fmt.Fprintf(&b, "Provider ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "Provider Name: %s\n", displayOr(rec.Name, "Unknown"))
	fmt.Fprintf(&b, "License Number: %s\n", displayOr(rec.LicenseNumber, "N/A"))
	fmt.Fprintf(&b, "Date of Evaluation: %s\n\n", a.EvaluatedAt.UTC().Format("2006-01-02T15:04:05Z"))

	b.WriteString("--- OVERALL RISK SCORE BREAKDOWN ---\n")
	fmt.Fprintf(&b, "Total Risk Score: %.1f%%\n", a.AggregatedScore)
	fmt.Fprintf(&b, "Risk Level: %s\n", a.Level)
	b.WriteString("Interpretation: This reflects the provider's aggregate exposure across " +
		"cybersecurity, data privacy, financial, operational, regulatory, reputation, " +
		"and supply chain domains.\n\n")

	b.WriteString("--- CATEGORY LEVEL RISK DETAILS ---\n")
	for _, cat := range datatypes.CanonicalCategories() {
		res := a.Categories[cat]
		note := res.Note
		if note == "" {
			note = "No reasoning provided."
		}
		fmt.Fprintf(&b, "- %s: %.1f%% — %s\n", titleCase(cat), res.Score, note)
	}

	if rec.PreSnapshot != nil {
		b.WriteString("\nPrevious Risk Snapshot:\n")
		fmt.Fprintf(&b, "Score: %.1f%%\n", rec.PreSnapshot.Score)
	}

	b.WriteString(
		"\n--- SUMMARY INSIGHTS ---\n" +
			"This report provides a detailed risk score breakdown per category and the " +
			"rationale behind each rating.\n\n" +
			"Example questions that can be answered using this context:\n" +
			"- What is the provider's overall risk?\n" +
			"- How much risk is attributed to cybersecurity?\n" +
			"- Explain the reasoning behind the regulatory risk score.\n" +
			"- Show me the risk score breakdown per category.\n")

	return b.String()
}

func displayOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func titleCase(cat datatypes.CategoryKey) string {
	parts := strings.FieldsFunc(string(cat), func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
