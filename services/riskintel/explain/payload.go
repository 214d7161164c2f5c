// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package explain talks to the generative model that produces per-category
// risk narratives. The model is best-effort: it may time out, answer with
// partial category coverage, or return prose instead of JSON. All of that
// is tolerated here; the fusion engine fills whatever gaps remain.
package explain

import (
	"fmt"
	"strings"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

const (
	defaultWebResearch = "No web research available."
	defaultDocSummary  = "No document summary available."
)

// Payload is the structured input rendered into the model prompt.
type Payload struct {
	ProviderName  string
	LicenseNumber string
	WebResearch   string
	DocSummary    string

	// Categories in canonical order, one per canonical key.
	Categories []datatypes.CategorySignals

	// AnalystNotes is free text injected on resubmission.
	AnalystNotes []string
}

// NewPayload assembles the model payload from a provider record and its
// collected signals, in canonical category order.
func NewPayload(rec datatypes.ProviderRecord, signals map[datatypes.CategoryKey]datatypes.CategorySignals, analystNotes []string) Payload {
	p := Payload{
		ProviderName:  rec.Name,
		LicenseNumber: rec.LicenseNumber,
		WebResearch:   rec.WebResearch,
		DocSummary:    rec.DocSummary,
		AnalystNotes:  analystNotes,
	}
	if p.WebResearch == "" {
		p.WebResearch = defaultWebResearch
	}
	if p.DocSummary == "" {
		p.DocSummary = defaultDocSummary
	}
	for _, category := range datatypes.CanonicalCategories() {
		cs := signals[category]
		cs.Category = category
		cs.Hits = len(cs.Entries)
		p.Categories = append(p.Categories, cs)
	}
	return p
}

// Prompt renders the payload as the YAML-like text block the risk model
// was tuned on. Analyst notes are appended to the document summary so a
// resubmission reshapes the model's context without a fresh collection.
func (p Payload) Prompt() string {
	var b strings.Builder
	b.WriteString("Category-wise risk factors:\n")
	fmt.Fprintf(&b, "provider_name: %s\n", p.ProviderName)
	fmt.Fprintf(&b, "license_number: %s\n", p.LicenseNumber)
	b.WriteString("watchlists:\n")

	for _, cat := range p.Categories {
		fmt.Fprintf(&b, "- %s: %d hits\n", cat.Category, cat.Hits)
		b.WriteString("  entries:\n")
		if len(cat.Entries) == 0 {
			b.WriteString("    []\n")
		} else {
			for _, e := range cat.Entries {
				if e.ID != "" {
					fmt.Fprintf(&b, "    - ID: %s\n", e.ID)
				}
				if e.Title != "" {
					fmt.Fprintf(&b, "      Title: %s\n", e.Title)
				}
				if e.Detail != "" {
					fmt.Fprintf(&b, "      Detail: %s\n", e.Detail)
				}
				fmt.Fprintf(&b, "      Severity: %.2f\n", e.Severity)
				if e.Source != "" {
					fmt.Fprintf(&b, "      Source: %s\n", e.Source)
				}
				if !e.ObservedAt.IsZero() {
					fmt.Fprintf(&b, "      Timestamp: %s\n", e.ObservedAt.UTC().Format("2006-01-02T15:04:05Z"))
				}
			}
		}
		fmt.Fprintf(&b, "  note: %q\n", strings.ReplaceAll(cat.Note, `"`, `'`))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "web_research: '%s'\n", p.WebResearch)
	docSummary := p.DocSummary
	if len(p.AnalystNotes) > 0 {
		docSummary += "\nAnalyst notes:\n- " + strings.Join(p.AnalystNotes, "\n- ")
	}
	fmt.Fprintf(&b, "doc_summary: '%s'\n", docSummary)
	b.WriteString("Produce JSON as specified.")
	return b.String()
}
