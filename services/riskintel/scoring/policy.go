// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// KeywordBonus raises one category's score by a fixed delta when analyst
// free text contains any of the flagged terms. The bonus applies once per
// resubmission event, no matter how often a term appears.
type KeywordBonus struct {
	Category datatypes.CategoryKey `yaml:"category"`
	Delta    float64               `yaml:"delta"`
	Terms    []string              `yaml:"terms"`
}

// Policy is the aggregation configuration: per-category weights, level
// thresholds, and the keyword adjustment table. Thresholds and weights are
// deployment policy, not business truth; load alternates from YAML.
type Policy struct {
	Weights           map[datatypes.CategoryKey]float64 `yaml:"weights"`
	HighThreshold     float64                           `yaml:"high_threshold"`
	ModerateThreshold float64                           `yaml:"moderate_threshold"`
	KeywordBonuses    []KeywordBonus                    `yaml:"keyword_bonuses"`
}

// DefaultPolicy returns the canonical weight table (reputation highest,
// supply chain lowest, summing to 1.0) with 30/60 level thresholds.
func DefaultPolicy() Policy {
	return Policy{
		Weights: map[datatypes.CategoryKey]float64{
			datatypes.CategoryCybersecurity: 0.16,
			datatypes.CategoryDataPrivacy:   0.14,
			datatypes.CategoryFinancial:     0.15,
			datatypes.CategoryOperational:   0.13,
			datatypes.CategoryRegulatory:    0.15,
			datatypes.CategoryReputation:    0.18,
			datatypes.CategorySupplyChain:   0.09,
		},
		HighThreshold:     60.0,
		ModerateThreshold: 30.0,
		KeywordBonuses: []KeywordBonus{
			{
				Category: datatypes.CategoryReputation,
				Delta:    15.0,
				Terms:    []string{"misconduct", "fraud", "abuse", "harassment", "assault"},
			},
			{
				Category: datatypes.CategoryCybersecurity,
				Delta:    10.0,
				Terms:    []string{"breach", "ransomware", "exfiltration"},
			},
			{
				Category: datatypes.CategoryRegulatory,
				Delta:    10.0,
				Terms:    []string{"sanction", "debarment", "license revocation"},
			},
		},
	}
}

// LoadPolicy reads a Policy from a YAML file and validates it.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the weight table covers exactly the canonical category
// set and sums to 1.0 within floating tolerance.
func (p Policy) Validate() error {
	sum := 0.0
	for _, c := range datatypes.CanonicalCategories() {
		w, ok := p.Weights[c]
		if !ok {
			return fmt.Errorf("policy weight missing for category %q", c)
		}
		if w < 0 {
			return fmt.Errorf("policy weight for category %q is negative", c)
		}
		sum += w
	}
	for c := range p.Weights {
		if !datatypes.IsCanonical(c) {
			return fmt.Errorf("policy weight for unknown category %q", c)
		}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("policy weights sum to %.4f, want 1.0", sum)
	}
	if p.HighThreshold <= p.ModerateThreshold {
		return fmt.Errorf("high threshold %.1f must exceed moderate threshold %.1f",
			p.HighThreshold, p.ModerateThreshold)
	}
	return nil
}

// Aggregate combines fused per-category results into one score and level:
// Σ(score×weight) / Σ(weights present), rounded to one decimal.
func (p Policy) Aggregate(categories map[datatypes.CategoryKey]datatypes.CategoryResult) (float64, datatypes.RiskLevel) {
	weightedSum := 0.0
	totalWeight := 0.0
	for cat, res := range categories {
		w, ok := p.Weights[cat]
		if !ok {
			continue
		}
		weightedSum += res.Score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, datatypes.LevelLow
	}
	score := round1(weightedSum / totalWeight)
	return score, p.LevelFor(score)
}

// LevelFor bands a score: above high is High, above moderate is Moderate,
// else Low. Boundary values fall to the lower band.
func (p Policy) LevelFor(score float64) datatypes.RiskLevel {
	switch {
	case score > p.HighThreshold:
		return datatypes.LevelHigh
	case score > p.ModerateThreshold:
		return datatypes.LevelModerate
	default:
		return datatypes.LevelLow
	}
}

// ApplyKeywordBonuses returns an adjusted copy of categories with each
// matching bonus applied exactly once, capped at 100. The input mapping is
// not mutated; the adjustment is recomputed from the un-adjusted scores on
// every call, so repeating the same analyst text cannot compound deltas.
func (p Policy) ApplyKeywordBonuses(categories map[datatypes.CategoryKey]datatypes.CategoryResult, freeText string) (map[datatypes.CategoryKey]datatypes.CategoryResult, []string) {
	out := make(map[datatypes.CategoryKey]datatypes.CategoryResult, len(categories))
	for k, v := range categories {
		out[k] = v
	}
	if strings.TrimSpace(freeText) == "" {
		return out, nil
	}

	lowered := strings.ToLower(freeText)
	var applied []string
	for _, bonus := range p.KeywordBonuses {
		if !matchesAny(lowered, bonus.Terms) {
			continue
		}
		res, ok := out[bonus.Category]
		if !ok {
			continue
		}
		res.Score = math.Min(100, round1(res.Score+bonus.Delta))
		out[bonus.Category] = res
		applied = append(applied, fmt.Sprintf("%s +%.0f", bonus.Category, bonus.Delta))
	}
	return out, applied
}

func matchesAny(lowered string, terms []string) bool {
	for _, t := range terms {
		if t == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
