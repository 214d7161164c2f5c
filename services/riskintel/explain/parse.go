// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"encoding/json"
	"strings"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// Response is the parsed model output. All fields are optional: partial
// category coverage is expected and normal, and a completely empty
// Response is what an unparseable reply degrades to.
type Response struct {
	CategoryScores       map[datatypes.CategoryKey]float64
	CategoryExplanations map[datatypes.CategoryKey]string
	Confidence           float64
}

// Empty reports whether the model contributed nothing usable.
func (r Response) Empty() bool {
	return len(r.CategoryScores) == 0 && len(r.CategoryExplanations) == 0 && r.Confidence == 0
}

// rawResponse mirrors the model's JSON. Category score values arrive
// either as bare numbers or as {score, note} objects depending on model
// mood, so they decode in two passes.
type rawResponse struct {
	CategoryScores       map[string]json.RawMessage `json:"category_scores"`
	CategoryExplanations map[string]string          `json:"category_explanations"`
	Confidence           float64                    `json:"confidence"`
}

type rawScoreObject struct {
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// ParseModelOutput extracts a Response from raw model text. Markdown code
// fences and surrounding prose are tolerated; anything that still fails to
// decode yields an empty Response, never an error. Non-canonical category
// keys are dropped.
func ParseModelOutput(raw string) Response {
	resp := Response{
		CategoryScores:       map[datatypes.CategoryKey]float64{},
		CategoryExplanations: map[datatypes.CategoryKey]string{},
	}

	payload := extractJSONObject(raw)
	if payload == "" {
		return resp
	}

	var decoded rawResponse
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return resp
	}
	resp.Confidence = clamp01(decoded.Confidence)

	for key, text := range decoded.CategoryExplanations {
		cat := datatypes.CategoryKey(key)
		if datatypes.IsCanonical(cat) && text != "" {
			resp.CategoryExplanations[cat] = text
		}
	}

	for key, rawVal := range decoded.CategoryScores {
		cat := datatypes.CategoryKey(key)
		if !datatypes.IsCanonical(cat) {
			continue
		}
		var num float64
		if err := json.Unmarshal(rawVal, &num); err == nil {
			resp.CategoryScores[cat] = clampScore(num)
			continue
		}
		var obj rawScoreObject
		if err := json.Unmarshal(rawVal, &obj); err == nil {
			resp.CategoryScores[cat] = clampScore(obj.Score)
			// An object-form note doubles as an explanation when the
			// explanations map omits the category.
			if obj.Note != "" {
				if _, ok := resp.CategoryExplanations[cat]; !ok {
					resp.CategoryExplanations[cat] = obj.Note
				}
			}
		}
	}

	return resp
}

// extractJSONObject strips markdown fences and surrounding prose, keeping
// the outermost {...} block. Returns "" when no object is present.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
