// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"
)

// CategoryResult is the fused outcome for one category: a score in [0,100]
// and a human-readable note explaining it. Score and note travel together
// but survive independently across runs.
//
// Older deployments persisted category values as bare numbers instead of
// {score, note} objects. CategoryResult absorbs both shapes at every read
// boundary so business logic only ever sees the canonical form.
type CategoryResult struct {
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// UnmarshalJSON accepts either the canonical object shape or a legacy bare
// number. A bare number becomes {Score: n, Note: ""}.
func (c *CategoryResult) UnmarshalJSON(data []byte) error {
	// Fast path: legacy numeric value.
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		c.Score = n
		c.Note = ""
		return nil
	}

	type plain CategoryResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("category result is neither number nor object: %w", err)
	}
	*c = CategoryResult(p)
	return nil
}
