// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package signals

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

const simulatorNote = "simulated watchlist response"

// Simulator is a Source that fabricates watchlist hits for development and
// testing. Hit probability and severity buckets mirror the live feeds
// closely enough to exercise the full pipeline.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand

	// HitProbability is the chance a category yields 1+ entries.
	HitProbability float64
}

var _ Source = (*Simulator)(nil)

// NewSimulator creates a Simulator seeded for reproducible runs. Pass 0 to
// seed from the current time.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng:            rand.New(rand.NewSource(seed)),
		HitProbability: 0.12,
	}
}

// Collect fabricates zero to three entries for the category. Entries carry
// distinct IDs and severities bounded in [0,1].
func (s *Simulator) Collect(_ context.Context, provider datatypes.ProviderRecord, category datatypes.CategoryKey) (datatypes.CategorySignals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []datatypes.SignalEntry
	if s.rng.Float64() < s.HitProbability {
		count := 1 + s.rng.Intn(3)
		for i := 1; i <= count; i++ {
			entries = append(entries, s.sampleEntry(provider, category, i))
		}
	}

	return datatypes.CategorySignals{
		Category: category,
		Hits:     len(entries),
		Entries:  entries,
		Note:     simulatorNote,
	}, nil
}

func (s *Simulator) sampleEntry(provider datatypes.ProviderRecord, category datatypes.CategoryKey, idx int) datatypes.SignalEntry {
	// Mostly mild severities with an occasional serious hit.
	var severity float64
	if s.rng.Float64() < 0.25 {
		severity = pick(s.rng, 0.3, 0.5, 0.7, 0.9)
	} else {
		severity = pick(s.rng, 0.1, 0.2, 0.4)
	}

	return datatypes.SignalEntry{
		ID:       uuid.NewString(),
		Title:    fmt.Sprintf("Simulated %s hit #%d", category, idx),
		Detail:   fmt.Sprintf("Auto-generated watchlist entry for %s (%s).", provider.Name, provider.LicenseNumber),
		Severity: severity,
		Source:   fmt.Sprintf("simulated_%s_watchlist", strings.ReplaceAll(string(category), "-", "_")),

		ObservedAt: time.Now().UTC(),
	}
}

func pick(rng *rand.Rand, values ...float64) float64 {
	return values[rng.Intn(len(values))]
}
