// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package signals collects per-category watchlist hits for a provider.
//
// A Source produces the raw signal entries for one category; the package
// fans collection out across the canonical category set concurrently and
// joins on an all-complete barrier. A failing category degrades to empty
// signals instead of aborting the run, and every successful collection is
// persisted to the audit store so resubmissions can replay it.
package signals

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// Source produces signals for one provider and category. Implementations
// must be safe for concurrent use: all canonical categories are collected
// in parallel.
//
// Contract: severities are bounded in [0,1], entries are never duplicated
// within one call, and zero entries is a valid non-error outcome.
type Source interface {
	Collect(ctx context.Context, provider datatypes.ProviderRecord, category datatypes.CategoryKey) (datatypes.CategorySignals, error)
}

// Audit persists raw collections for replay. Put must be idempotent:
// re-collecting the same provider and category overwrites safely.
type Audit interface {
	Put(ctx context.Context, providerID string, cs datatypes.CategorySignals) error
	Load(ctx context.Context, providerID string) (map[datatypes.CategoryKey]datatypes.CategorySignals, error)
}

// CollectAll runs one collection per canonical category concurrently and
// joins after all complete. Each task owns its own result slot; no state
// is shared between categories. A category whose collection fails is
// isolated: it contributes empty signals and the remaining categories
// proceed. If audit is non-nil, each collection is persisted as it lands.
func CollectAll(ctx context.Context, src Source, provider datatypes.ProviderRecord, audit Audit) map[datatypes.CategoryKey]datatypes.CategorySignals {
	categories := datatypes.CanonicalCategories()
	results := make([]datatypes.CategorySignals, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			cs, err := src.Collect(gctx, provider, category)
			if err != nil {
				slog.Warn("Signal collection failed for category, degrading to empty signals",
					"provider_id", provider.ID,
					"category", category,
					"error", err)
				cs = datatypes.CategorySignals{Category: category}
			}
			cs.Category = category
			cs.Hits = len(cs.Entries)
			results[i] = cs

			if audit != nil {
				if err := audit.Put(gctx, provider.ID, cs); err != nil {
					slog.Warn("Failed to persist signal audit record",
						"provider_id", provider.ID,
						"category", category,
						"error", err)
				}
			}
			return nil
		})
	}
	// Collection errors never propagate; the group exists for the barrier.
	_ = g.Wait()

	out := make(map[datatypes.CategoryKey]datatypes.CategorySignals, len(categories))
	for i, category := range categories {
		out[category] = results[i]
	}
	return out
}
