// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// AuditStore persists raw collections in BadgerDB, keyed by provider and
// category. Writes overwrite in place, so re-collecting is always safe,
// and resubmissions replay the most recent collection without touching the
// live sources.
type AuditStore struct {
	db *badger.DB
}

var _ Audit = (*AuditStore)(nil)

// NewAuditStore wraps an open Badger database. The caller owns the
// database lifecycle.
func NewAuditStore(db *badger.DB) *AuditStore {
	return &AuditStore{db: db}
}

func auditKey(providerID string, category datatypes.CategoryKey) []byte {
	return []byte(fmt.Sprintf("signals/%s/%s", providerID, category))
}

// Put stores one collection, replacing any prior record for the same
// provider and category.
func (s *AuditStore) Put(_ context.Context, providerID string, cs datatypes.CategorySignals) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to encode signal audit record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(providerID, cs.Category), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write signal audit record: %w", err)
	}
	return nil
}

// Get returns the stored collection for one category, reporting whether a
// record existed.
func (s *AuditStore) Get(_ context.Context, providerID string, category datatypes.CategoryKey) (datatypes.CategorySignals, bool, error) {
	var cs datatypes.CategorySignals
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(auditKey(providerID, category))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cs)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datatypes.CategorySignals{Category: category}, false, nil
	}
	if err != nil {
		return datatypes.CategorySignals{}, false, fmt.Errorf("failed to read signal audit record: %w", err)
	}
	return cs, true, nil
}

// Load replays the most recent collections for every canonical category.
// Categories with no stored record come back as empty signals, so callers
// always receive the full canonical set.
func (s *AuditStore) Load(ctx context.Context, providerID string) (map[datatypes.CategoryKey]datatypes.CategorySignals, error) {
	out := make(map[datatypes.CategoryKey]datatypes.CategorySignals)
	for _, category := range datatypes.CanonicalCategories() {
		cs, _, err := s.Get(ctx, providerID, category)
		if err != nil {
			return nil, err
		}
		out[category] = cs
	}
	return out, nil
}
