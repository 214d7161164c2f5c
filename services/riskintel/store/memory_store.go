// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sync"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// MemoryStore is an in-memory ProviderStore for tests and demo mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]datatypes.ProviderRecord
}

var _ ProviderStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]datatypes.ProviderRecord)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (datatypes.ProviderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return datatypes.ProviderRecord{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, rec datatypes.ProviderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]datatypes.ProviderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]datatypes.ProviderRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}
