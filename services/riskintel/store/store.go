// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists provider records and their risk state.
package store

import (
	"context"
	"errors"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

// ErrNotFound is returned when a provider identifier does not resolve.
var ErrNotFound = errors.New("provider not found")

// ProviderStore is the persistence contract for provider records.
//
// Implementations must be safe for concurrent use across providers.
// Callers performing read-modify-write cycles on a single provider must
// serialize themselves (see Locks); the store does not arbitrate
// conflicting writers for the same key.
type ProviderStore interface {
	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, id string) (datatypes.ProviderRecord, error)

	// Save upserts the record keyed by its ID.
	Save(ctx context.Context, rec datatypes.ProviderRecord) error

	// List returns all records in unspecified order.
	List(ctx context.Context) ([]datatypes.ProviderRecord, error)
}
