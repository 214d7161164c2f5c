// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

const providerKeyPrefix = "provider/"

// BadgerStore persists provider records as JSON values in BadgerDB.
// Records written by older deployments may carry legacy numeric category
// values; the datatypes decoder normalizes those on read.
type BadgerStore struct {
	db *badger.DB
}

var _ ProviderStore = (*BadgerStore)(nil)

// NewBadgerStore wraps an open Badger database. The caller owns the
// database lifecycle.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func providerKey(id string) []byte {
	return []byte(providerKeyPrefix + id)
}

func (s *BadgerStore) Get(_ context.Context, id string) (datatypes.ProviderRecord, error) {
	var rec datatypes.ProviderRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(providerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datatypes.ProviderRecord{}, ErrNotFound
	}
	if err != nil {
		return datatypes.ProviderRecord{}, fmt.Errorf("failed to read provider record: %w", err)
	}
	return rec, nil
}

func (s *BadgerStore) Save(_ context.Context, rec datatypes.ProviderRecord) error {
	if rec.ID == "" {
		return errors.New("provider record has no ID")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode provider record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(providerKey(rec.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write provider record: %w", err)
	}
	return nil
}

func (s *BadgerStore) List(_ context.Context) ([]datatypes.ProviderRecord, error) {
	var out []datatypes.ProviderRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(providerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if !strings.HasPrefix(key, providerKeyPrefix) {
				continue
			}
			var rec datatypes.ProviderRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list provider records: %w", err)
	}
	return out, nil
}
