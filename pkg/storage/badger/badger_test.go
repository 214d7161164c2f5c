// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badger

import (
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.SyncWrites)
	assert.Equal(t, 5*time.Minute, cfg.GCInterval)
	assert.Equal(t, 0.5, cfg.GCDiscardRatio)
	assert.False(t, cfg.InMemory)
}

func TestInMemoryConfig(t *testing.T) {
	cfg := InMemoryConfig()
	assert.True(t, cfg.InMemory)
	assert.Zero(t, cfg.GCInterval)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestOpenInMemory_ReadWrite(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	}))

	var got []byte
	require.NoError(t, db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte("key"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	}))
	assert.Equal(t, []byte("value"), got)
}

// TestOpenWithPath_Persistence verifies data written before Close is
// readable after a reopen of the same directory.
func TestOpenWithPath_Persistence(t *testing.T) {
	dir := t.TempDir()

	db, err := OpenWithPath(dir)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("durable"), []byte("yes"))
	}))
	require.NoError(t, db.Close())

	db, err = OpenWithPath(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var got []byte
	require.NoError(t, db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte("durable"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	}))
	assert.Equal(t, []byte("yes"), got)
}

// TestGCRunner_StartsAndStops verifies Close joins the GC goroutine
// without hanging.
func TestGCRunner_StartsAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.GCInterval = 10 * time.Millisecond

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, db.gcRunner)

	// Let at least one GC tick fire.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, db.Close())
}

func TestOpenInMemory_NoGCRunner(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Nil(t, db.gcRunner)
}
