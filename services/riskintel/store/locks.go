// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"hash/fnv"
	"sync"
)

// Locks serializes read-modify-write cycles per provider with a fixed
// pool of mutexes keyed by provider ID. Bounded memory regardless of how
// many providers are seen, at the cost of occasional false sharing
// between IDs that hash to the same shard. Different providers (almost
// always) proceed in parallel; the same provider never races itself.
type Locks struct {
	shards [256]sync.Mutex
}

// Lock acquires the mutex for the given provider and returns an unlock
// function.
func (l *Locks) Lock(providerID string) func() {
	mu := l.shard(providerID)
	mu.Lock()
	return mu.Unlock
}

func (l *Locks) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.shards[h.Sum32()%256]
}
