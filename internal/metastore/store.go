// Copyright 2024 The Mooncake Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package metastore is the sharded object metadata store: a fixed array
// of shards, each guarded by its own mutex, so that an operation which
// touches exactly one key never contends with operations on keys
// elsewhere.
package metastore

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/xiaguan/Mooncake/internal/model"
)

type shardT struct {
	mu      sync.Mutex
	entries map[model.ObjectKey]*model.ObjectMetadata
}

// Store is the fixed array of shards. NShards must be a power of two in
// [16, 1024].
type Store struct {
	shards []*shardT
	mask   uint32
}

// NewStore builds a Store with nShards shards (must be a power of two).
func NewStore(nShards int) *Store {
	if nShards <= 0 || nShards&(nShards-1) != 0 {
		panic("metastore: nShards must be a power of two")
	}
	s := &Store{
		shards: make([]*shardT, nShards),
		mask:   uint32(nShards - 1),
	}
	for i := range s.shards {
		s.shards[i] = &shardT{entries: make(map[model.ObjectKey]*model.ObjectMetadata)}
	}
	return s
}

func (s *Store) NumShards() int { return len(s.shards) }

func (s *Store) shardIndex(key model.ObjectKey) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() & s.mask
}

// Accessor is a scoped, single-key lock handle: it exposes exists/get/
// put/erase against one entry and must be released (typically via defer)
// before any other shard is touched by the same call chain — no operation
// ever holds two shard locks at once.
type Accessor struct {
	sh  *shardT
	key model.ObjectKey
}

// Acquire locks the shard that owns key and returns an accessor for it.
func (s *Store) Acquire(key model.ObjectKey) *Accessor {
	sh := s.shards[s.shardIndex(key)]
	sh.mu.Lock()
	return &Accessor{sh: sh, key: key}
}

func (a *Accessor) Release() { a.sh.mu.Unlock() }

func (a *Accessor) Exists() bool {
	_, ok := a.sh.entries[a.key]
	return ok
}

func (a *Accessor) Get() (*model.ObjectMetadata, bool) {
	m, ok := a.sh.entries[a.key]
	return m, ok
}

func (a *Accessor) Put(m *model.ObjectMetadata) {
	a.sh.entries[a.key] = m
}

func (a *Accessor) Erase() {
	delete(a.sh.entries, a.key)
}

// ForEachShard runs fn against shard idx's live entry map while holding
// that shard's lock, used by sweeps that must visit every shard
// (ClearInvalidHandles, RemoveAll, BatchEvict) without ever holding two
// shard locks simultaneously.
func (s *Store) ForEachShard(idx int, fn func(entries map[model.ObjectKey]*model.ObjectMetadata)) {
	sh := s.shards[idx]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.entries)
}

// RandomShardOrder returns a permutation of shard indices starting from a
// uniformly random index, so BatchEvict doesn't always pressure the same
// shards first.
func (s *Store) RandomShardOrder() []int {
	n := len(s.shards)
	start := rand.Intn(n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		order[i] = (start + i) % n
	}
	return order
}

// hasAnyInvalidHandle reports whether any replica of meta now points at a
// torn-down allocator. A single invalid handle poisons the whole object,
// even if another replica is still fully valid: the object is dropped
// rather than kept with a dangling reference into a freed segment.
func hasAnyInvalidHandle(meta *model.ObjectMetadata) bool {
	for _, r := range meta.Replicas {
		for _, h := range r.Handles {
			if h.Status() == model.HandleInvalid {
				return true
			}
		}
	}
	return false
}

// ClearInvalidHandles sweeps every shard and erases any object that now has
// any invalid handle, or has no valid replica left. Invoked after a
// segment's allocator has been torn down. Returns the number of objects
// removed.
func (s *Store) ClearInvalidHandles(ctx context.Context) int {
	removed := 0
	for idx := range s.shards {
		s.ForEachShard(idx, func(entries map[model.ObjectKey]*model.ObjectMetadata) {
			for key, meta := range entries {
				if hasAnyInvalidHandle(meta) || !meta.HasValidReplica() {
					delete(entries, key)
					removed++
				}
			}
		})
	}
	return removed
}

// RemoveAll sweeps every shard and erases every object whose lease has
// expired. Returns the count removed.
func (s *Store) RemoveAll(ctx context.Context, now time.Time) int {
	removed := 0
	for idx := range s.shards {
		s.ForEachShard(idx, func(entries map[model.ObjectKey]*model.ObjectMetadata) {
			for key, meta := range entries {
				if !meta.Leased(now) {
					delete(entries, key)
					removed++
				}
			}
		})
	}
	return removed
}

// Keys lists every object key currently present, across all shards. Not
// atomic across shards: callers see a non-atomic snapshot.
func (s *Store) Keys() []model.ObjectKey {
	out := make([]model.ObjectKey, 0)
	for idx := range s.shards {
		s.ForEachShard(idx, func(entries map[model.ObjectKey]*model.ObjectMetadata) {
			for key := range entries {
				out = append(out, key)
			}
		})
	}
	return out
}
