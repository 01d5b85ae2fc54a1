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

package metastore

import (
	"math"
	"sort"
	"time"

	"github.com/xiaguan/Mooncake/internal/model"
)

// EvictionResult reports what one BatchEvict pass did, for the GC worker's
// need_eviction bookkeeping.
type EvictionResult struct {
	Evicted    int
	ObjectSeen int
}

// BatchEvict is the eviction algorithm: walk shards in random-started
// wrap-around order, and in each shard evict the lease-timeout-ordered
// prefix of expired, COMPLETE objects needed to keep the running evicted
// fraction at targetRatio.
func (s *Store) BatchEvict(now time.Time, targetRatio float64) EvictionResult {
	if targetRatio <= 0 {
		return EvictionResult{}
	}

	order := s.RandomShardOrder()
	var objectCountSeen, evictedSoFar int

	for _, idx := range order {
		s.ForEachShard(idx, func(entries map[model.ObjectKey]*model.ObjectMetadata) {
			objectCountSeen += len(entries)
			ideal := int(math.Ceil(float64(objectCountSeen)*targetRatio)) - evictedSoFar
			if ideal <= 0 {
				return
			}

			type candidate struct {
				key     model.ObjectKey
				timeout time.Time
			}
			candidates := make([]candidate, 0, len(entries))
			for key, meta := range entries {
				if meta.Leased(now) || !meta.AllComplete() {
					continue
				}
				candidates = append(candidates, candidate{key: key, timeout: meta.LeaseTimeout})
			}
			if len(candidates) == 0 {
				return
			}
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].timeout.Before(candidates[j].timeout)
			})

			n := ideal
			if n > len(candidates) {
				n = len(candidates)
			}
			targetTimeout := candidates[n-1].timeout

			evictedHere := 0
			for _, c := range candidates {
				if evictedHere >= ideal {
					break
				}
				if c.timeout.After(targetTimeout) {
					continue
				}
				delete(entries, c.key)
				evictedHere++
			}
			evictedSoFar += evictedHere
		})
	}

	return EvictionResult{Evicted: evictedSoFar, ObjectSeen: objectCountSeen}
}

// TotalObjects reports the number of objects across every shard, used by
// the GC worker to decide whether need_eviction should be cleared because
// there is nothing left to evict.
func (s *Store) TotalObjects() int {
	total := 0
	for idx := range s.shards {
		s.ForEachShard(idx, func(entries map[model.ObjectKey]*model.ObjectMetadata) {
			total += len(entries)
		})
	}
	return total
}
