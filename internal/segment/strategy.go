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

package segment

import (
	"math/rand"

	"github.com/xiaguan/Mooncake/internal/model"
)

// AllocateHandle is the stateless allocation strategy: it picks one live
// allocator uniformly at random among those that satisfy both the byte
// request and replica-distinctness (the chosen segment must not already
// back an earlier replica of the same PutStart), and carves a handle of
// the requested size from it.
func (r *Registry) AllocateHandle(size uint64, excludedSegments map[string]struct{}) (model.BufferHandle, bool) {
	candidates := r.liveAllocators()
	if len(candidates) == 0 {
		return model.BufferHandle{}, false
	}

	eligible := make([]*allocator, 0, len(candidates))
	for _, a := range candidates {
		if _, excluded := excludedSegments[a.segmentName]; excluded {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return model.BufferHandle{}, false
	}

	// Shuffle so repeated failures (segment too full) don't always retry
	// in the same order.
	order := rand.Perm(len(eligible))
	for _, idx := range order {
		if h, ok := eligible[idx].allocate(size); ok {
			return h, true
		}
	}
	return model.BufferHandle{}, false
}
