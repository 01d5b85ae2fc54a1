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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/xiaguan/Mooncake/internal/model"
)

// allocator carves one segment into BufferHandles: a free-list byte
// allocator plus a generation counter that invalidates every handle it
// ever minted the instant the segment is torn down, reworked as a checked
// generation rather than a dangling pointer.
type allocator struct {
	segmentName string
	capacity    uint64

	mu    sync.Mutex
	used  uint64
	free  []span // sorted by offset, non-overlapping, coalesced

	generation atomic.Uint64
	torndown   atomic.Bool
}

type span struct {
	offset uint64
	size   uint64
}

func newAllocator(segmentName string, capacity uint64) *allocator {
	return &allocator{
		segmentName: segmentName,
		capacity:    capacity,
		free:        []span{{offset: 0, size: capacity}},
	}
}

// CurrentGeneration implements model.GenerationSource.
func (a *allocator) CurrentGeneration() uint64 {
	return a.generation.Load()
}

// usedBytes reports allocated bytes, for the used-ratio metric.
func (a *allocator) usedBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// alive reports whether the allocator has not been torn down.
func (a *allocator) alive() bool {
	return !a.torndown.Load()
}

// allocate hands out a handle of exactly size bytes, or reports false if
// this segment cannot satisfy the request (not enough contiguous free
// space, or already torn down). Never over-allocates past capacity.
func (a *allocator) allocate(size uint64) (model.BufferHandle, bool) {
	if size == 0 {
		return model.BufferHandle{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.torndown.Load() {
		return model.BufferHandle{}, false
	}

	for i, s := range a.free {
		if s.size < size {
			continue
		}
		offset := s.offset
		if s.size == size {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = span{offset: s.offset + size, size: s.size - size}
		}
		a.used += size
		return model.NewBufferHandle(a.segmentName, offset, size, a), true
	}
	return model.BufferHandle{}, false
}

// Release returns the handle's byte range to the free list, coalescing
// adjacent spans. A release against a torn-down allocator is a no-op: the
// handle destructor should never panic on an allocator it outlived.
func (a *allocator) Release(offset, size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.torndown.Load() {
		return
	}

	a.free = append(a.free, span{offset: offset, size: size})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].offset < a.free[j].offset })

	merged := a.free[:1]
	for _, s := range a.free[1:] {
		last := &merged[len(merged)-1]
		if last.offset+last.size == s.offset {
			last.size += s.size
			continue
		}
		merged = append(merged, s)
	}
	a.free = merged

	if a.used >= size {
		a.used -= size
	}
}

// teardown invalidates every handle this allocator ever minted by bumping
// its generation, and marks it dead so no further allocation can succeed.
// Called once, under the segment registry's segment lock during
// UnmountSegment's Prepare phase.
func (a *allocator) teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.torndown.Store(true)
	a.generation.Add(1)
}
