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

// Package segment is the segment registry and allocation strategy: it
// tracks mounted segments per client and the allocators that carve them
// into buffer handles.
package segment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// Segment is the registry's record for one mounted client segment.
type Segment struct {
	ID     model.SegmentId
	Name   string
	Owner  model.ClientId
	Base   uint64
	Size   uint64

	alloc *allocator
}

// ClearInvalidHandlesFunc sweeps every metadata shard for handles that just
// went INVALID. Injected so this package never has to import the metadata
// store.
type ClearInvalidHandlesFunc func(ctx context.Context) (removed int)

// HeartbeatHookFunc enqueues a liveness tick for a client. Injected so this
// package never has to import the HA liveness monitor. Must be safe to call
// while the segment lock is held: it is a bounded, lock-free channel send,
// never a blocking acquire of the client_mutex.
type HeartbeatHookFunc func(clientID model.ClientId) error

// Registry is the segment registry and allocation strategy together,
// serialized through a single reader-writer "segment lock".
type Registry struct {
	log *zap.Logger

	clearInvalidHandles ClearInvalidHandlesFunc
	onHeartbeat         HeartbeatHookFunc

	mu         sync.RWMutex
	byID       map[model.SegmentId]*Segment
	byClient   map[model.ClientId]map[model.SegmentId]struct{}
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:      log,
		byID:     make(map[model.SegmentId]*Segment),
		byClient: make(map[model.ClientId]map[model.SegmentId]struct{}),
	}
}

// SetClearInvalidHandles wires the metadata-shard sweep used by
// UnmountSegment's phase 2.
func (r *Registry) SetClearInvalidHandles(f ClearInvalidHandlesFunc) { r.clearInvalidHandles = f }

// SetHeartbeatHook wires the HA client-liveness monitor's tick enqueue.
func (r *Registry) SetHeartbeatHook(f HeartbeatHookFunc) { r.onHeartbeat = f }

// MountSegment is idempotent: mounting an already-mounted segment id
// returns OK.
func (r *Registry) MountSegment(ctx context.Context, seg Segment, clientID model.ClientId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The heartbeat tick must be enqueued while the segment lock is held,
	// before the exists check and before the insertion completes, and it
	// must fire even when the mount turns out to be a no-op: otherwise a
	// client that only self-heartbeats via retried MountSegment calls on
	// an already-mounted segment would never have its deadline refreshed,
	// and could expire into NEED_REMOUNT despite being alive and retrying.
	// Enqueueing any later risks the opposite failure: a concurrent
	// client-expiry sweep could unmount a segment the liveness monitor
	// never learned about, or the heartbeat queue could fill between this
	// mount and the tick, leaving the client untracked.
	if r.onHeartbeat != nil {
		if err := r.onHeartbeat(clientID); err != nil {
			return mcerrors.New(mcerrors.InternalError, "heartbeat queue full")
		}
	}

	if _, exists := r.byID[seg.ID]; exists {
		return nil
	}

	seg.Owner = clientID
	seg.alloc = newAllocator(seg.Name, seg.Size)
	r.byID[seg.ID] = &seg
	if r.byClient[clientID] == nil {
		r.byClient[clientID] = make(map[model.SegmentId]struct{})
	}
	r.byClient[clientID][seg.ID] = struct{}{}
	return nil
}

// ReMountSegment remounts every segment of a previously-expired client in
// one atomic step (HA only). alreadyOK should report whether the client
// is already in the liveness monitor's OK set; when true this is a no-op
// that returns OK.
func (r *Registry) ReMountSegment(ctx context.Context, segs []Segment, clientID model.ClientId, alreadyOK bool) error {
	if alreadyOK {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.onHeartbeat != nil {
		if err := r.onHeartbeat(clientID); err != nil {
			return mcerrors.New(mcerrors.InternalError, "heartbeat queue full")
		}
	}

	for _, seg := range segs {
		if _, exists := r.byID[seg.ID]; exists {
			continue
		}
		seg.Owner = clientID
		seg.alloc = newAllocator(seg.Name, seg.Size)
		r.byID[seg.ID] = &seg
		if r.byClient[clientID] == nil {
			r.byClient[clientID] = make(map[model.SegmentId]struct{})
		}
		r.byClient[clientID][seg.ID] = struct{}{}
	}
	return nil
}

// UnmountSegment is a two-phase teardown. It must never hold the segment
// lock while sweeping metadata shards, to avoid deadlock against a
// PutStart that holds a shard lock while requesting allocator access.
func (r *Registry) UnmountSegment(ctx context.Context, segmentID model.SegmentId, clientID model.ClientId) error {
	seg := r.prepareUnmount(segmentID, clientID)
	if seg == nil {
		return nil // not found: idempotent
	}

	if r.clearInvalidHandles != nil {
		r.clearInvalidHandles(ctx)
	}

	r.commitUnmount(segmentID)
	return nil
}

// prepareUnmount tears the allocator down (invalidating its handles) but
// keeps the segment shell visible in the registry.
func (r *Registry) prepareUnmount(segmentID model.SegmentId, clientID model.ClientId) *Segment {
	r.mu.Lock()
	defer r.mu.Unlock()

	seg, ok := r.byID[segmentID]
	if !ok {
		return nil
	}
	seg.alloc.teardown()
	return seg
}

// commitUnmount removes the segment shell once every handle it backed has
// been cleared from metadata.
func (r *Registry) commitUnmount(segmentID model.SegmentId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seg, ok := r.byID[segmentID]
	if !ok {
		return
	}
	delete(r.byID, segmentID)
	if set, ok := r.byClient[seg.Owner]; ok {
		delete(set, segmentID)
		if len(set) == 0 {
			delete(r.byClient, seg.Owner)
		}
	}
}

// UnmountClientSegments tears down every segment owned by clientID. Used by
// the HA liveness monitor when a client expires: Prepare runs for every
// segment, then a single shared ClearInvalidHandles sweep runs once, then
// Commit runs for every segment — cheaper than repeating the sweep per
// segment, and still correct since Prepare/Commit never hold the segment
// lock across the sweep.
func (r *Registry) UnmountClientSegments(ctx context.Context, clientID model.ClientId) {
	r.mu.RLock()
	ids := make([]model.SegmentId, 0, len(r.byClient[clientID]))
	for id := range r.byClient[clientID] {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	prepared := make([]model.SegmentId, 0, len(ids))
	for _, id := range ids {
		if r.prepareUnmount(id, clientID) != nil {
			prepared = append(prepared, id)
		}
	}

	if len(prepared) > 0 && r.clearInvalidHandles != nil {
		r.clearInvalidHandles(ctx)
	}

	for _, id := range prepared {
		r.commitUnmount(id)
	}
}

// GetAllSegments lists every currently-mounted segment.
func (r *Registry) GetAllSegments(ctx context.Context) []Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Segment, 0, len(r.byID))
	for _, seg := range r.byID {
		out = append(out, *seg)
	}
	return out
}

// QuerySegments returns (used, capacity) for the named segment. The master
// already tracks allocation state authoritatively, so this is a direct
// read of that segment's own allocator rather than a value learned from a
// heartbeat report.
func (r *Registry) QuerySegments(ctx context.Context, segmentName string) (used, capacity uint64, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, seg := range r.byID {
		if seg.Name == segmentName {
			return seg.alloc.usedBytes(), seg.Size, nil
		}
	}
	return 0, 0, mcerrors.ErrSegmentNotFound
}

// UsedRatio is the metric the GC worker watches for eviction pressure:
// sum of allocated bytes / sum of segment capacities.
func (r *Registry) UsedRatio() float64 {
	used, capacity := r.Totals()
	if capacity == 0 {
		return 0
	}
	return float64(used) / float64(capacity)
}

// Totals reports the raw sum of allocated bytes and segment capacity
// across every mounted segment, for metrics exposition.
func (r *Registry) Totals() (used, capacity uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, seg := range r.byID {
		used += seg.alloc.usedBytes()
		capacity += seg.Size
	}
	return used, capacity
}

// liveAllocators returns a snapshot of every live allocator, for use by
// the allocation strategy when it picks a candidate segment.
func (r *Registry) liveAllocators() []*allocator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*allocator, 0, len(r.byID))
	for _, seg := range r.byID {
		if seg.alloc.alive() {
			out = append(out, seg.alloc)
		}
	}
	return out
}

// NewSegmentId mints a fresh 128-bit segment identifier.
func NewSegmentId() model.SegmentId { return uuid.New() }

// ParseID rebuilds a UUID from the two big-endian 64-bit halves used to
// encode segment and client identifiers on the wire.
func ParseID(hi, lo uint64) model.SegmentId {
	var id uuid.UUID
	for i := 0; i < 8; i++ {
		id[i] = byte(hi >> (8 * (7 - i)))
		id[8+i] = byte(lo >> (8 * (7 - i)))
	}
	return id
}

func (s Segment) String() string {
	return fmt.Sprintf("segment{id=%s name=%s owner=%s size=%d}", s.ID, s.Name, s.Owner, s.Size)
}
