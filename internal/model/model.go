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

// Package model holds the data model shared by every master component:
// segments, buffer handles, replicas and object metadata.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ObjectKey names an object. It is opaque to the master, treated as UTF-8
// only for logging.
type ObjectKey = string

// SegmentId and ClientId are 128-bit UUIDs.
type SegmentId = uuid.UUID

type ClientId = uuid.UUID

// HandleStatus is the lifecycle state of a single BufferHandle.
type HandleStatus int

const (
	HandleComplete HandleStatus = iota
	HandleInvalid
)

// BufferHandle is a fixed-size slice of one segment: the unit of allocation
// and, out-of-band, the unit of transfer. The master never reads or writes
// through it; it only accounts for it.
type BufferHandle struct {
	SegmentName string
	Offset      uint64
	Size        uint64

	// generation pins this handle to the allocator generation that minted
	// it. An allocator bumps its generation on teardown so every handle it
	// ever issued becomes stale without a dangling pointer ever being
	// dereferenced.
	generation uint64
	allocator  HandleOwner
}

// GenerationSource is implemented by a segment's allocator. It reports a
// counter that advances once, permanently, when the allocator is torn down.
type GenerationSource interface {
	CurrentGeneration() uint64
}

// HandleOwner is the full interface a segment allocator offers a handle it
// minted: a generation check, plus the ability to give the bytes back.
type HandleOwner interface {
	GenerationSource
	Release(offset, size uint64)
}

// NewBufferHandle is called only by the allocator that owns segmentName.
func NewBufferHandle(segmentName string, offset, size uint64, src HandleOwner) BufferHandle {
	return BufferHandle{
		SegmentName: segmentName,
		Offset:      offset,
		Size:        size,
		generation:  src.CurrentGeneration(),
		allocator:   src,
	}
}

// Status reports INVALID the instant the backing allocator has torn down,
// i.e. its generation has moved past the one that minted this handle.
func (h BufferHandle) Status() HandleStatus {
	if h.allocator == nil {
		return HandleComplete
	}
	if h.allocator.CurrentGeneration() != h.generation {
		return HandleInvalid
	}
	return HandleComplete
}

// Release returns the handle's bytes to its allocator: a no-op if the
// allocator already tore down (generation mismatch), never a dangling free.
func (h BufferHandle) Release() {
	if h.allocator == nil || h.Status() == HandleInvalid {
		return
	}
	h.allocator.Release(h.Offset, h.Size)
}

// ReplicaStatus is the lifecycle state of one physical copy of an object.
type ReplicaStatus int

const (
	ReplicaProcessing ReplicaStatus = iota
	ReplicaComplete
)

// Replica is one physical copy of an object: an ordered list of handles
// whose sizes sum to the object size.
type Replica struct {
	Handles []BufferHandle
	Status  ReplicaStatus
}

// Size sums the sizes of every handle in the replica.
func (r Replica) Size() uint64 {
	var total uint64
	for _, h := range r.Handles {
		total += h.Size
	}
	return total
}

// IsValid reports whether every handle of the replica is still backed by a
// live allocator.
func (r Replica) IsValid() bool {
	for _, h := range r.Handles {
		if h.Status() == HandleInvalid {
			return false
		}
	}
	return true
}

// segmentSet returns the distinct segment names touched by the replica,
// used to enforce replica-distinctness.
func (r Replica) segmentSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Handles))
	for _, h := range r.Handles {
		set[h.SegmentName] = struct{}{}
	}
	return set
}

// DisjointFrom reports whether r and other touch no segment in common.
func (r Replica) DisjointFrom(other Replica) bool {
	set := r.segmentSet()
	for seg := range other.segmentSet() {
		if _, ok := set[seg]; ok {
			return false
		}
	}
	return true
}

// LeaseForever is the +inf sentinel lease_timeout set by PutStart so an
// in-flight upload is never evicted.
var LeaseForever = time.Unix(1<<62, 0)

// ObjectMetadata is the per-key entry held by one metadata shard.
type ObjectMetadata struct {
	Size         uint64
	Replicas     []Replica
	LeaseTimeout time.Time
}

// Leased reports whether the object is currently protected from eviction
// or explicit removal.
func (m *ObjectMetadata) Leased(now time.Time) bool {
	return now.Before(m.LeaseTimeout)
}

// AllComplete reports whether every replica has finished PutEnd.
func (m *ObjectMetadata) AllComplete() bool {
	for _, r := range m.Replicas {
		if r.Status != ReplicaComplete {
			return false
		}
	}
	return true
}

// ValidReplicas returns the subset of replicas that still have every handle
// backed by a live segment.
func (m *ObjectMetadata) ValidReplicas() []Replica {
	out := make([]Replica, 0, len(m.Replicas))
	for _, r := range m.Replicas {
		if r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}

// HasValidReplica reports whether at least one replica is still valid.
func (m *ObjectMetadata) HasValidReplica() bool {
	for _, r := range m.Replicas {
		if r.IsValid() {
			return true
		}
	}
	return false
}

// GCTask is a deferred removal request enqueued by a reader.
type GCTask struct {
	Key     ObjectKey
	ReadyAt time.Time
}

// ReplicaDescriptor is what PutStart/GetReplicaList hand back to the
// client: everything it needs to drive the out-of-band transfer itself.
type ReplicaDescriptor struct {
	Handles []BufferHandle
	Status  ReplicaStatus
}

func DescribeReplica(r Replica) ReplicaDescriptor {
	return ReplicaDescriptor{Handles: r.Handles, Status: r.Status}
}
