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

package masterd

import (
	"context"
	"time"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// PutStart validates the request, allocates handles for every slice of
// every replica under the replica-distinctness rule, and inserts a new
// PROCESSING ObjectMetadata. Previously-granted handles of the same call
// are released the instant any later allocation fails.
func (s *Service) PutStart(ctx context.Context, key model.ObjectKey, valueLength uint64, sliceLengths []uint64, replicaNum int) ([]model.ReplicaDescriptor, error) {
	if err := validatePutStart(key, valueLength, sliceLengths, replicaNum, s.cfg.MaxSliceSize); err != nil {
		return nil, err
	}

	a := s.store.Acquire(key)
	defer a.Release()

	if meta, ok := a.Get(); ok && meta.HasValidReplica() {
		return nil, mcerrors.ErrObjectAlreadyExists
	}

	replicas := make([]model.Replica, 0, replicaNum)
	excluded := make(map[string]struct{})

	for r := 0; r < replicaNum; r++ {
		handles := make([]model.BufferHandle, 0, len(sliceLengths))
		localUsed := make(map[string]struct{})

		for _, size := range sliceLengths {
			h, ok := s.registry.AllocateHandle(size, excluded)
			if !ok {
				for _, done := range handles {
					done.Release()
				}
				for _, done := range replicas {
					for _, h := range done.Handles {
						h.Release()
					}
				}
				s.gc.SetNeedEviction()
				return nil, mcerrors.ErrNoAvailableHandle
			}
			handles = append(handles, h)
			localUsed[h.SegmentName] = struct{}{}
		}

		for seg := range localUsed {
			excluded[seg] = struct{}{}
		}
		replicas = append(replicas, model.Replica{Handles: handles, Status: model.ReplicaProcessing})
	}

	a.Put(&model.ObjectMetadata{
		Size:         valueLength,
		Replicas:     replicas,
		LeaseTimeout: model.LeaseForever,
	})

	descriptors := make([]model.ReplicaDescriptor, len(replicas))
	for i, r := range replicas {
		descriptors[i] = model.DescribeReplica(r)
	}
	return descriptors, nil
}

func validatePutStart(key model.ObjectKey, valueLength uint64, sliceLengths []uint64, replicaNum int, maxSlice uint64) error {
	if key == "" {
		return mcerrors.ErrInvalidParams
	}
	if valueLength == 0 {
		return mcerrors.ErrInvalidParams
	}
	if replicaNum < 1 {
		return mcerrors.ErrInvalidParams
	}
	var sum uint64
	for _, l := range sliceLengths {
		if l == 0 || l > maxSlice {
			return mcerrors.ErrInvalidParams
		}
		sum += l
	}
	if sum != valueLength {
		return mcerrors.ErrInvalidParams
	}
	return nil
}

// PutEnd marks every replica COMPLETE and starts the object's lease clock
// at "unleased" (lease_timeout = now).
func (s *Service) PutEnd(ctx context.Context, key model.ObjectKey) error {
	a := s.store.Acquire(key)
	defer a.Release()

	meta, ok := a.Get()
	if !ok {
		return mcerrors.ErrObjectNotFound
	}
	for i := range meta.Replicas {
		meta.Replicas[i].Status = model.ReplicaComplete
	}
	meta.LeaseTimeout = time.Now()
	return nil
}

// PutRevoke erases an in-flight object and releases every handle it had
// been granted. Any replica already COMPLETE makes this INVALID_WRITE.
func (s *Service) PutRevoke(ctx context.Context, key model.ObjectKey) error {
	a := s.store.Acquire(key)
	defer a.Release()

	meta, ok := a.Get()
	if !ok {
		return mcerrors.ErrObjectNotFound
	}
	for _, r := range meta.Replicas {
		if r.Status != model.ReplicaProcessing {
			return mcerrors.ErrInvalidWrite
		}
	}
	for _, r := range meta.Replicas {
		for _, h := range r.Handles {
			h.Release()
		}
	}
	a.Erase()
	return nil
}

// PutStartItem is one element of a BatchPutStart request.
type PutStartItem struct {
	Key          model.ObjectKey
	ValueLength  uint64
	SliceLengths []uint64
}

// PutStartResult is one element of a BatchPutStart response.
type PutStartResult struct {
	Replicas []model.ReplicaDescriptor
	Err      error
}

// BatchPutStart applies PutStart in input order, not atomically across
// keys, and returns one result per input item.
func (s *Service) BatchPutStart(ctx context.Context, items []PutStartItem, replicaNum int) []PutStartResult {
	out := make([]PutStartResult, len(items))
	for i, item := range items {
		replicas, err := s.PutStart(ctx, item.Key, item.ValueLength, item.SliceLengths, replicaNum)
		out[i] = PutStartResult{Replicas: replicas, Err: err}
	}
	return out
}

// BatchPutEnd applies PutEnd in input order.
func (s *Service) BatchPutEnd(ctx context.Context, keys []model.ObjectKey) []error {
	out := make([]error, len(keys))
	for i, key := range keys {
		out[i] = s.PutEnd(ctx, key)
	}
	return out
}

// BatchPutRevoke applies PutRevoke in input order.
func (s *Service) BatchPutRevoke(ctx context.Context, keys []model.ObjectKey) []error {
	out := make([]error, len(keys))
	for i, key := range keys {
		out[i] = s.PutRevoke(ctx, key)
	}
	return out
}
