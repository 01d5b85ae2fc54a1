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

// markForGCDelay is the grace period GetReplicaList grants a reader
// before the object auto-removes in GC mode.
const markForGCDelay = 1000 * time.Millisecond

// ExistKey reports whether key exists with every replica COMPLETE, and
// grants a fresh lease on success. Absent keys return (false, nil), not
// an error: only an existing-but-incomplete entry is REPLICA_IS_NOT_READY.
func (s *Service) ExistKey(ctx context.Context, key model.ObjectKey) (bool, error) {
	a := s.store.Acquire(key)
	defer a.Release()

	meta, ok := a.Get()
	if !ok {
		return false, nil
	}
	if !meta.AllComplete() {
		return false, mcerrors.ErrReplicaIsNotReady
	}
	meta.LeaseTimeout = time.Now().Add(s.cfg.DefaultKVLeaseTTL)
	return true, nil
}

// BatchExistKey applies ExistKey in input order.
func (s *Service) BatchExistKey(ctx context.Context, keys []model.ObjectKey) []ExistResult {
	out := make([]ExistResult, len(keys))
	for i, key := range keys {
		exists, err := s.ExistKey(ctx, key)
		out[i] = ExistResult{Exists: exists, Err: err}
	}
	return out
}

// ExistResult is one element of a BatchExistKey response.
type ExistResult struct {
	Exists bool
	Err    error
}

// GetReplicaList returns every replica descriptor for key, gated on
// all-COMPLETE. In GC mode it schedules the object's removal shortly
// after this read instead of granting a lease.
func (s *Service) GetReplicaList(ctx context.Context, key model.ObjectKey) ([]model.ReplicaDescriptor, error) {
	a := s.store.Acquire(key)

	meta, ok := a.Get()
	if !ok {
		a.Release()
		return nil, mcerrors.ErrObjectNotFound
	}
	if !meta.AllComplete() {
		a.Release()
		return nil, mcerrors.ErrReplicaIsNotReady
	}

	descriptors := make([]model.ReplicaDescriptor, len(meta.Replicas))
	for i, r := range meta.Replicas {
		descriptors[i] = model.DescribeReplica(r)
	}

	if s.cfg.EnableGC {
		a.Release()
		if err := s.gc.MarkForGC(key, markForGCDelay); err != nil {
			return nil, err
		}
		return descriptors, nil
	}

	meta.LeaseTimeout = time.Now().Add(s.cfg.DefaultKVLeaseTTL)
	a.Release()
	return descriptors, nil
}

// ReplicaListResult is one element of a BatchGetReplicaList response.
type ReplicaListResult struct {
	Replicas []model.ReplicaDescriptor
	Err      error
}

// BatchGetReplicaList applies GetReplicaList in input order.
func (s *Service) BatchGetReplicaList(ctx context.Context, keys []model.ObjectKey) []ReplicaListResult {
	out := make([]ReplicaListResult, len(keys))
	for i, key := range keys {
		replicas, err := s.GetReplicaList(ctx, key)
		out[i] = ReplicaListResult{Replicas: replicas, Err: err}
	}
	return out
}

// Remove is the user-facing single-key removal, gated on absence of a
// lease and full replica completion.
func (s *Service) Remove(ctx context.Context, key model.ObjectKey) error {
	return s.store.Remove(time.Now(), key)
}

// RemoveAll sweeps every shard and erases every object whose lease has
// expired, returning the count removed.
func (s *Service) RemoveAll(ctx context.Context) int {
	return s.store.RemoveAll(ctx, time.Now())
}

// GetAllKeys lists every object key currently present.
func (s *Service) GetAllKeys(ctx context.Context) []model.ObjectKey {
	return s.store.Keys()
}
