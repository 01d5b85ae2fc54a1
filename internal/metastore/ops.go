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
	"time"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// Remove is the single-key removal primitive shared by the public Remove
// operation and the GC worker's queue drain: absent, leased, or
// not-yet-complete objects are rejected rather than erased.
func (s *Store) Remove(now time.Time, key model.ObjectKey) error {
	a := s.Acquire(key)
	defer a.Release()

	meta, ok := a.Get()
	if !ok {
		return mcerrors.ErrObjectNotFound
	}
	if meta.Leased(now) {
		return mcerrors.ErrObjectHasLease
	}
	if !meta.AllComplete() {
		return mcerrors.ErrReplicaIsNotReady
	}
	a.Erase()
	return nil
}
