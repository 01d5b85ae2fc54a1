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

// Package viewversion hands out the monotonic view-version counter
// returned alongside Ping, bumped once per client monitor tick that
// expires any client, and once each time a remount moves a client back
// to OK. It holds no persisted
// state: a restart resets the counter along with the rest of the
// in-memory cluster view.
package viewversion

import "sync/atomic"

// Counter is a single monotonically increasing view version.
type Counter struct {
	value atomic.Uint64
}

// Current returns the counter's present value without advancing it.
func (c *Counter) Current() uint64 {
	return c.value.Load()
}

// Advance bumps the counter and returns the new value.
func (c *Counter) Advance() uint64 {
	return c.value.Add(1)
}
