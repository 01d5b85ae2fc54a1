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

// Package masterd is the public operation surface: it wires together the
// segment registry, the sharded metadata store, the GC/eviction worker,
// and (in HA mode) the client liveness monitor, and exposes the full
// operation table as plain Go methods for the RPC layer to delegate into.
package masterd

import (
	"fmt"
	"time"
)

// Config holds every startup knob named by the operation table. Invalid
// ratios or shard counts fail fast at NewService time rather than
// surfacing as a runtime error on the first request.
type Config struct {
	ClusterID string

	NumShards int

	EnableGC bool
	EnableHA bool

	DefaultKVLeaseTTL          time.Duration
	EvictionRatio              float64
	EvictionHighWatermarkRatio float64
	ClientLiveTTL              time.Duration
	MaxSliceSize               uint64

	GCTick                 time.Duration
	GCQueueCapacity        int
	HeartbeatTick          time.Duration
	HeartbeatQueueCapacity int
}

// DefaultConfig returns the configuration used when a field is left at
// its zero value, applied before validating an operator-supplied config
// file.
func DefaultConfig() Config {
	return Config{
		NumShards:                  256,
		EnableGC:                   false,
		EnableHA:                   false,
		DefaultKVLeaseTTL:          5 * time.Second,
		EvictionRatio:              0.1,
		EvictionHighWatermarkRatio: 0.9,
		ClientLiveTTL:              10 * time.Second,
		MaxSliceSize:               64 << 20,
		GCTick:                     10 * time.Millisecond,
		GCQueueCapacity:            65536,
		HeartbeatTick:              100 * time.Millisecond,
		HeartbeatQueueCapacity:     4096,
	}
}

// Validate rejects an invalid configuration so startup fails fast instead
// of surfacing as a runtime error on the first request.
func (c Config) Validate() error {
	if c.NumShards < 16 || c.NumShards > 1024 || c.NumShards&(c.NumShards-1) != 0 {
		return fmt.Errorf("masterd: num_shards must be a power of two in [16, 1024], got %d", c.NumShards)
	}
	if c.EvictionRatio < 0 || c.EvictionRatio > 1 {
		return fmt.Errorf("masterd: eviction_ratio must be in [0,1], got %f", c.EvictionRatio)
	}
	if c.EvictionHighWatermarkRatio < 0 || c.EvictionHighWatermarkRatio > 1 {
		return fmt.Errorf("masterd: eviction_high_watermark_ratio must be in [0,1], got %f", c.EvictionHighWatermarkRatio)
	}
	if c.DefaultKVLeaseTTL < 0 {
		return fmt.Errorf("masterd: default_kv_lease_ttl must be non-negative")
	}
	if c.ClientLiveTTL <= 0 && c.EnableHA {
		return fmt.Errorf("masterd: client_live_ttl_sec must be positive when enable_ha is set")
	}
	if c.MaxSliceSize == 0 {
		return fmt.Errorf("masterd: max_slice_size must be positive")
	}
	return nil
}
