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

// Package config loads the master's startup configuration from a JSON
// file named by a flag.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xiaguan/Mooncake/internal/masterd"
)

// File is the on-disk shape of the config file. Durations are expressed
// in milliseconds or seconds per field, matching the RPC table's naming.
type File struct {
	ClusterID string `json:"cluster_id"`

	NumShards int `json:"num_shards"`

	EnableGC bool `json:"enable_gc"`
	EnableHA bool `json:"enable_ha"`

	DefaultKVLeaseTTLMs          int64   `json:"default_kv_lease_ttl_ms"`
	EvictionRatio                float64 `json:"eviction_ratio"`
	EvictionHighWatermarkRatio   float64 `json:"eviction_high_watermark_ratio"`
	ClientLiveTTLSec             int64   `json:"client_live_ttl_sec"`
	MaxSliceSize                 uint64  `json:"max_slice_size"`

	ListenPort    int `json:"listen_port"`
	MetricsPort   int `json:"metrics_port"`
	WorkerThreads int `json:"worker_threads"`
}

// Parsed holds the decoded config plus the values that don't belong in
// masterd.Config (listen ports, worker pool size).
type Parsed struct {
	Master        masterd.Config
	ListenPort    int
	MetricsPort   int
	WorkerThreads int
}

// LoadFromFlags registers a -f flag for the config file path (defaulting
// to "server.json"), parses the flag set, loads the file, and validates
// the result.
func LoadFromFlags(args []string) (Parsed, error) {
	fs := flag.NewFlagSet("mooncake-master", flag.ContinueOnError)
	path := fs.String("f", "server.json", "path to the master's JSON config file")
	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}
	return Load(*path)
}

// Load reads and validates the config file at path.
func Load(path string) (Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return Parsed{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := masterd.DefaultConfig()
	cfg.ClusterID = f.ClusterID
	if f.NumShards != 0 {
		cfg.NumShards = f.NumShards
	}
	cfg.EnableGC = f.EnableGC
	cfg.EnableHA = f.EnableHA
	if f.DefaultKVLeaseTTLMs != 0 {
		cfg.DefaultKVLeaseTTL = time.Duration(f.DefaultKVLeaseTTLMs) * time.Millisecond
	}
	if f.EvictionRatio != 0 {
		cfg.EvictionRatio = f.EvictionRatio
	}
	if f.EvictionHighWatermarkRatio != 0 {
		cfg.EvictionHighWatermarkRatio = f.EvictionHighWatermarkRatio
	}
	if f.ClientLiveTTLSec != 0 {
		cfg.ClientLiveTTL = time.Duration(f.ClientLiveTTLSec) * time.Second
	}
	if f.MaxSliceSize != 0 {
		cfg.MaxSliceSize = f.MaxSliceSize
	}

	if err := cfg.Validate(); err != nil {
		return Parsed{}, err
	}

	workers := f.WorkerThreads
	if workers <= 0 {
		workers = 0 // 0 means "let grpc's default dispatcher decide"
	}

	return Parsed{
		Master:        cfg,
		ListenPort:    f.ListenPort,
		MetricsPort:   f.MetricsPort,
		WorkerThreads: workers,
	}, nil
}
