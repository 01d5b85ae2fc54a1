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

// Package metrics is the master's Prometheus-backed metric surface:
// gauges and counters for key count, used bytes, eviction activity, and
// active clients.
package metrics

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mooncake_master"

// Metrics holds every counter/gauge the master updates. Callers
// instantiate one per master (NewMetrics) and inject it, rather than
// relying on a process-global singleton.
type Metrics struct {
	Registry *prometheus.Registry
	GRPC     *grpcprometheus.ServerMetrics

	KeyCount       prometheus.Gauge
	UsedBytes      prometheus.Gauge
	CapacityBytes  prometheus.Gauge
	ActiveClients  prometheus.Gauge
	EvictionRuns   prometheus.Counter
	EvictedObjects prometheus.Counter
	GCRemoved      prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	grpcMetrics := grpcprometheus.NewServerMetrics(
		func(o *prometheus.CounterOpts) { o.Namespace = namespace },
	)
	grpcMetrics.EnableHandlingTimeHistogram(
		func(h *prometheus.HistogramOpts) { h.Namespace = namespace },
	)

	m := &Metrics{
		Registry: registry,
		GRPC:     grpcMetrics,
		KeyCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "key_count", Help: "Number of objects currently tracked.",
		}),
		UsedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "used_bytes", Help: "Bytes currently allocated across all segments.",
		}),
		CapacityBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "capacity_bytes", Help: "Total byte capacity across all mounted segments.",
		}),
		ActiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_clients", Help: "Clients currently in the OK liveness state.",
		}),
		EvictionRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "eviction_runs_total", Help: "BatchEvict passes executed.",
		}),
		EvictedObjects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "evicted_objects_total", Help: "Objects removed by BatchEvict.",
		}),
		GCRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "gc_removed_total", Help: "Objects removed by the GC task queue.",
		}),
	}

	registry.MustRegister(
		grpcMetrics,
		m.KeyCount, m.UsedBytes, m.CapacityBytes, m.ActiveClients,
		m.EvictionRuns, m.EvictedObjects, m.GCRemoved,
	)
	return m
}
