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

// Package gc is the lease, garbage-collection, and watermark-eviction
// engine: a single background worker that drains a bounded GC task queue
// and, on the same tick, decides whether the store needs a BatchEvict
// pass.
package gc

import (
	"container/heap"
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xiaguan/Mooncake/internal/metastore"
	"github.com/xiaguan/Mooncake/internal/metrics"
	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/segment"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// Config configures a Worker.
type Config struct {
	Tick          time.Duration
	QueueCapacity int
	EvictionRatio float64
	HighWatermark float64
}

// Worker is the GC/eviction background worker. One instance runs for the
// lifetime of the master.
type Worker struct {
	log      *zap.Logger
	store    *metastore.Store
	registry *segment.Registry
	metrics  *metrics.Metrics
	cfg      Config

	queue        chan model.GCTask
	heap         taskHeap
	needEviction atomic.Bool
}

func NewWorker(log *zap.Logger, store *metastore.Store, registry *segment.Registry, m *metrics.Metrics, cfg Config) *Worker {
	if cfg.Tick <= 0 {
		cfg.Tick = 10 * time.Millisecond
	}
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = 65536
	}
	return &Worker{
		log:      log,
		store:    store,
		registry: registry,
		metrics:  m,
		cfg:      cfg,
		queue:    make(chan model.GCTask, capacity),
	}
}

// MarkForGC enqueues a deferred removal for key, to fire after delay
// (used by GetReplicaList's GC-mode read path).
func (w *Worker) MarkForGC(key model.ObjectKey, delay time.Duration) error {
	select {
	case w.queue <- model.GCTask{Key: key, ReadyAt: time.Now().Add(delay)}:
		return nil
	default:
		return mcerrors.New(mcerrors.InternalError, "gc_queue is full")
	}
}

// SetNeedEviction flags that the last allocation attempt ran out of
// handles, so the next tick should run BatchEvict even below the
// high-watermark ratio (called by the allocation strategy's caller on
// NO_AVAILABLE_HANDLE).
func (w *Worker) SetNeedEviction() {
	w.needEviction.Store(true)
}

// Run drains the GC queue and evaluates eviction pressure once per tick
// until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	now := time.Now()
	w.drainQueue()
	w.popReady(now)
	w.maybeEvict(now)
	w.refreshGauges()
}

func (w *Worker) refreshGauges() {
	if w.metrics == nil {
		return
	}
	used, capacity := w.registry.Totals()
	w.metrics.UsedBytes.Set(float64(used))
	w.metrics.CapacityBytes.Set(float64(capacity))
	w.metrics.KeyCount.Set(float64(w.store.TotalObjects()))
}

func (w *Worker) drainQueue() {
	pending := len(w.queue)
	for i := 0; i < pending; i++ {
		select {
		case t := <-w.queue:
			heap.Push(&w.heap, t)
		default:
			return
		}
	}
}

func (w *Worker) popReady(now time.Time) {
	for w.heap.Len() > 0 && !w.heap[0].ReadyAt.After(now) {
		task := heap.Pop(&w.heap).(model.GCTask)
		err := w.store.Remove(now, task.Key)
		if err == nil {
			if w.metrics != nil {
				w.metrics.GCRemoved.Inc()
			}
			continue
		}
		switch mcerrors.CodeOf(err) {
		case mcerrors.ObjectNotFound, mcerrors.ObjectHasLease:
			// key was removed or re-leased between enqueue and pop; benign.
		default:
			w.log.Warn("gc remove failed", zap.String("key", task.Key), zap.Error(err))
		}
	}
}

func (w *Worker) maybeEvict(now time.Time) {
	usedRatio := w.registry.UsedRatio()
	overWatermark := usedRatio > w.cfg.HighWatermark
	flagged := w.needEviction.Load() && w.cfg.EvictionRatio > 0
	if !overWatermark && !flagged {
		return
	}

	target := w.cfg.EvictionRatio
	if delta := usedRatio - w.cfg.HighWatermark + w.cfg.EvictionRatio; delta > target {
		target = delta
	}

	result := w.store.BatchEvict(now, target)
	if w.metrics != nil {
		w.metrics.EvictionRuns.Inc()
		w.metrics.EvictedObjects.Add(float64(result.Evicted))
	}

	if result.Evicted > 0 || w.store.TotalObjects() == 0 {
		w.needEviction.Store(false)
	}
}
