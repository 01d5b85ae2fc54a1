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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiaguan/Mooncake/internal/gc"
	"github.com/xiaguan/Mooncake/internal/liveness"
	"github.com/xiaguan/Mooncake/internal/metastore"
	"github.com/xiaguan/Mooncake/internal/metrics"
	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/segment"
)

// Service is the assembled master: every component wired together behind
// one Go API. The RPC layer holds exactly one Service and delegates every
// request into it.
type Service struct {
	log     *zap.Logger
	cfg     Config
	metrics *metrics.Metrics

	store    *metastore.Store
	registry *segment.Registry
	gc       *gc.Worker
	monitor  *liveness.Monitor
}

// NewService builds and wires a Service. It does not start the background
// workers; call Run for that.
func NewService(log *zap.Logger, cfg Config, m *metrics.Metrics) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := metastore.NewStore(cfg.NumShards)
	registry := segment.NewRegistry(log)

	gcWorker := gc.NewWorker(log, store, registry, m, gc.Config{
		Tick:          cfg.GCTick,
		QueueCapacity: cfg.GCQueueCapacity,
		EvictionRatio: cfg.EvictionRatio,
		HighWatermark: cfg.EvictionHighWatermarkRatio,
	})

	registry.SetClearInvalidHandles(func(ctx context.Context) int {
		return store.ClearInvalidHandles(ctx)
	})

	svc := &Service{
		log:      log,
		cfg:      cfg,
		metrics:  m,
		store:    store,
		registry: registry,
		gc:       gcWorker,
	}

	if cfg.EnableHA {
		monitor := liveness.NewMonitor(log, liveness.Config{
			ClientLiveTTL:          cfg.ClientLiveTTL,
			TickInterval:           cfg.HeartbeatTick,
			HeartbeatQueueCapacity: cfg.HeartbeatQueueCapacity,
		}, func(ctx context.Context, clientID model.ClientId) {
			registry.UnmountClientSegments(ctx, clientID)
		})
		if m != nil {
			monitor.SetActiveClientsGauge(m.ActiveClients)
		}
		svc.monitor = monitor
		registry.SetHeartbeatHook(monitor.EnqueueHeartbeat)
	}

	return svc, nil
}

// Run starts every always-on background worker and blocks until ctx is
// cancelled or one of them returns an error.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.gc.Run(ctx) })
	if s.cfg.EnableHA {
		g.Go(func() error { return s.monitor.Run(ctx) })
	}

	return g.Wait()
}

// Metrics exposes the wired metrics registry for the HTTP exposition
// server.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }
