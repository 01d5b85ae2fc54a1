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

// Package liveness is the HA-only client liveness monitor: it tracks
// client heartbeats, expires stale clients, and drives their segments to
// be auto-unmounted after a grace period.
package liveness

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/viewversion"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// ClientStatus is a client's current liveness state.
type ClientStatus int

const (
	StatusOK ClientStatus = iota
	StatusNeedRemount
)

// ExpireFunc unmounts every segment owned by an expired client. Injected
// so this package never imports the segment registry directly.
type ExpireFunc func(ctx context.Context, clientID model.ClientId)

// Monitor is the HA client-liveness subsystem. Safe for concurrent use.
type Monitor struct {
	log *zap.Logger

	liveTTL      time.Duration
	tickInterval time.Duration
	onExpire     ExpireFunc
	version      *viewversion.Counter

	pingQueue chan model.ClientId

	// mu is the client status lock: writer on expiry, reader on Ping.
	mu     sync.RWMutex
	status map[model.ClientId]ClientStatus

	// deadlines is local to the monitor worker goroutine; no lock needed.
	deadlines map[model.ClientId]time.Time

	activeClients prometheus.Gauge
}

// SetActiveClientsGauge wires a gauge the monitor refreshes once per tick.
func (m *Monitor) SetActiveClientsGauge(g prometheus.Gauge) { m.activeClients = g }

// Config configures a Monitor.
type Config struct {
	ClientLiveTTL         time.Duration
	TickInterval          time.Duration
	HeartbeatQueueCapacity int
}

func NewMonitor(log *zap.Logger, cfg Config, onExpire ExpireFunc) *Monitor {
	capacity := cfg.HeartbeatQueueCapacity
	if capacity <= 0 {
		capacity = 4096
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &Monitor{
		log:          log,
		liveTTL:      cfg.ClientLiveTTL,
		tickInterval: tick,
		onExpire:     onExpire,
		version:      &viewversion.Counter{},
		pingQueue:    make(chan model.ClientId, capacity),
		status:       make(map[model.ClientId]ClientStatus),
		deadlines:    make(map[model.ClientId]time.Time),
	}
}

// EnqueueHeartbeat is the HeartbeatHookFunc wired into the segment
// registry and called directly by the Ping RPC handler. It is a bounded,
// non-blocking channel send, safe to call while any other lock is held.
func (m *Monitor) EnqueueHeartbeat(clientID model.ClientId) error {
	select {
	case m.pingQueue <- clientID:
		return nil
	default:
		return mcerrors.New(mcerrors.InternalError, "client_ping_queue is full")
	}
}

// Ping handles the Ping RPC: it heartbeats the client and reports the
// current view version and status.
func (m *Monitor) Ping(clientID model.ClientId) (viewVersion uint64, status ClientStatus, err error) {
	if err := m.EnqueueHeartbeat(clientID); err != nil {
		return 0, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version.Current(), m.status[clientID], nil
}

// IsOK reports whether clientID is currently tracked as OK. An unknown
// client (never seen expire) is treated as OK so a first-time mount never
// spuriously looks like a pending remount.
func (m *Monitor) IsOK(clientID model.ClientId) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, tracked := m.status[clientID]
	return !tracked || s == StatusOK
}

// MarkOK transitions clientID back into the OK set, called once
// ReMountSegment has finished remounting its segments.
func (m *Monitor) MarkOK(clientID model.ClientId) {
	m.mu.Lock()
	m.status[clientID] = StatusOK
	m.mu.Unlock()
	m.version.Advance()
}

// ActiveClients reports how many clients are currently tracked as OK, for
// the active-clients metric.
func (m *Monitor) ActiveClients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.status {
		if s == StatusOK {
			n++
		}
	}
	return n
}

// Run drains the heartbeat queue and expires stale clients until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	now := time.Now()
	defer func() {
		if m.activeClients != nil {
			m.activeClients.Set(float64(m.ActiveClients()))
		}
	}()

	drain := len(m.pingQueue)
	for i := 0; i < drain; i++ {
		select {
		case id := <-m.pingQueue:
			m.deadlines[id] = now.Add(m.liveTTL)
			m.mu.Lock()
			if _, tracked := m.status[id]; !tracked {
				m.status[id] = StatusOK
			}
			m.mu.Unlock()
		default:
		}
	}

	var expired []model.ClientId
	for id, deadline := range m.deadlines {
		if deadline.Before(now) {
			expired = append(expired, id)
			delete(m.deadlines, id)
		}
	}
	if len(expired) == 0 {
		return
	}

	m.mu.Lock()
	for _, id := range expired {
		m.status[id] = StatusNeedRemount
	}
	m.mu.Unlock()
	m.version.Advance()

	for _, id := range expired {
		m.log.Info("client expired, unmounting its segments", zap.String("client_id", id.String()))
		if m.onExpire != nil {
			m.onExpire(ctx, id)
		}
	}
}
