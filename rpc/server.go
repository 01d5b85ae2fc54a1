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

package rpc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/xiaguan/Mooncake/internal/masterd"
	"github.com/xiaguan/Mooncake/internal/metrics"
)

// NewGRPCServer builds a grpc.Server with the Prometheus interceptor
// chain wired in and the master's ServiceDesc registered.
func NewGRPCServer(svc *masterd.Service, m *metrics.Metrics) *grpc.Server {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(m.GRPC.UnaryServerInterceptor()),
		grpc.StreamInterceptor(m.GRPC.StreamServerInterceptor()),
	)
	m.GRPC.InitializeMetrics(srv)
	RegisterMasterServer(srv, NewServer(svc))
	return srv
}

// RegisterMasterServer registers impl against s's service registry.
func RegisterMasterServer(s *grpc.Server, impl MasterServer) {
	s.RegisterService(&MasterServiceDesc, impl)
}

// NewMetricsHandler exposes the Prometheus registry over HTTP.
func NewMetricsHandler(m *metrics.Metrics) http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
