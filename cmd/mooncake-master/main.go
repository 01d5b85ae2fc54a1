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

// Command mooncake-master starts the master service: it loads the JSON
// config named by -f, stands up the gRPC and metrics HTTP servers, and
// runs until it receives SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiaguan/Mooncake/internal/config"
	"github.com/xiaguan/Mooncake/internal/masterd"
	"github.com/xiaguan/Mooncake/internal/metrics"
	"github.com/xiaguan/Mooncake/rpc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	parsed, err := config.LoadFromFlags(args)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	m := metrics.NewMetrics()
	svc, err := masterd.NewService(log, parsed.Master, m)
	if err != nil {
		log.Fatal("failed to build master service", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return svc.Run(ctx) })

	grpcServer := rpc.NewGRPCServer(svc, m)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", parsed.ListenPort))
	if err != nil {
		return fmt.Errorf("listen on grpc port: %w", err)
	}
	g.Go(func() error { return grpcServer.Serve(lis) })
	g.Go(func() error {
		<-ctx.Done()
		grpcServer.GracefulStop()
		return nil
	})

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", parsed.MetricsPort),
		Handler: rpc.NewMetricsHandler(m),
	}
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return metricsServer.Close()
	})

	log.Info("mooncake-master started",
		zap.Int("grpc_port", parsed.ListenPort),
		zap.Int("metrics_port", parsed.MetricsPort),
		zap.Bool("enable_gc", parsed.Master.EnableGC),
		zap.Bool("enable_ha", parsed.Master.EnableHA),
	)

	return g.Wait()
}
