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

	"github.com/xiaguan/Mooncake/internal/liveness"
	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// Ping is the HA heartbeat RPC: it ticks the client's liveness deadline
// and reports the master's current view of that client.
func (s *Service) Ping(ctx context.Context, clientID model.ClientId) (viewVersion uint64, status liveness.ClientStatus, err error) {
	if !s.cfg.EnableHA {
		return 0, 0, mcerrors.ErrUnavailableInCurrentMode
	}
	return s.monitor.Ping(clientID)
}

// GetFsdir returns the configured cluster id, or INVALID_PARAMS if the
// master was started without one.
func (s *Service) GetFsdir(ctx context.Context) (string, error) {
	if s.cfg.ClusterID == "" {
		return "", mcerrors.ErrInvalidParams
	}
	return s.cfg.ClusterID, nil
}
