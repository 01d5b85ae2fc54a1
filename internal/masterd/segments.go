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

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/segment"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

// MountSegment registers a client-contributed segment. Idempotent:
// mounting an already-mounted id returns OK.
func (s *Service) MountSegment(ctx context.Context, seg segment.Segment, clientID model.ClientId) error {
	return s.registry.MountSegment(ctx, seg, clientID)
}

// UnmountSegment tears a segment down via the two-phase protocol.
// Idempotent: an absent segment returns OK.
func (s *Service) UnmountSegment(ctx context.Context, segmentID model.SegmentId, clientID model.ClientId) error {
	return s.registry.UnmountSegment(ctx, segmentID, clientID)
}

// ReMountSegment is HA-only: it remounts every segment of a previously
// expired client atomically and restores its OK status.
func (s *Service) ReMountSegment(ctx context.Context, segs []segment.Segment, clientID model.ClientId) error {
	if !s.cfg.EnableHA {
		return mcerrors.ErrUnavailableInCurrentMode
	}
	alreadyOK := s.monitor.IsOK(clientID)
	if err := s.registry.ReMountSegment(ctx, segs, clientID, alreadyOK); err != nil {
		return err
	}
	if !alreadyOK {
		s.monitor.MarkOK(clientID)
	}
	return nil
}

// GetAllSegments lists every currently-mounted segment.
func (s *Service) GetAllSegments(ctx context.Context) []segment.Segment {
	return s.registry.GetAllSegments(ctx)
}

// QuerySegments reports (used, capacity) for one named segment.
func (s *Service) QuerySegments(ctx context.Context, segmentName string) (used, capacity uint64, err error) {
	return s.registry.QuerySegments(ctx, segmentName)
}
