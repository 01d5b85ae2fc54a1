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
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/segment"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

func idToPB(id uuid.UUID) *SegmentIdPB {
	return &SegmentIdPB{
		High: binary.BigEndian.Uint64(id[0:8]),
		Low:  binary.BigEndian.Uint64(id[8:16]),
	}
}

func idFromPB(pb *SegmentIdPB) uuid.UUID {
	if pb == nil {
		return uuid.UUID{}
	}
	return segment.ParseID(pb.High, pb.Low)
}

func segmentFromPB(pb *SegmentPB) segment.Segment {
	return segment.Segment{
		ID:   idFromPB(pb.Id),
		Name: pb.Name,
		Base: pb.Base,
		Size: pb.Size,
	}
}

func segmentToPB(s segment.Segment) *SegmentPB {
	return &SegmentPB{
		Id:   idToPB(s.ID),
		Name: s.Name,
		Base: s.Base,
		Size: s.Size,
	}
}

func handleToPB(h model.BufferHandle) *BufferHandlePB {
	return &BufferHandlePB{SegmentName: h.SegmentName, Offset: h.Offset, Size: h.Size}
}

func replicaToPB(r model.ReplicaDescriptor) *ReplicaDescriptorPB {
	handles := make([]*BufferHandlePB, len(r.Handles))
	for i, h := range r.Handles {
		handles[i] = handleToPB(h)
	}
	return &ReplicaDescriptorPB{Handles: handles, Status: int32(r.Status)}
}

func replicasToPB(rs []model.ReplicaDescriptor) []*ReplicaDescriptorPB {
	out := make([]*ReplicaDescriptorPB, len(rs))
	for i, r := range rs {
		out[i] = replicaToPB(r)
	}
	return out
}

// errorCode maps a business error into the closed wire enum. A nil error
// maps to OK; any error not already an *mcerrors.Error maps to
// INTERNAL_ERROR, matching mcerrors.CodeOf.
func errorCode(err error) int32 {
	return int32(mcerrors.CodeOf(err))
}
