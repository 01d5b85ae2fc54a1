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

// Package rpc is the gRPC transport surface: wire messages in the shape
// protoc-gen-go would emit, and a ServiceDesc that delegates every method
// into a masterd.Service. Hand-authored for a representative slice of the
// operation table, since no protoc toolchain is available here.
package rpc

// SegmentIdPB is the wire shape of a 128-bit id: two 64-bit halves.
type SegmentIdPB struct {
	High uint64 `protobuf:"varint,1,opt,name=high,proto3" json:"high,omitempty"`
	Low  uint64 `protobuf:"varint,2,opt,name=low,proto3" json:"low,omitempty"`
}

func (m *SegmentIdPB) Reset()         { *m = SegmentIdPB{} }
func (m *SegmentIdPB) String() string { return "SegmentIdPB" }
func (m *SegmentIdPB) ProtoMessage()  {}

// SegmentPB mirrors segment.Segment's wire-visible fields.
type SegmentPB struct {
	Id   *SegmentIdPB `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Name string       `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Base uint64       `protobuf:"varint,3,opt,name=base,proto3" json:"base,omitempty"`
	Size uint64       `protobuf:"varint,4,opt,name=size,proto3" json:"size,omitempty"`
}

func (m *SegmentPB) Reset()         { *m = SegmentPB{} }
func (m *SegmentPB) String() string { return "SegmentPB" }
func (m *SegmentPB) ProtoMessage()  {}

// BufferHandlePB mirrors model.BufferHandle's wire-visible fields.
type BufferHandlePB struct {
	SegmentName string `protobuf:"bytes,1,opt,name=segment_name,json=segmentName,proto3" json:"segment_name,omitempty"`
	Offset      uint64 `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
	Size        uint64 `protobuf:"varint,3,opt,name=size,proto3" json:"size,omitempty"`
}

func (m *BufferHandlePB) Reset()         { *m = BufferHandlePB{} }
func (m *BufferHandlePB) String() string { return "BufferHandlePB" }
func (m *BufferHandlePB) ProtoMessage()  {}

// ReplicaDescriptorPB mirrors model.ReplicaDescriptor.
type ReplicaDescriptorPB struct {
	Handles []*BufferHandlePB `protobuf:"bytes,1,rep,name=handles,proto3" json:"handles,omitempty"`
	Status  int32             `protobuf:"varint,2,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *ReplicaDescriptorPB) Reset()         { *m = ReplicaDescriptorPB{} }
func (m *ReplicaDescriptorPB) String() string { return "ReplicaDescriptorPB" }
func (m *ReplicaDescriptorPB) ProtoMessage()  {}

// MountSegmentRequest / MountSegmentResponse.
type MountSegmentRequest struct {
	Segment  *SegmentPB   `protobuf:"bytes,1,opt,name=segment,proto3" json:"segment,omitempty"`
	ClientId *SegmentIdPB `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *MountSegmentRequest) Reset()         { *m = MountSegmentRequest{} }
func (m *MountSegmentRequest) String() string { return "MountSegmentRequest" }
func (m *MountSegmentRequest) ProtoMessage()  {}

type MountSegmentResponse struct {
	ErrorCode int32 `protobuf:"varint,1,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *MountSegmentResponse) Reset()         { *m = MountSegmentResponse{} }
func (m *MountSegmentResponse) String() string { return "MountSegmentResponse" }
func (m *MountSegmentResponse) ProtoMessage()  {}

// PutStartRequest / PutStartResponse.
type PutStartRequest struct {
	Key          string   `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
	ValueLength  uint64   `protobuf:"varint,2,opt,name=value_length,json=valueLength,proto3" json:"value_length,omitempty"`
	SliceLengths []uint64 `protobuf:"varint,3,rep,packed,name=slice_lengths,json=sliceLengths,proto3" json:"slice_lengths,omitempty"`
	ReplicaNum   int32    `protobuf:"varint,4,opt,name=replica_num,json=replicaNum,proto3" json:"replica_num,omitempty"`
}

func (m *PutStartRequest) Reset()         { *m = PutStartRequest{} }
func (m *PutStartRequest) String() string { return "PutStartRequest" }
func (m *PutStartRequest) ProtoMessage()  {}

type PutStartResponse struct {
	Replicas  []*ReplicaDescriptorPB `protobuf:"bytes,1,rep,name=replicas,proto3" json:"replicas,omitempty"`
	ErrorCode int32                  `protobuf:"varint,2,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *PutStartResponse) Reset()         { *m = PutStartResponse{} }
func (m *PutStartResponse) String() string { return "PutStartResponse" }
func (m *PutStartResponse) ProtoMessage()  {}

// PutEndRequest / PutEndResponse.
type PutEndRequest struct {
	Key string `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
}

func (m *PutEndRequest) Reset()         { *m = PutEndRequest{} }
func (m *PutEndRequest) String() string { return "PutEndRequest" }
func (m *PutEndRequest) ProtoMessage()  {}

type PutEndResponse struct {
	ErrorCode int32 `protobuf:"varint,1,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *PutEndResponse) Reset()         { *m = PutEndResponse{} }
func (m *PutEndResponse) String() string { return "PutEndResponse" }
func (m *PutEndResponse) ProtoMessage()  {}

// ExistKeyRequest / ExistKeyResponse.
type ExistKeyRequest struct {
	Key string `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
}

func (m *ExistKeyRequest) Reset()         { *m = ExistKeyRequest{} }
func (m *ExistKeyRequest) String() string { return "ExistKeyRequest" }
func (m *ExistKeyRequest) ProtoMessage()  {}

type ExistKeyResponse struct {
	Exists    bool  `protobuf:"varint,1,opt,name=exists,proto3" json:"exists,omitempty"`
	ErrorCode int32 `protobuf:"varint,2,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *ExistKeyResponse) Reset()         { *m = ExistKeyResponse{} }
func (m *ExistKeyResponse) String() string { return "ExistKeyResponse" }
func (m *ExistKeyResponse) ProtoMessage()  {}

// PingRequest / PingResponse (HA).
type PingRequest struct {
	ClientId *SegmentIdPB `protobuf:"bytes,1,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *PingRequest) Reset()         { *m = PingRequest{} }
func (m *PingRequest) String() string { return "PingRequest" }
func (m *PingRequest) ProtoMessage()  {}

type PingResponse struct {
	ViewVersion uint64 `protobuf:"varint,1,opt,name=view_version,json=viewVersion,proto3" json:"view_version,omitempty"`
	Status      int32  `protobuf:"varint,2,opt,name=status,proto3" json:"status,omitempty"`
	ErrorCode   int32  `protobuf:"varint,3,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *PingResponse) Reset()         { *m = PingResponse{} }
func (m *PingResponse) String() string { return "PingResponse" }
func (m *PingResponse) ProtoMessage()  {}

// GetFsdirRequest / GetFsdirResponse.
type GetFsdirRequest struct{}

func (m *GetFsdirRequest) Reset()         { *m = GetFsdirRequest{} }
func (m *GetFsdirRequest) String() string { return "GetFsdirRequest" }
func (m *GetFsdirRequest) ProtoMessage()  {}

type GetFsdirResponse struct {
	ClusterId string `protobuf:"bytes,1,opt,name=cluster_id,json=clusterId,proto3" json:"cluster_id,omitempty"`
	ErrorCode int32  `protobuf:"varint,2,opt,name=error_code,json=errorCode,proto3" json:"error_code,omitempty"`
}

func (m *GetFsdirResponse) Reset()         { *m = GetFsdirResponse{} }
func (m *GetFsdirResponse) String() string { return "GetFsdirResponse" }
func (m *GetFsdirResponse) ProtoMessage()  {}
