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
	"context"

	"google.golang.org/grpc"

	"github.com/xiaguan/Mooncake/internal/masterd"
)

// MasterServer is the interface grpc.ServiceDesc dispatches onto: one
// method per RPC, delegating straight into a masterd.Service.
type MasterServer interface {
	MountSegment(context.Context, *MountSegmentRequest) (*MountSegmentResponse, error)
	PutStart(context.Context, *PutStartRequest) (*PutStartResponse, error)
	PutEnd(context.Context, *PutEndRequest) (*PutEndResponse, error)
	ExistKey(context.Context, *ExistKeyRequest) (*ExistKeyResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetFsdir(context.Context, *GetFsdirRequest) (*GetFsdirResponse, error)
}

// Server adapts a masterd.Service to MasterServer: every method converts
// wire messages to plain Go values, calls straight into the service, and
// folds the business error into the response's error_code field rather
// than surfacing it as a transport-level gRPC error.
type Server struct {
	Service *masterd.Service
}

func NewServer(svc *masterd.Service) *Server {
	return &Server{Service: svc}
}

func (s *Server) MountSegment(ctx context.Context, req *MountSegmentRequest) (*MountSegmentResponse, error) {
	seg := segmentFromPB(req.Segment)
	clientID := idFromPB(req.ClientId)
	err := s.Service.MountSegment(ctx, seg, clientID)
	return &MountSegmentResponse{ErrorCode: errorCode(err)}, nil
}

func (s *Server) PutStart(ctx context.Context, req *PutStartRequest) (*PutStartResponse, error) {
	replicas, err := s.Service.PutStart(ctx, req.Key, req.ValueLength, req.SliceLengths, int(req.ReplicaNum))
	return &PutStartResponse{Replicas: replicasToPB(replicas), ErrorCode: errorCode(err)}, nil
}

func (s *Server) PutEnd(ctx context.Context, req *PutEndRequest) (*PutEndResponse, error) {
	err := s.Service.PutEnd(ctx, req.Key)
	return &PutEndResponse{ErrorCode: errorCode(err)}, nil
}

func (s *Server) ExistKey(ctx context.Context, req *ExistKeyRequest) (*ExistKeyResponse, error) {
	exists, err := s.Service.ExistKey(ctx, req.Key)
	return &ExistKeyResponse{Exists: exists, ErrorCode: errorCode(err)}, nil
}

func (s *Server) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	clientID := idFromPB(req.ClientId)
	view, status, err := s.Service.Ping(ctx, clientID)
	return &PingResponse{ViewVersion: view, Status: int32(status), ErrorCode: errorCode(err)}, nil
}

func (s *Server) GetFsdir(ctx context.Context, req *GetFsdirRequest) (*GetFsdirResponse, error) {
	clusterID, err := s.Service.GetFsdir(ctx)
	return &GetFsdirResponse{ClusterId: clusterID, ErrorCode: errorCode(err)}, nil
}

func _Master_MountSegment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MountSegmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).MountSegment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/MountSegment"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).MountSegment(ctx, req.(*MountSegmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_PutStart_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutStartRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).PutStart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/PutStart"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).PutStart(ctx, req.(*PutStartRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_PutEnd_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutEndRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).PutEnd(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/PutEnd"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).PutEnd(ctx, req.(*PutEndRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_ExistKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ExistKeyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).ExistKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/ExistKey"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).ExistKey(ctx, req.(*ExistKeyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Master_GetFsdir_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFsdirRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServer).GetFsdir(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mooncake.Master/GetFsdir"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServer).GetFsdir(ctx, req.(*GetFsdirRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MasterServiceDesc is the hand-authored equivalent of what protoc-gen-go-grpc
// would emit for the subset of the operation table wired here.
var MasterServiceDesc = grpc.ServiceDesc{
	ServiceName: "mooncake.Master",
	HandlerType: (*MasterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MountSegment", Handler: _Master_MountSegment_Handler},
		{MethodName: "PutStart", Handler: _Master_PutStart_Handler},
		{MethodName: "PutEnd", Handler: _Master_PutEnd_Handler},
		{MethodName: "ExistKey", Handler: _Master_ExistKey_Handler},
		{MethodName: "Ping", Handler: _Master_Ping_Handler},
		{MethodName: "GetFsdir", Handler: _Master_GetFsdir_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mooncake.proto",
}
