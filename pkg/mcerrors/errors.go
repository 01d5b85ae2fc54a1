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

// Package mcerrors defines the closed error enumeration that every master
// operation returns across its boundary instead of an arbitrary Go error.
package mcerrors

// Code is one of the enumerated master error codes. The zero value is OK.
type Code int

const (
	OK Code = iota
	InvalidParams
	ObjectNotFound
	ObjectAlreadyExists
	ObjectHasLease
	ReplicaIsNotReady
	InvalidWrite
	InvalidReplica
	NoAvailableHandle
	SegmentNotFound
	SegmentAlreadyExists
	TransferFail
	RPCFail
	UnavailableInCurrentMode
	InternalError
)

var names = map[Code]string{
	OK:                       "OK",
	InvalidParams:            "INVALID_PARAMS",
	ObjectNotFound:           "OBJECT_NOT_FOUND",
	ObjectAlreadyExists:      "OBJECT_ALREADY_EXISTS",
	ObjectHasLease:           "OBJECT_HAS_LEASE",
	ReplicaIsNotReady:        "REPLICA_IS_NOT_READY",
	InvalidWrite:             "INVALID_WRITE",
	InvalidReplica:           "INVALID_REPLICA",
	NoAvailableHandle:        "NO_AVAILABLE_HANDLE",
	SegmentNotFound:          "SEGMENT_NOT_FOUND",
	SegmentAlreadyExists:     "SEGMENT_ALREADY_EXISTS",
	TransferFail:             "TRANSFER_FAIL",
	RPCFail:                  "RPC_FAIL",
	UnavailableInCurrentMode: "UNAVAILABLE_IN_CURRENT_MODE",
	InternalError:            "INTERNAL_ERROR",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "UNKNOWN_ERROR"
}

// Error wraps a Code so it satisfies the error interface while still being
// cheaply comparable via Is/As and switchable via CodeOf.
type Error struct {
	code Code
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + e.msg
}

// CodeOf returns the enumerated code carried by err, or OK if err is nil, or
// InternalError if err is a plain Go error that didn't originate here.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	if mErr, ok := err.(*Error); ok {
		return mErr.code
	}
	return InternalError
}

// New builds an *Error for code, optionally annotated with a detail message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Sentinel errors for the common no-detail cases: a plain enum of values
// callers compare against rather than a hierarchy of wrapped types.
var (
	ErrInvalidParams            = New(InvalidParams, "")
	ErrObjectNotFound           = New(ObjectNotFound, "")
	ErrObjectAlreadyExists      = New(ObjectAlreadyExists, "")
	ErrObjectHasLease           = New(ObjectHasLease, "")
	ErrReplicaIsNotReady        = New(ReplicaIsNotReady, "")
	ErrInvalidWrite             = New(InvalidWrite, "")
	ErrInvalidReplica           = New(InvalidReplica, "")
	ErrNoAvailableHandle        = New(NoAvailableHandle, "")
	ErrSegmentNotFound          = New(SegmentNotFound, "")
	ErrSegmentAlreadyExists     = New(SegmentAlreadyExists, "")
	ErrTransferFail             = New(TransferFail, "")
	ErrRPCFail                  = New(RPCFail, "")
	ErrUnavailableInCurrentMode = New(UnavailableInCurrentMode, "")
	ErrInternal                 = New(InternalError, "")
)

// Is lets errors.Is(err, mcerrors.ErrObjectNotFound) work across instances
// that carry different detail messages but the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}
