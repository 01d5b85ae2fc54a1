package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeOwner struct {
	gen      uint64
	released []uint64
}

func (f *fakeOwner) CurrentGeneration() uint64 { return f.gen }
func (f *fakeOwner) Release(offset, size uint64) {
	f.released = append(f.released, offset, size)
}

func TestBufferHandleStatus(t *testing.T) {
	owner := &fakeOwner{gen: 1}
	h := NewBufferHandle("seg-a", 0, 128, owner)
	require.Equal(t, HandleComplete, h.Status())

	owner.gen = 2
	require.Equal(t, HandleInvalid, h.Status())
}

func TestBufferHandleReleaseIsNoOpAfterInvalidation(t *testing.T) {
	owner := &fakeOwner{gen: 1}
	h := NewBufferHandle("seg-a", 0, 128, owner)
	owner.gen = 2

	h.Release()
	require.Empty(t, owner.released)
}

func TestBufferHandleReleaseCallsOwnerWhenValid(t *testing.T) {
	owner := &fakeOwner{gen: 1}
	h := NewBufferHandle("seg-a", 64, 32, owner)

	h.Release()
	require.Equal(t, []uint64{64, 32}, owner.released)
}

func TestReplicaDisjointFrom(t *testing.T) {
	owner := &fakeOwner{gen: 1}
	r1 := Replica{Handles: []BufferHandle{NewBufferHandle("seg-a", 0, 4, owner)}}
	r2 := Replica{Handles: []BufferHandle{NewBufferHandle("seg-b", 0, 4, owner)}}
	r3 := Replica{Handles: []BufferHandle{NewBufferHandle("seg-a", 4, 4, owner)}}

	require.True(t, r1.DisjointFrom(r2))
	require.False(t, r1.DisjointFrom(r3))
}

func TestObjectMetadataAllComplete(t *testing.T) {
	m := &ObjectMetadata{
		Replicas: []Replica{
			{Status: ReplicaComplete},
			{Status: ReplicaProcessing},
		},
	}
	require.False(t, m.AllComplete())

	m.Replicas[1].Status = ReplicaComplete
	require.True(t, m.AllComplete())
}

func TestObjectMetadataLeased(t *testing.T) {
	now := time.Unix(1000, 0)
	m := &ObjectMetadata{LeaseTimeout: now.Add(time.Second)}
	require.True(t, m.Leased(now))
	require.False(t, m.Leased(now.Add(2*time.Second)))
}

func TestObjectMetadataValidReplicas(t *testing.T) {
	owner := &fakeOwner{gen: 1}
	valid := Replica{Handles: []BufferHandle{NewBufferHandle("seg-a", 0, 4, owner)}}
	m := &ObjectMetadata{Replicas: []Replica{valid}}
	require.True(t, m.HasValidReplica())

	owner.gen = 2
	require.False(t, m.HasValidReplica())
	require.Empty(t, m.ValidReplicas())
}
