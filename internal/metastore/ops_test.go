package metastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

func TestRemoveAbsentKey(t *testing.T) {
	s := NewStore(16)
	err := s.Remove(time.Now(), "missing")
	require.ErrorIs(t, err, mcerrors.ErrObjectNotFound)
}

func TestRemoveLeasedKey(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	a := s.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(time.Hour),
	})
	a.Release()

	err := s.Remove(now, "k1")
	require.ErrorIs(t, err, mcerrors.ErrObjectHasLease)
}

func TestRemoveIncompleteKey(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	a := s.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaProcessing}},
		LeaseTimeout: now.Add(-time.Second),
	})
	a.Release()

	err := s.Remove(now, "k1")
	require.ErrorIs(t, err, mcerrors.ErrReplicaIsNotReady)
}

func TestRemoveSucceedsWhenUnleasedAndComplete(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	a := s.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(-time.Second),
	})
	a.Release()

	require.NoError(t, s.Remove(now, "k1"))
	require.Empty(t, s.Keys())
}
