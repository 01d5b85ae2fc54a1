package metastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaguan/Mooncake/internal/model"
)

func seedUnleasedCompleteObjects(s *Store, now time.Time, n int) {
	for i := 0; i < n; i++ {
		key := model.ObjectKey(string(rune('a'+(i%26))) + string(rune('0'+(i/26))))
		a := s.Acquire(key)
		a.Put(&model.ObjectMetadata{
			Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
			LeaseTimeout: now.Add(-time.Duration(n-i) * time.Millisecond),
		})
		a.Release()
	}
}

func TestBatchEvictHonorsTargetRatio(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	seedUnleasedCompleteObjects(s, now, 100)

	result := s.BatchEvict(now, 0.1)
	require.GreaterOrEqual(t, result.Evicted, 10)
	require.Equal(t, 100, result.ObjectSeen)
}

func TestBatchEvictSkipsLeasedObjects(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	a := s.Acquire("leased")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(time.Hour),
	})
	a.Release()

	result := s.BatchEvict(now, 1.0)
	require.Equal(t, 0, result.Evicted)
	require.Len(t, s.Keys(), 1)
}

func TestBatchEvictZeroRatioIsNoOp(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	seedUnleasedCompleteObjects(s, now, 10)

	result := s.BatchEvict(now, 0)
	require.Equal(t, EvictionResult{}, result)
	require.Len(t, s.Keys(), 10)
}

func TestTotalObjects(t *testing.T) {
	s := NewStore(16)
	now := time.Now()
	seedUnleasedCompleteObjects(s, now, 5)
	require.Equal(t, 5, s.TotalObjects())
}
