package gc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaguan/Mooncake/internal/metastore"
	"github.com/xiaguan/Mooncake/internal/model"
	"github.com/xiaguan/Mooncake/internal/segment"
)

func newTestWorker(cfg Config) (*Worker, *metastore.Store, *segment.Registry) {
	store := metastore.NewStore(16)
	registry := segment.NewRegistry(zap.NewNop())
	w := NewWorker(zap.NewNop(), store, registry, nil, cfg)
	return w, store, registry
}

func TestMarkForGCRejectsWhenQueueFull(t *testing.T) {
	w, _, _ := newTestWorker(Config{QueueCapacity: 1})
	require.NoError(t, w.MarkForGC("k1", time.Millisecond))
	require.Error(t, w.MarkForGC("k2", time.Millisecond))
}

func TestPopReadyRemovesDueUnleasedCompleteObjects(t *testing.T) {
	w, store, _ := newTestWorker(Config{})
	now := time.Now()
	a := store.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(-time.Second),
	})
	a.Release()

	require.NoError(t, w.MarkForGC("k1", -time.Millisecond))
	w.drainQueue()
	w.popReady(now)

	require.Empty(t, store.Keys())
}

func TestPopReadySwallowsAlreadyRemovedKey(t *testing.T) {
	w, _, _ := newTestWorker(Config{})
	now := time.Now()

	require.NoError(t, w.MarkForGC("missing", -time.Millisecond))
	w.drainQueue()
	w.popReady(now) // must not panic even though "missing" was never inserted
}

func TestMaybeEvictRunsWhenOverWatermark(t *testing.T) {
	w, store, registry := newTestWorker(Config{EvictionRatio: 0.5, HighWatermark: 0.1})
	ctx := context.Background()
	seg := segment.Segment{ID: segment.NewSegmentId(), Name: "seg-a", Size: 1024}
	require.NoError(t, registry.MountSegment(ctx, seg, uuid.New()))
	_, ok := registry.AllocateHandle(900, nil)
	require.True(t, ok)

	now := time.Now()
	a := store.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(-time.Second),
	})
	a.Release()

	w.maybeEvict(now)
	require.Empty(t, store.Keys())
}

func TestMaybeEvictSkipsWhenUnderWatermarkAndNotFlagged(t *testing.T) {
	w, store, registry := newTestWorker(Config{EvictionRatio: 0.5, HighWatermark: 0.9})
	ctx := context.Background()
	seg := segment.Segment{ID: segment.NewSegmentId(), Name: "seg-a", Size: 1024}
	require.NoError(t, registry.MountSegment(ctx, seg, uuid.New()))

	now := time.Now()
	a := store.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas:     []model.Replica{{Status: model.ReplicaComplete}},
		LeaseTimeout: now.Add(-time.Second),
	})
	a.Release()

	w.maybeEvict(now)
	require.Len(t, store.Keys(), 1)
}
