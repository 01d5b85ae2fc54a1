package metastore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaguan/Mooncake/internal/model"
)

func TestAcquireGetPutErase(t *testing.T) {
	s := NewStore(16)

	a := s.Acquire("k1")
	_, ok := a.Get()
	require.False(t, ok)
	a.Put(&model.ObjectMetadata{Size: 10})
	a.Release()

	a = s.Acquire("k1")
	meta, ok := a.Get()
	require.True(t, ok)
	require.Equal(t, uint64(10), meta.Size)
	a.Erase()
	a.Release()

	a = s.Acquire("k1")
	require.False(t, a.Exists())
	a.Release()
}

func TestNewStoreRejectsNonPowerOfTwo(t *testing.T) {
	require.Panics(t, func() { NewStore(17) })
}

func TestConcurrentAccessToSharedKeysDoesNotDeadlock(t *testing.T) {
	s := NewStore(64)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := model.ObjectKey(string(rune('a' + i%26)))
			a := s.Acquire(key)
			a.Put(&model.ObjectMetadata{Size: uint64(i)})
			a.Release()
		}(i)
	}
	wg.Wait()
}

func TestClearInvalidHandlesRemovesObjectsWithNoValidReplica(t *testing.T) {
	s := NewStore(16)
	a := s.Acquire("k1")
	a.Put(&model.ObjectMetadata{Replicas: nil})
	a.Release()

	removed := s.ClearInvalidHandles(nil)
	require.Equal(t, 1, removed)
	require.Empty(t, s.Keys())
}

type fakeAllocator struct{ gen uint64 }

func (f *fakeAllocator) CurrentGeneration() uint64  { return f.gen }
func (f *fakeAllocator) Release(offset, size uint64) {}

func TestClearInvalidHandlesRemovesObjectWithOneInvalidatedReplicaEvenWhenAnotherIsStillValid(t *testing.T) {
	s := NewStore(16)

	segA := &fakeAllocator{gen: 1}
	segB := &fakeAllocator{gen: 1}
	a := s.Acquire("k1")
	a.Put(&model.ObjectMetadata{
		Replicas: []model.Replica{
			{Status: model.ReplicaComplete, Handles: []model.BufferHandle{model.NewBufferHandle("seg-a", 0, 16, segA)}},
			{Status: model.ReplicaComplete, Handles: []model.BufferHandle{model.NewBufferHandle("seg-b", 0, 16, segB)}},
		},
	})
	a.Release()

	// seg-a's allocator tears down: only the first replica's handle goes
	// invalid, but the second replica (in seg-b) is still fully valid.
	segA.gen = 2

	removed := s.ClearInvalidHandles(nil)
	require.Equal(t, 1, removed, "a single invalid handle must drop the whole object, not just the bad replica")
	require.Empty(t, s.Keys())
}

func TestKeysAcrossShards(t *testing.T) {
	s := NewStore(16)
	for _, k := range []model.ObjectKey{"a", "b", "c"} {
		a := s.Acquire(k)
		a.Put(&model.ObjectMetadata{})
		a.Release()
	}
	require.ElementsMatch(t, []model.ObjectKey{"a", "b", "c"}, s.Keys())
}
