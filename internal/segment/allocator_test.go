package segment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaguan/Mooncake/internal/model"
)

func TestAllocatorAllocateAndRelease(t *testing.T) {
	a := newAllocator("seg-a", 1024)

	h, ok := a.allocate(256)
	require.True(t, ok)
	require.Equal(t, uint64(256), a.usedBytes())

	h.Release()
	require.Equal(t, uint64(0), a.usedBytes())
}

func TestAllocatorNeverOverAllocates(t *testing.T) {
	a := newAllocator("seg-a", 256)

	_, ok := a.allocate(200)
	require.True(t, ok)

	_, ok = a.allocate(100)
	require.False(t, ok, "must not exceed segment capacity")
}

func TestAllocatorZeroSizeRejected(t *testing.T) {
	a := newAllocator("seg-a", 256)
	_, ok := a.allocate(0)
	require.False(t, ok)
}

func TestAllocatorCoalescesAdjacentSpans(t *testing.T) {
	a := newAllocator("seg-a", 300)

	h1, ok := a.allocate(100)
	require.True(t, ok)
	h2, ok := a.allocate(100)
	require.True(t, ok)
	_, ok = a.allocate(100)
	require.True(t, ok)

	h1.Release()
	h2.Release()

	// The freed 200 contiguous bytes should coalesce into one span,
	// allowing a single 200-byte allocation.
	_, ok = a.allocate(200)
	require.True(t, ok)
}

func TestAllocatorTeardownInvalidatesHandles(t *testing.T) {
	a := newAllocator("seg-a", 1024)
	h, ok := a.allocate(128)
	require.True(t, ok)
	require.Equal(t, model.HandleComplete, h.Status())

	a.teardown()
	require.Equal(t, model.HandleInvalid, h.Status())
	require.False(t, a.alive())

	_, ok = a.allocate(64)
	require.False(t, ok, "a torn-down allocator must refuse new allocations")

	// Release against a torn-down allocator must not panic.
	h.Release()
}
