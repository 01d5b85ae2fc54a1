package segment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAllocateHandleExcludesSegments(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()
	client := uuid.New()
	require.NoError(t, r.MountSegment(ctx, Segment{ID: NewSegmentId(), Name: "seg-a", Size: 1024}, client))

	excluded := map[string]struct{}{"seg-a": {}}
	_, ok := r.AllocateHandle(128, excluded)
	require.False(t, ok, "the only live segment is excluded")
}

func TestAllocateHandleNoLiveSegments(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	_, ok := r.AllocateHandle(128, nil)
	require.False(t, ok)
}

func TestAllocateHandlePicksAnyEligibleSegment(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()
	client := uuid.New()
	require.NoError(t, r.MountSegment(ctx, Segment{ID: NewSegmentId(), Name: "seg-a", Size: 1024}, client))
	require.NoError(t, r.MountSegment(ctx, Segment{ID: NewSegmentId(), Name: "seg-b", Size: 1024}, client))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		h, ok := r.AllocateHandle(8, nil)
		require.True(t, ok)
		seen[h.SegmentName] = true
	}
	require.NotEmpty(t, seen)
}
