package masterd

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaguan/Mooncake/internal/segment"
	"github.com/xiaguan/Mooncake/pkg/mcerrors"
)

func newTestService(t *testing.T, mutate func(*Config)) *Service {
	cfg := DefaultConfig()
	cfg.NumShards = 16
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := NewService(zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	return svc
}

func mountSegment(t *testing.T, svc *Service, name string, size uint64) (segment.Segment, uuid.UUID) {
	client := uuid.New()
	seg := segment.Segment{ID: segment.NewSegmentId(), Name: name, Size: size}
	require.NoError(t, svc.MountSegment(context.Background(), seg, client))
	return seg, client
}

// Happy-path put/get round trip.
func TestHappyPutGet(t *testing.T) {
	svc := newTestService(t, nil)
	mountSegment(t, svc, "seg-a", 1<<30)
	ctx := context.Background()

	replicas, err := svc.PutStart(ctx, "k", 4096, []uint64{4096}, 1)
	require.NoError(t, err)
	require.Len(t, replicas, 1)
	require.Len(t, replicas[0].Handles, 1)
	require.Equal(t, uint64(4096), replicas[0].Handles[0].Size)

	require.NoError(t, svc.PutEnd(ctx, "k"))

	exists, err := svc.ExistKey(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := svc.GetReplicaList(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 1)

	var total uint64
	for _, h := range got[0].Handles {
		total += h.Size
	}
	require.Equal(t, uint64(4096), total)
}

// Replicas for the same object must land on distinct segments.
func TestReplicaDistinctness(t *testing.T) {
	svc := newTestService(t, nil)
	mountSegment(t, svc, "seg-a", 1<<30)
	mountSegment(t, svc, "seg-b", 1<<30)
	mountSegment(t, svc, "seg-c", 1<<30)
	ctx := context.Background()

	replicas, err := svc.PutStart(ctx, "k", 4096, []uint64{4096}, 3)
	require.NoError(t, err)
	require.Len(t, replicas, 3)

	segments := make(map[string]struct{})
	for _, r := range replicas {
		for _, h := range r.Handles {
			segments[h.SegmentName] = struct{}{}
		}
	}
	require.Len(t, segments, 3, "each replica must land on a distinct segment")

	_, err = svc.PutStart(ctx, "k2", 4096, []uint64{4096}, 4)
	require.ErrorIs(t, err, mcerrors.ErrNoAvailableHandle)
}

// An active lease blocks removal until it expires.
func TestLeaseBlocksRemove(t *testing.T) {
	svc := newTestService(t, func(c *Config) { c.DefaultKVLeaseTTL = 500 * time.Millisecond })
	mountSegment(t, svc, "seg-a", 1<<30)
	ctx := context.Background()

	_, err := svc.PutStart(ctx, "k", 4096, []uint64{4096}, 1)
	require.NoError(t, err)
	require.NoError(t, svc.PutEnd(ctx, "k"))

	_, err = svc.ExistKey(ctx, "k")
	require.NoError(t, err)

	err = svc.Remove(ctx, "k")
	require.ErrorIs(t, err, mcerrors.ErrObjectHasLease)
}

// Unmounting a segment invalidates every object with no remaining valid replica.
func TestUnmountCascade(t *testing.T) {
	svc := newTestService(t, nil)
	seg, client := mountSegment(t, svc, "seg-a", 1<<30)
	ctx := context.Background()

	_, err := svc.PutStart(ctx, "k", 4096, []uint64{4096}, 1)
	require.NoError(t, err)
	require.NoError(t, svc.PutEnd(ctx, "k"))

	require.NoError(t, svc.UnmountSegment(ctx, seg.ID, client))

	exists, err := svc.ExistKey(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
	require.Empty(t, svc.GetAllKeys(ctx))
}

// Eviction reclaims space once usage crosses the high watermark.
func TestEvictionUnderPressure(t *testing.T) {
	svc := newTestService(t, func(c *Config) {
		c.EnableGC = true
		c.EvictionRatio = 0.1
		c.EvictionHighWatermarkRatio = 0.9
	})
	mountSegment(t, svc, "seg-a", 100000)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		key := string(rune('a'+i%26)) + string(rune('0'+i/26))
		_, err := svc.PutStart(ctx, key, 1000, []uint64{1000}, 1)
		require.NoError(t, err)
		require.NoError(t, svc.PutEnd(ctx, key))
	}

	result := svc.store.BatchEvict(time.Now(), 0.1)
	require.GreaterOrEqual(t, result.Evicted, 10)
}

// A client that stops heartbeating past its live TTL loses its segments.
func TestHAClientExpiry(t *testing.T) {
	svc := newTestService(t, func(c *Config) {
		c.EnableHA = true
		c.ClientLiveTTL = 50 * time.Millisecond
		c.HeartbeatTick = 5 * time.Millisecond
	})
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(runCtx)

	ctx := context.Background()
	client := uuid.New()
	seg := segment.Segment{ID: segment.NewSegmentId(), Name: "seg-a", Size: 1024}
	require.NoError(t, svc.MountSegment(ctx, seg, client))

	_, _, err := svc.Ping(ctx, client)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.True(t, svc.monitor.IsOK(client))

	time.Sleep(150 * time.Millisecond) // exceed ClientLiveTTL with no further pings

	_, status, err := svc.Ping(ctx, client)
	require.NoError(t, err)
	require.Equal(t, 1, int(status)) // StatusNeedRemount

	require.Eventually(t, func() bool {
		return len(svc.GetAllSegments(ctx)) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.ReMountSegment(ctx, []segment.Segment{seg}, client))
	segs := svc.GetAllSegments(ctx)
	require.Len(t, segs, 1)
}

func TestPingUnavailableWithoutHA(t *testing.T) {
	svc := newTestService(t, nil)
	_, _, err := svc.Ping(context.Background(), uuid.New())
	require.ErrorIs(t, err, mcerrors.ErrUnavailableInCurrentMode)
}

func TestGetFsdirRequiresClusterID(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.GetFsdir(context.Background())
	require.ErrorIs(t, err, mcerrors.ErrInvalidParams)

	svc = newTestService(t, func(c *Config) { c.ClusterID = "cluster-1" })
	id, err := svc.GetFsdir(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cluster-1", id)
}
