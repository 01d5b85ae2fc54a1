package masterd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadShardCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumShards = 17
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeRatios(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EvictionRatio = 1.5
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.EvictionHighWatermarkRatio = -0.1
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresLiveTTLWhenHAEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableHA = true
	cfg.ClientLiveTTL = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroMaxSliceSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSliceSize = 0
	require.Error(t, cfg.Validate())
}
