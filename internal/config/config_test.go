package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, f File) string {
	t.Helper()
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, File{ClusterID: "c1", EnableGC: true})
	parsed, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "c1", parsed.Master.ClusterID)
	require.True(t, parsed.Master.EnableGC)
	require.Equal(t, 256, parsed.Master.NumShards) // default preserved
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, File{
		NumShards:                  64,
		DefaultKVLeaseTTLMs:        1000,
		EvictionRatio:              0.2,
		EvictionHighWatermarkRatio: 0.8,
		ClientLiveTTLSec:           5,
		MaxSliceSize:               1 << 16,
		ListenPort:                 9000,
		MetricsPort:                9001,
	})
	parsed, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, parsed.Master.NumShards)
	require.Equal(t, time.Second, parsed.Master.DefaultKVLeaseTTL)
	require.Equal(t, 0.2, parsed.Master.EvictionRatio)
	require.Equal(t, 0.8, parsed.Master.EvictionHighWatermarkRatio)
	require.Equal(t, 5*time.Second, parsed.Master.ClientLiveTTL)
	require.Equal(t, uint64(1<<16), parsed.Master.MaxSliceSize)
	require.Equal(t, 9000, parsed.ListenPort)
	require.Equal(t, 9001, parsed.MetricsPort)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, File{NumShards: 17})
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadFromFlagsParsesPath(t *testing.T) {
	path := writeConfig(t, File{ClusterID: "c2"})
	parsed, err := LoadFromFlags([]string{"-f", path})
	require.NoError(t, err)
	require.Equal(t, "c2", parsed.Master.ClusterID)
}
