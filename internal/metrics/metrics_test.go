package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersEveryCollector(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m.Registry)

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestGaugesAreIndependentInstances(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.KeyCount.Set(5)
	require.Equal(t, float64(0), testutil.ToFloat64(b.KeyCount))
	require.Equal(t, float64(5), testutil.ToFloat64(a.KeyCount))
}
