package viewversion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvanceIsMonotonic(t *testing.T) {
	var c Counter
	require.Equal(t, uint64(0), c.Current())
	require.Equal(t, uint64(1), c.Advance())
	require.Equal(t, uint64(2), c.Advance())
	require.Equal(t, uint64(2), c.Current())
}

func TestAdvanceConcurrentIsRaceFree(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance()
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), c.Current())
}
