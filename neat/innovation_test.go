package neat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeInnovationIsStable(t *testing.T) {
	tr := NewInnovationTracker(3)

	a := tr.EdgeInnovation(0, 2)
	b := tr.EdgeInnovation(1, 2)

	assert.Equal(t, a, tr.EdgeInnovation(0, 2))
	assert.Equal(t, b, tr.EdgeInnovation(1, 2))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, tr.NextInnovation())
}

func TestEdgeInnovationIsDirectional(t *testing.T) {
	tr := NewInnovationTracker(3)
	assert.NotEqual(t, tr.EdgeInnovation(3, 4), tr.EdgeInnovation(4, 3))
}

func TestAllocateNodeIDStartsAfterSeedNodes(t *testing.T) {
	tr := NewInnovationTracker(3)

	assert.Equal(t, 3, tr.AllocateNodeID())
	assert.Equal(t, 4, tr.AllocateNodeID())
	assert.Equal(t, 5, tr.NextNodeID())
	// Node allocation does not consume innovation ids.
	assert.Equal(t, 0, tr.NextInnovation())
}

func TestTrackerSharedAcrossGoroutines(t *testing.T) {
	tr := NewInnovationTracker(0)

	const workers, perWorker = 8, 200
	ids := make(chan int, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- tr.AllocateNodeID()
				tr.EdgeInnovation(i, i+1)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		require.False(t, seen[id], "node id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, perWorker, tr.NextInnovation())
}
