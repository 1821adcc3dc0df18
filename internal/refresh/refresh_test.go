package refresh

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobsRunAndCloseDrains(t *testing.T) {
	var (
		mu   sync.Mutex
		done []Job
	)
	r := New(8, 2, func(_ context.Context, j Job) error {
		mu.Lock()
		done = append(done, j)
		mu.Unlock()
		return nil
	})

	assert.True(t, r.Enqueue(Job{Street: "53 Charles St", Coords: [2]float64{-74.0084, 40.7397}}))
	assert.True(t, r.Enqueue(Job{Street: "210 E 21st St", Unit: "21B"}))
	r.Close()

	require.Len(t, done, 2)
	assert.False(t, r.Enqueue(Job{Street: "late"}), "closed queue rejects jobs")
}

func TestDuplicateInFlightIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	calls := 0
	r := New(8, 1, func(_ context.Context, j Job) error {
		calls++
		started <- struct{}{}
		<-release
		return nil
	})

	require.True(t, r.Enqueue(Job{Street: "53 Charles St"}))
	<-started
	assert.False(t, r.Enqueue(Job{Street: "53 Charles St"}))
	assert.True(t, r.Enqueue(Job{Street: "53 Charles St", Unit: "2"}), "different unit is a different address")

	close(release)
	r.Close()
	assert.Equal(t, 2, calls)
}
