package meminfo_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/nrtkit/internal/testutil"
	"github.com/joshuapare/nrtkit/meminfo"
)

func TestSlot_LoadOrStore(t *testing.T) {
	sys, _ := testutil.SetupSystem(t)
	var slot meminfo.Slot
	require.Nil(t, slot.Load())

	r1, err := meminfo.Alloc(sys, 8)
	require.NoError(t, err)

	got, loaded := slot.LoadOrStore(sys, r1)
	require.False(t, loaded)
	require.Same(t, r1, got)
	require.Same(t, r1, slot.Load())
	require.EqualValues(t, 3, r1.Refcount(), "caller + slot + returned")

	r2, err := meminfo.Alloc(sys, 8)
	require.NoError(t, err)
	got2, loaded := slot.LoadOrStore(sys, r2)
	require.True(t, loaded)
	require.Same(t, r1, got2)
	require.EqualValues(t, 1, r2.Refcount(), "losing record is left as it was")
	require.EqualValues(t, 4, r1.Refcount())

	require.True(t, r2.Release())
	require.False(t, got2.Release())
	require.False(t, got.Release())

	cleared, destroyed := slot.Clear(sys)
	require.True(t, cleared)
	require.False(t, destroyed)
	require.Nil(t, slot.Load())

	require.True(t, r1.Release())
}

func TestSlot_ClearDestroysLastReference(t *testing.T) {
	sys, _ := testutil.SetupSystem(t)
	var slot meminfo.Slot

	cleared, _ := slot.Clear(sys)
	require.False(t, cleared)

	r, err := meminfo.AllocSafe(sys, 8)
	require.NoError(t, err)
	got, _ := slot.LoadOrStore(sys, r)
	require.False(t, got.Release())
	require.False(t, r.Release())

	cleared, destroyed := slot.Clear(sys)
	require.True(t, cleared)
	require.True(t, destroyed)
}

func TestSlot_ConcurrentPublishers(t *testing.T) {
	sys, _ := testutil.SetupSystem(t)
	var slot meminfo.Slot

	const workers = 32
	results := make([]*meminfo.Record, workers)
	stored := make([]bool, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine, err := meminfo.Alloc(sys, 16)
			if err != nil {
				t.Error(err)
				return
			}
			<-start
			actual, loaded := slot.LoadOrStore(sys, mine)
			results[i] = actual
			stored[i] = !loaded
			mine.Release()
		}()
	}
	close(start)
	wg.Wait()

	winner := slot.Load()
	require.NotNil(t, winner)
	var wins int
	for i := range workers {
		require.Same(t, winner, results[i])
		if stored[i] {
			wins++
		}
	}
	require.Equal(t, 1, wins)
	require.EqualValues(t, workers+1, winner.Refcount())

	for i := range workers {
		results[i].Release()
	}
	_, destroyed := slot.Clear(sys)
	require.True(t, destroyed)
}
