package poolalloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
	"github.com/joshuapare/nrtkit/memsys/poolalloc"
)

func TestAllocator_RecyclesWithinClass(t *testing.T) {
	a := poolalloc.New(nil)

	b := a.Allocate(30)
	require.Len(t, b, 30)
	require.Equal(t, 39, cap(b))
	b[0] = 0xFF
	p := unsafe.SliceData(b)
	a.Free(b)

	c := a.Allocate(25)
	require.Len(t, c, 25)
	assert.Same(t, p, unsafe.SliceData(c))
	assert.Zero(t, c[0], "recycled block must be zeroed")

	st := a.Stats()
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 1, st.Misses)
	assert.EqualValues(t, 1, st.Recycled)
}

func TestAllocator_LargeBypassesLists(t *testing.T) {
	a := poolalloc.New(&poolalloc.ConfigCoarse)

	b := a.Allocate(1 << 20)
	require.Len(t, b, 1<<20)
	a.Free(b)

	blocks, _ := a.Retained()
	assert.Zero(t, blocks)
	st := a.Stats()
	assert.EqualValues(t, 1, st.Large)
	assert.EqualValues(t, 1, st.Dropped)
}

func TestAllocator_ForeignBlocksDropped(t *testing.T) {
	a := poolalloc.New(nil)
	a.Free(make([]byte, 30))
	a.Free(nil)
	blocks, _ := a.Retained()
	assert.Zero(t, blocks)
	assert.EqualValues(t, 2, a.Stats().Dropped)
}

func TestAllocator_MaxFreePerClass(t *testing.T) {
	cfg := poolalloc.ConfigBalanced
	cfg.MaxFreePerClass = 2
	a := poolalloc.New(&cfg)

	bs := [][]byte{a.Allocate(8), a.Allocate(8), a.Allocate(8)}
	for _, b := range bs {
		a.Free(b)
	}
	blocks, bytes := a.Retained()
	assert.Equal(t, 2, blocks)
	assert.Equal(t, 2*23, bytes)
	assert.EqualValues(t, 1, a.Stats().Dropped)

	a.Trim()
	blocks, _ = a.Retained()
	assert.Zero(t, blocks)
}

func TestAllocator_Reallocate(t *testing.T) {
	a := poolalloc.New(nil)

	b := a.Allocate(24)
	copy(b, "abcdefgh")
	p := unsafe.SliceData(b)

	// 30 is in the same class as 24.
	b = a.Reallocate(b, 30)
	require.Len(t, b, 30)
	assert.Same(t, p, unsafe.SliceData(b))
	assert.Equal(t, "abcdefgh", string(b[:8]))

	b = a.Reallocate(b, 4000)
	require.Len(t, b, 4000)
	assert.NotSame(t, p, unsafe.SliceData(b))
	assert.Equal(t, "abcdefgh", string(b[:8]))
	assert.Zero(t, b[3999])

	assert.Nil(t, a.Reallocate(b, -1))
	assert.Len(t, a.Reallocate(nil, 5), 5)
	assert.Nil(t, a.Allocate(-1))
}

func TestAllocator_AsSystemAllocator(t *testing.T) {
	pool := poolalloc.New(&poolalloc.ConfigFineGrained)
	sys := memsys.New(&memsys.Options{Allocator: pool, Atomics: memsys.HardwareAtomics{}})

	for range 3 {
		r, err := meminfo.AllocSafeAligned(sys, 100, 32)
		require.NoError(t, err)
		require.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(r.Data())))%32)

		v, err := meminfo.AllocVarsize(sys, 16)
		require.NoError(t, err)
		_, err = v.VarsizeRealloc(2000)
		require.NoError(t, err)

		require.True(t, r.Release())
		require.True(t, v.Release())
	}

	require.True(t, sys.Stats().Balanced())
	st := pool.Stats()
	assert.Positive(t, st.Hits, "later rounds should reuse freed blocks")
	assert.Contains(t, pool.String(), "FineGrained")
}
