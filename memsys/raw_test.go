package memsys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/nrtkit/internal/testutil"
	"github.com/joshuapare/nrtkit/memsys"
)

func TestAllocateFree_Counts(t *testing.T) {
	sys, a := testutil.SetupSystem(t)

	b1 := sys.Allocate(64)
	b2 := sys.Allocate(0)
	require.Len(t, b1, 64)
	require.NotNil(t, b2)
	assert.EqualValues(t, 2, sys.StatsAlloc())
	assert.EqualValues(t, 0, sys.StatsFree())
	assert.Equal(t, 2, a.Live())

	sys.Free(b1)
	sys.Free(b2)
	assert.EqualValues(t, 2, sys.StatsFree())
	assert.Zero(t, sys.StatsRecordAlloc())
}

func TestAllocate_FailureReturnsNil(t *testing.T) {
	sys, a := testutil.SetupSystem(t)
	a.FailAfter(0)

	assert.Nil(t, sys.Allocate(16))
	assert.Zero(t, sys.StatsAlloc(), "failed allocations are not counted")

	assert.Nil(t, sys.Allocate(-1))
}

func TestReallocate_NotCounted(t *testing.T) {
	sys, _ := testutil.SetupSystem(t)

	b := sys.Allocate(4)
	copy(b, "abcd")
	nb := sys.Reallocate(b, 8)
	require.Len(t, nb, 8)
	assert.Equal(t, "abcd", string(nb[:4]))
	assert.EqualValues(t, 1, sys.StatsAlloc())
	assert.EqualValues(t, 0, sys.StatsFree())

	sys.Free(nb)
}

func TestReallocate_FailureKeepsBlock(t *testing.T) {
	sys, a := testutil.SetupSystem(t)

	b := sys.Allocate(4)
	copy(b, "wxyz")
	a.FailReallocs(true)
	assert.Nil(t, sys.Reallocate(b, 1024))
	assert.Equal(t, "wxyz", string(b))
	assert.Nil(t, sys.Reallocate(b, -1))

	sys.Free(b)
}

func TestGoAllocator(t *testing.T) {
	a := &memsys.GoAllocator{}

	assert.Nil(t, a.Allocate(-1))
	b := a.Allocate(3)
	require.Len(t, b, 3)
	copy(b, "xyz")

	shrunk := a.Reallocate(b, 2)
	assert.Equal(t, "xy", string(shrunk))

	grown := a.Reallocate(b, 10)
	require.Len(t, grown, 10)
	assert.Equal(t, "xyz", string(grown[:3]))
	assert.Nil(t, a.Reallocate(b, -5))

	fresh := a.Reallocate(nil, 4)
	assert.Len(t, fresh, 4)
	a.Free(fresh)
}
