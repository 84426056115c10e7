package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/nrtkit/memsys"
)

// SetupSystem creates a System backed by a fresh instrumented Allocator and
// real atomics. The test fails at cleanup if any block or record is still
// live.
//
// Example:
//
//	sys, a := testutil.SetupSystem(t)
//	rec, err := meminfo.Alloc(sys, 64)
func SetupSystem(t testing.TB) (*memsys.System, *Allocator) {
	t.Helper()
	a := NewAllocator()
	sys := memsys.New(&memsys.Options{
		Allocator: a,
		Atomics:   memsys.HardwareAtomics{},
	})
	t.Cleanup(func() {
		RequireBalanced(t, sys)
		require.Zero(t, a.Live(), "allocator still holds live blocks")
		require.Zero(t, a.BadFrees(), "allocator saw frees of unknown blocks")
	})
	return sys, a
}

// RequireBalanced fails the test unless every block and record has been freed.
func RequireBalanced(t testing.TB, sys *memsys.System) {
	t.Helper()
	st := sys.Stats()
	require.Equal(t, st.Alloc, st.Free, "blocks allocated vs freed")
	require.Equal(t, st.RecordAlloc, st.RecordFree, "records allocated vs freed")
}
