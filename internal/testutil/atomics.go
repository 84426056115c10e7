package testutil

import (
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/nrtkit/memsys"
)

// CountingAtomics wraps memsys.HardwareAtomics and counts how often each
// primitive is invoked.
type CountingAtomics struct {
	memsys.HardwareAtomics

	IncCalls atomic.Int64
	DecCalls atomic.Int64
	CASCalls atomic.Int64
}

// Inc counts and increments.
func (c *CountingAtomics) Inc(p *uint64) uint64 {
	c.IncCalls.Add(1)
	return c.HardwareAtomics.Inc(p)
}

// Dec counts and decrements.
func (c *CountingAtomics) Dec(p *uint64) uint64 {
	c.DecCalls.Add(1)
	return c.HardwareAtomics.Dec(p)
}

// CompareAndSwap counts and swaps.
func (c *CountingAtomics) CompareAndSwap(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (bool, unsafe.Pointer) {
	c.CASCalls.Add(1)
	return c.HardwareAtomics.CompareAndSwap(slot, expected, replacement)
}
