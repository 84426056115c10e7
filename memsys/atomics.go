package memsys

import (
	"sync/atomic"
	"unsafe"
)

// StubAtomics is the non-atomic implementation of AtomicOps.
// It is only correct when a single goroutine touches the subsystem.
type StubAtomics struct{}

// Inc increments *p without synchronization.
func (StubAtomics) Inc(p *uint64) uint64 {
	out := *p
	out++
	*p = out
	return out
}

// Dec decrements *p without synchronization.
func (StubAtomics) Dec(p *uint64) uint64 {
	out := *p
	out--
	*p = out
	return out
}

// CompareAndSwap swaps *slot without synchronization.
func (StubAtomics) CompareAndSwap(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (bool, unsafe.Pointer) {
	old := *slot
	if old == expected {
		*slot = replacement
		return true, old
	}
	return false, old
}

// HardwareAtomics implements AtomicOps with sync/atomic. The decrement that
// reaches zero is sequentially consistent with every earlier increment and
// decrement, which is what the release path relies on.
type HardwareAtomics struct{}

// Inc atomically increments *p.
func (HardwareAtomics) Inc(p *uint64) uint64 { return atomic.AddUint64(p, 1) }

// Dec atomically decrements *p.
func (HardwareAtomics) Dec(p *uint64) uint64 { return atomic.AddUint64(p, ^uint64(0)) }

// CompareAndSwap atomically swaps *slot and returns the value it observed.
func (HardwareAtomics) CompareAndSwap(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (bool, unsafe.Pointer) {
	for {
		old := atomic.LoadPointer(slot)
		if old != expected {
			return false, old
		}
		if atomic.CompareAndSwapPointer(slot, old, replacement) {
			return true, old
		}
	}
}

var (
	_ AtomicOps = StubAtomics{}
	_ AtomicOps = HardwareAtomics{}
)
