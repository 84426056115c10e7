package memsys

import "unsafe"

// Allocator is the block allocator a System routes all memory through.
//
// Allocate returns a slice of exactly size bytes, or nil when the request
// cannot be satisfied. Reallocate resizes b, preserving its contents up to
// min(len(b), size); it returns nil on failure and leaves b valid.
// Free releases a block previously returned by Allocate or Reallocate.
//
// Allocators are compared by identity when swapped, so implementations
// should be pointer types.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(b []byte, size int) []byte
	Free(b []byte)
}

// IncDecFunc increments or decrements *p and returns the new value.
type IncDecFunc func(p *uint64) uint64

// CASFunc compares *slot with expected and, when equal, stores replacement.
// It reports whether the swap happened and the value observed in the slot.
type CASFunc func(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (swapped bool, prev unsafe.Pointer)

// AtomicOps bundles the three primitives the subsystem needs for refcounting
// and record publication.
type AtomicOps interface {
	Inc(p *uint64) uint64
	Dec(p *uint64) uint64
	CompareAndSwap(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (bool, unsafe.Pointer)
}

// FatalPolicy selects what happens on a programming-error detection.
type FatalPolicy uint8

const (
	// FatalReturn returns the error to the caller.
	FatalReturn FatalPolicy = iota
	// FatalPanic panics with the error.
	FatalPanic
	// FatalAbort reports to the sink, flushes it and terminates the process.
	FatalAbort
)

func (p FatalPolicy) String() string {
	switch p {
	case FatalReturn:
		return "return"
	case FatalPanic:
		return "panic"
	case FatalAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time copy of the subsystem counters.
type Stats struct {
	Alloc       uint64 `json:"alloc"`        // blocks obtained through Allocate
	Free        uint64 `json:"free"`         // blocks returned through Free
	RecordAlloc uint64 `json:"record_alloc"` // allocation records created
	RecordFree  uint64 `json:"record_free"`  // allocation records destroyed
}

// LiveBlocks returns Alloc - Free.
func (s Stats) LiveBlocks() uint64 { return s.Alloc - s.Free }

// LiveRecords returns RecordAlloc - RecordFree.
func (s Stats) LiveRecords() uint64 { return s.RecordAlloc - s.RecordFree }

// Balanced reports whether no blocks and no records are outstanding.
func (s Stats) Balanced() bool {
	return s.Alloc == s.Free && s.RecordAlloc == s.RecordFree
}
