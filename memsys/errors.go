package memsys

import "errors"

var (
	// ErrAllocatorBusy indicates an attempt to replace the allocator while blocks
	// or records obtained from the current one are still live.
	ErrAllocatorBusy = errors.New("memsys: cannot change allocator while blocks are allocated")

	// ErrNilAllocator indicates SetAllocator was called with a nil allocator.
	ErrNilAllocator = errors.New("memsys: nil allocator")

	// ErrNilAtomics indicates a nil increment, decrement or CAS primitive.
	ErrNilAtomics = errors.New("memsys: nil atomic primitive")
)
